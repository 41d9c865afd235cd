package main

import (
	"fmt"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jacklul/e621-telegram-bot/internal/antispam"
	"github.com/jacklul/e621-telegram-bot/internal/commands"
	"github.com/jacklul/e621-telegram-bot/internal/config"
	"github.com/jacklul/e621-telegram-bot/internal/dispatch"
	"github.com/jacklul/e621-telegram-bot/internal/e621"
	"github.com/jacklul/e621-telegram-bot/internal/groupcfg"
	"github.com/jacklul/e621-telegram-bot/internal/store"
	"github.com/jacklul/e621-telegram-bot/internal/sysutil"
	"github.com/jacklul/e621-telegram-bot/internal/telegram"
)

// app bundles everything a running bot needs, regardless of update
// transport.
type app struct {
	cfg    config.Config
	log    zerolog.Logger
	api    *tgbotapi.BotAPI
	store  store.Store
	poller *telegram.Poller
}

// buildApp loads configuration and wires the full dependency graph: cache
// store, e621 client, Telegram API, settings resolver, antispam limiter,
// dispatcher, and command handlers.
func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	setupLogging(cfg)
	logger := log.Logger

	st, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open cache store: %w", err)
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("connect to Telegram: %w", err)
	}

	client := e621.New(e621.Options{
		Timeout:        cfg.E621Timeout,
		ReverseTimeout: cfg.ReverseTimeout,
		UserAgent:      fmt.Sprintf("Telegram Bot: @%s", cfg.BotUsername),
		Login:          cfg.E621Login,
		APIKey:         cfg.E621APIKey,
		RPS:            cfg.E621RPS,
		Burst:          cfg.E621Burst,
	})

	responder := telegram.NewResponder(api, logger)
	settings := groupcfg.New(st, responder, cfg.BotUsername, cfg.SettingsTTL)
	limiter := antispam.New(st)

	bot := commands.New(commands.Options{
		Responder:   responder,
		Search:      client,
		Settings:    settings,
		Limiter:     limiter,
		Admins:      responder,
		Files:       responder,
		BotUsername: cfg.BotUsername,
		Log:         logger,
	})

	dispatcher := dispatch.New(api.Self.ID, cfg.BotAdmin, cfg.BotUsername, logger)
	bot.Register(dispatcher)

	return &app{
		cfg:   cfg,
		log:   logger,
		api:   api,
		store: st,
		poller: &telegram.Poller{
			API:        api,
			Dispatcher: dispatcher,
			Responder:  responder,
			Log:        logger,
		},
	}, nil
}

// botAPI is a lighter variant for the webhook management commands, which
// only need a Telegram connection.
func botAPI() (*tgbotapi.BotAPI, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cfg, err
	}
	setupLogging(cfg)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, cfg, fmt.Errorf("connect to Telegram: %w", err)
	}
	return api, cfg, nil
}

func setupLogging(cfg config.Config) {
	sysutil.SetLogLevel(cfg.LogLevel)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if cfg.LogPretty {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Logger = logger
}

func openStore(cfg config.Config) (store.Store, error) {
	if cfg.CacheDB == "" {
		return store.NewMemory(), nil
	}
	db, err := store.OpenSQLite(cfg.CacheDB)
	if err != nil {
		return nil, err
	}
	return store.NewSQLite(db), nil
}
