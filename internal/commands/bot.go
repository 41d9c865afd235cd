// Package commands implements the bot's command handlers: random search,
// MD5 lookup, reverse image search, inline search, settings, help and
// start. Handlers talk to the outside world through the narrow interfaces
// below so tests run against fakes instead of Telegram and e621.
package commands

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jacklul/e621-telegram-bot/internal/antispam"
	"github.com/jacklul/e621-telegram-bot/internal/dispatch"
	"github.com/jacklul/e621-telegram-bot/internal/domain"
	"github.com/jacklul/e621-telegram-bot/internal/e621"
)

// Message is one outbound chat message.
type Message struct {
	ChatID    int64
	ReplyTo   int // message id to quote, 0 for none
	Text      string
	Markdown  bool
	NoPreview bool
	Button    *Button
}

// Button is a single-button inline keyboard attached to a message.
type Button struct {
	Text string
	Data string
}

// InlineAnswer is one response to an inline query.
type InlineAnswer struct {
	QueryID           string
	Results           []interface{}
	NextOffset        string
	CacheTime         int
	SwitchPMText      string
	SwitchPMParameter string
}

// Responder sends replies back through the messaging transport.
type Responder interface {
	SendMessage(ctx context.Context, msg Message) error
	SendSticker(ctx context.Context, chatID int64, replyTo int, stickerID string) error
	SendTyping(ctx context.Context, chatID int64)
	AnswerCallback(ctx context.Context, id, text string, alert bool) error
	AnswerInline(ctx context.Context, ans InlineAnswer) error
}

// Searcher runs queries against the image index.
type Searcher interface {
	Posts(ctx context.Context, req e621.PostsRequest) domain.SearchResult
	ReverseByURL(ctx context.Context, imageURL string) (e621.ReverseResult, error)
	ReverseByFile(ctx context.Context, filename string, data []byte) (e621.ReverseResult, error)
}

// SettingsResolver provides per-group settings.
type SettingsResolver interface {
	Resolve(ctx context.Context, chatID int64) (domain.GroupSettings, error)
	Invalidate(ctx context.Context, chatID int64) error
}

// AdminChecker reports whether a user administrates a chat.
type AdminChecker interface {
	IsChatAdmin(ctx context.Context, chatID, userID int64) (bool, error)
}

// FileDownloader fetches an attachment's bytes from the transport.
type FileDownloader interface {
	DownloadFile(ctx context.Context, fileID string) (filename string, data []byte, err error)
}

// RateLimiter throttles repeated searches per chat and command.
type RateLimiter interface {
	Acquire(ctx context.Context, command string, chatID int64, window time.Duration) (antispam.Verdict, error)
}

// Bot bundles the handlers and their collaborators.
type Bot struct {
	responder Responder
	search    Searcher
	settings  SettingsResolver
	limiter   RateLimiter
	admins    AdminChecker
	files     FileDownloader

	botUsername string
	log         zerolog.Logger
}

// Options lists the collaborators a Bot needs.
type Options struct {
	Responder   Responder
	Search      Searcher
	Settings    SettingsResolver
	Limiter     RateLimiter
	Admins      AdminChecker
	Files       FileDownloader
	BotUsername string
	Log         zerolog.Logger
}

// New builds a Bot.
func New(opts Options) *Bot {
	return &Bot{
		responder:   opts.Responder,
		search:      opts.Search,
		settings:    opts.Settings,
		limiter:     opts.Limiter,
		admins:      opts.Admins,
		files:       opts.Files,
		botUsername: opts.BotUsername,
		log:         opts.Log,
	}
}

// Register installs every handler into the dispatcher.
func (b *Bot) Register(d *dispatch.Dispatcher) {
	d.Register(domain.TierUser, domain.CmdRandom, dispatch.HandlerFunc(b.handleRandom))
	d.Register(domain.TierUser, domain.CmdHelp, dispatch.HandlerFunc(b.handleHelp))
	d.Register(domain.TierUser, domain.CmdStart, dispatch.HandlerFunc(b.handleStart))
	d.Register(domain.TierUser, domain.CmdSettings, dispatch.HandlerFunc(b.handleSettings))
	d.Register(domain.TierUser, domain.CmdMD5, dispatch.HandlerFunc(b.handleMD5))
	d.Register(domain.TierUser, domain.CmdReverse, dispatch.HandlerFunc(b.handleReverse))
	d.Register(domain.TierSystem, domain.CmdInlineQuery, dispatch.HandlerFunc(b.handleInline))
	d.Register(domain.TierSystem, domain.CmdCallbackQuery, dispatch.HandlerFunc(b.handleCallback))
}

// reply sends a markdown message quoting the triggering message.
func (b *Bot) reply(ctx context.Context, msg *domain.Message, text string) error {
	return b.responder.SendMessage(ctx, Message{
		ChatID:   msg.ChatID,
		ReplyTo:  msg.MessageID,
		Text:     text,
		Markdown: true,
	})
}
