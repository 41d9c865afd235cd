package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/jacklul/e621-telegram-bot/internal/commands"
	"github.com/jacklul/e621-telegram-bot/internal/dispatch"
	"github.com/jacklul/e621-telegram-bot/internal/domain"
)

// Poller drives the long-poll update loop.
type Poller struct {
	API        *tgbotapi.BotAPI
	Dispatcher *dispatch.Dispatcher
	Responder  *Responder
	Log        zerolog.Logger
}

// Run polls for updates until the context is canceled. Handler failures
// are contained per update: the error is logged, counted, and answered
// with a best-effort notification so the user is not left hanging.
func (p *Poller) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30

	updates := p.API.GetUpdatesChan(cfg)
	defer p.API.StopReceivingUpdates()

	p.Log.Info().Str("username", p.API.Self.UserName).Msg("long polling started")
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			p.Handle(ctx, update)
		}
	}
}

// Handle converts and dispatches one update. It is shared by the poller
// and the webhook server.
func (p *Poller) Handle(ctx context.Context, update tgbotapi.Update) {
	in, ok := FromUpdate(update, p.API.Self.UserName)
	if !ok {
		updatesDropped.Inc()
		return
	}

	updatesReceived.WithLabelValues(interactionKind(in)).Inc()

	if err := p.Dispatcher.Dispatch(ctx, in); err != nil {
		handlerFailures.Inc()
		p.Log.Error().Err(err).Int("update_id", update.UpdateID).Msg("handler failed")
		p.notifyFailure(ctx, in)
	}
}

// notifyFailure tells the originating chat that its request died. Nothing
// here may fail loudly; the interaction is already lost.
func (p *Poller) notifyFailure(ctx context.Context, in domain.Interaction) {
	switch {
	case in.Callback != nil:
		_ = p.Responder.AnswerCallback(ctx, in.Callback.ID, "Something went wrong, try again later.", true)
	case in.Inline != nil:
		_ = p.Responder.AnswerInline(ctx, commands.InlineAnswer{
			QueryID:           in.Inline.ID,
			Results:           []interface{}{},
			CacheTime:         5,
			SwitchPMText:      "Something went wrong, try again later.",
			SwitchPMParameter: "error",
		})
	case in.Message != nil:
		_ = p.Responder.SendMessage(ctx, commands.Message{
			ChatID:   in.Message.ChatID,
			ReplyTo:  in.Message.MessageID,
			Text:     "*Something went wrong, try again later.*",
			Markdown: true,
		})
	}
}

func interactionKind(in domain.Interaction) string {
	switch {
	case in.Callback != nil:
		return "callback"
	case in.Inline != nil:
		return "inline"
	default:
		return "message"
	}
}
