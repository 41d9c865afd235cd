package commands

import (
	"context"

	"github.com/jacklul/e621-telegram-bot/internal/dispatch"
	"github.com/jacklul/e621-telegram-bot/internal/inline"
)

// Telegram-side caching of inline answers. Successful pages are stable for
// minutes; errors are transient and must not stick.
const (
	inlineCacheOK    = 300
	inlineCacheError = 5
)

// handleInline answers one inline query round using the dual-mode
// pagination plan.
func (b *Bot) handleInline(ctx context.Context, req dispatch.Request) error {
	q := req.Interaction.Inline
	if q == nil {
		return nil
	}

	plan := inline.BuildPlan(q.Query, q.Offset)
	res := b.search.Posts(ctx, plan.Request())
	if !res.OK() {
		b.log.Error().Str("reason", res.Reason).Str("detail", res.Detail).Str("query", q.Query).Msg("inline search failed")
		return b.responder.AnswerInline(ctx, InlineAnswer{
			QueryID:           q.ID,
			Results:           []interface{}{},
			CacheTime:         inlineCacheError,
			SwitchPMText:      res.Reason,
			SwitchPMParameter: "error",
		})
	}

	return b.responder.AnswerInline(ctx, InlineAnswer{
		QueryID:    q.ID,
		Results:    inline.Results(res.Posts),
		NextOffset: plan.NextOffset(res.Posts),
		CacheTime:  inlineCacheOK,
	})
}

// handleCallback answers button presses no other route claimed.
func (b *Bot) handleCallback(ctx context.Context, req dispatch.Request) error {
	cb := req.Interaction.Callback
	if cb == nil {
		return nil
	}
	return b.responder.AnswerCallback(ctx, cb.ID, "Bad request", true)
}
