package commands

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jacklul/e621-telegram-bot/internal/dispatch"
	"github.com/jacklul/e621-telegram-bot/internal/groupcfg"
)

const settingsFooter = "\n[How to set group settings?](https://github.com/jacklul/e621-telegram-bot#group-settings) " +
	"_Due to caching on Telegram's side it can take some time for the changes to be available to the bot._"

// handleSettings shows the group's effective settings. A chat
// administrator running it also drops the cache entry first, so edits to
// the group description become visible immediately.
func (b *Bot) handleSettings(ctx context.Context, req dispatch.Request) error {
	msg := req.Interaction.Message
	if msg == nil {
		return nil
	}

	if msg.IsPrivate() {
		return b.reply(ctx, msg, "*Settings are currently only available in groups!*")
	}

	if admin, err := b.admins.IsChatAdmin(ctx, msg.ChatID, msg.UserID); err == nil && admin {
		if err := b.settings.Invalidate(ctx, msg.ChatID); err != nil {
			b.log.Warn().Err(err).Int64("chat_id", msg.ChatID).Msg("settings invalidation failed")
		}
	}

	var lines []string
	settings, err := b.settings.Resolve(ctx, msg.ChatID)
	switch {
	case errors.Is(err, groupcfg.ErrNotFetchable):
		lines = append(lines, "*Failed to fetch group description!*")
	case errors.Is(err, groupcfg.ErrUnparseable):
		lines = append(lines, "*Settings string is invalid!*")
	case err != nil:
		b.log.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("settings resolution failed")
		lines = append(lines, "*Failed to fetch group description!*")
	default:
		tags := settings.DefaultTags
		if tags == "" {
			tags = "(not set)"
		}
		lines = append(lines,
			"*Default tags*: "+tags,
			"*Forced tags*: "+enabled(settings.ForceTags),
			"*Anti-spam*: "+antispamLabel(settings.AntispamSeconds),
			"*SFW mode*: "+enabled(settings.SFWOnly),
		)
	}
	lines = append(lines, settingsFooter)

	return b.responder.SendMessage(ctx, Message{
		ChatID:    msg.ChatID,
		Text:      strings.Join(lines, "\n"),
		Markdown:  true,
		NoPreview: true,
	})
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func antispamLabel(seconds int) string {
	if seconds > 0 {
		return strconv.Itoa(seconds) + " seconds"
	}
	return "disabled"
}
