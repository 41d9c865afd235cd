package commands

import (
	"context"
	"strings"

	"github.com/jacklul/e621-telegram-bot/internal/dispatch"
)

// greetingSticker is sent before the help text when a user opens a private
// chat with the bot.
const greetingSticker = "CAADBAADEwAD8mXUBiJaO5i0S6dLAg"

// handleHelp lists the bot's features. Group chats get a shorter variant
// because reverse search and link conversion only make sense in private.
func (b *Bot) handleHelp(ctx context.Context, req dispatch.Request) error {
	msg := req.Interaction.Message
	if msg == nil {
		return nil
	}

	lines := []string{
		"*Help*",
		"\n*Inline search*:\n Type in any chat:  `@" + b.botUsername + " <tags>`  and wait for the results to appear",
	}
	if msg.IsPrivate() {
		lines = append(lines,
			"\n*Random image*:\n Send tags as a text message or use  `/random <tags>`  command",
			"\n*Image to post conversion*:\n Send direct e621 image link",
			"\n*Reverse image search*:\n Send any direct image link or photo message",
		)
	} else {
		lines = append(lines,
			"\n*Random image*:\n Use  `/random <tags>`  command",
			"\n*Show settings*:\n Use  `/settings`  command",
			"\n*Private chat exclusive features were hidden, execute this command in private chat to see them.*",
		)
	}

	out := Message{
		ChatID:    msg.ChatID,
		Text:      strings.Join(lines, "\n"),
		Markdown:  true,
		NoPreview: true,
	}
	if !msg.IsPrivate() {
		out.ReplyTo = msg.MessageID
	}
	return b.responder.SendMessage(ctx, out)
}

// handleStart answers a bare /start with a greeting sticker followed by
// the help text. A /start with a deep-link payload is ignored.
func (b *Bot) handleStart(ctx context.Context, req dispatch.Request) error {
	msg := req.Interaction.Message
	if msg == nil || strings.TrimSpace(req.Args) != "" {
		return nil
	}

	if err := b.responder.SendSticker(ctx, msg.ChatID, msg.MessageID, greetingSticker); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", msg.ChatID).Msg("greeting sticker failed")
	}
	return b.handleHelp(ctx, req)
}
