package commands

import (
	"context"
	"regexp"

	"github.com/jacklul/e621-telegram-bot/internal/dispatch"
	"github.com/jacklul/e621-telegram-bot/internal/e621"
)

var md5HashRe = regexp.MustCompile(`^[a-f0-9]{32}$`)

// handleMD5 converts a direct site image link into its post. Routing has
// already extracted the hash candidate into Args; anything that is not a
// full MD5 is answered with silence, same as a file the index has never
// seen.
func (b *Bot) handleMD5(ctx context.Context, req dispatch.Request) error {
	msg := req.Interaction.Message
	if msg == nil || !md5HashRe.MatchString(req.Args) {
		return nil
	}

	b.responder.SendTyping(ctx, msg.ChatID)

	res := b.search.Posts(ctx, e621.PostsRequest{Tags: "md5:" + req.Args})
	if !res.OK() {
		b.log.Error().Str("reason", res.Reason).Str("detail", res.Detail).Msg("md5 lookup failed")
		return b.reply(ctx, msg, "*Error:* "+res.Reason)
	}
	if len(res.Posts) == 0 {
		return b.reply(ctx, msg, "*Post not found*")
	}

	return b.responder.SendMessage(ctx, Message{
		ChatID:    msg.ChatID,
		ReplyTo:   msg.MessageID,
		Text:      "*Post:* " + res.Posts[0].PostURL(),
		Markdown:  true,
		NoPreview: true,
	})
}
