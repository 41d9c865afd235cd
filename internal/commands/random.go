package commands

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jacklul/e621-telegram-bot/internal/dispatch"
	"github.com/jacklul/e621-telegram-bot/internal/domain"
	"github.com/jacklul/e621-telegram-bot/internal/e621"
	"github.com/jacklul/e621-telegram-bot/internal/groupcfg"
	"github.com/jacklul/e621-telegram-bot/internal/inline"
)

// maxButtonData is Telegram's limit on callback_data; searches with longer
// tag strings cannot get a re-roll button.
const maxButtonData = 64

var ratingTagRe = regexp.MustCompile(`rating:\w+`)

// handleRandom serves /random, plain-text searches and presses of the
// "Another" button, which arrive here as a callback redispatch.
func (b *Bot) handleRandom(ctx context.Context, req dispatch.Request) error {
	cb := req.Interaction.Callback
	msg := req.Interaction.Message
	if cb != nil {
		msg = cb.Message
	}
	if msg == nil {
		// A button press on a message Telegram no longer exposes.
		if cb != nil {
			return b.responder.AnswerCallback(ctx, cb.ID, "", false)
		}
		return nil
	}

	text := strings.TrimSpace(req.Args)

	if msg.IsGroup() {
		settings, err := b.settings.Resolve(ctx, msg.ChatID)
		if err != nil {
			if !errors.Is(err, groupcfg.ErrUnparseable) {
				// Without a readable description the group's limits are
				// unknown, so the search is silently refused.
				if cb != nil {
					return b.responder.AnswerCallback(ctx, cb.ID, "", false)
				}
				return nil
			}
			settings = groupcfg.Defaults()
		}

		if settings.AntispamSeconds > 0 {
			verdict, err := b.limiter.Acquire(ctx, domain.CmdRandom, msg.ChatID, time.Duration(settings.AntispamSeconds)*time.Second)
			if err != nil {
				b.log.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("antispam check failed")
			} else if !verdict.Allowed {
				wait := fmt.Sprintf("Please wait %d seconds before next search.", verdict.RemainingSeconds)
				if cb != nil {
					return b.responder.AnswerCallback(ctx, cb.ID, wait, true)
				}
				return b.reply(ctx, msg, "*"+wait+"*")
			}
		}

		if (text == "" || settings.ForceTags) && settings.DefaultTags != "" {
			text = settings.DefaultTags
		}
		if settings.SFWOnly {
			text = strings.TrimSpace(ratingTagRe.ReplaceAllString(text, "")) + " rating:safe"
			text = strings.TrimSpace(text)
		}
	}

	b.responder.SendTyping(ctx, msg.ChatID)

	res := b.search.Posts(ctx, e621.PostsRequest{Tags: "order:random " + text, Limit: 1})
	if !res.OK() {
		reason := res.Reason
		if strings.Contains(reason, "up to 6 tags") {
			// The forced order:random tag consumes one of the six slots.
			reason = strings.ReplaceAll(reason, "up to 6 tags", "up to 5 tags")
		} else {
			b.log.Error().Str("reason", res.Reason).Str("detail", res.Detail).Msg("random search failed")
		}
		if cb != nil {
			return b.responder.AnswerCallback(ctx, cb.ID, "Error: "+reason, true)
		}
		return b.reply(ctx, msg, "*Error:* "+reason)
	}

	if len(res.Posts) == 0 {
		if cb != nil {
			return b.responder.AnswerCallback(ctx, cb.ID, "No posts matched your search.", true)
		}
		return b.reply(ctx, msg, "*No posts matched your search.*")
	}

	post := res.Posts[0]
	out := Message{
		ChatID:   msg.ChatID,
		ReplyTo:  msg.MessageID,
		Text:     randomCaption(post),
		Markdown: true,
	}
	if len(text) <= maxButtonData {
		data := text
		if data == "" {
			data = " "
		}
		out.Button = &Button{Text: "Another", Data: data}
	}

	if err := b.responder.SendMessage(ctx, out); err != nil {
		b.log.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("sending random result failed")
		if cb != nil {
			return b.responder.AnswerCallback(ctx, cb.ID, "Error: Telegram API error", true)
		}
		return b.reply(ctx, msg, "*Error:* Telegram API error")
	}
	if cb != nil {
		return b.responder.AnswerCallback(ctx, cb.ID, "", false)
	}
	return nil
}

func randomCaption(p domain.Post) string {
	var sb strings.Builder
	if p.FileURL != "" {
		if p.FileSize > inline.MaxPhotoFileSize {
			sb.WriteString("[Sample](" + p.SampleURL + "), ")
		}
		sb.WriteString("[Image](" + p.FileURL + "), ")
	}
	fmt.Fprintf(&sb, "[Post](%s), Score: *%d*, Favorites: *%d*, Rating: *%s*",
		p.PostURL(), p.Score, p.FavCount, p.Rating.Title())
	return sb.String()
}
