// Package telegram adapts the Bot API to the rest of the bot: it converts
// inbound updates into domain interactions, implements the outbound
// Responder used by the command handlers, and owns the long-poll loop and
// webhook management.
package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jacklul/e621-telegram-bot/internal/domain"
)

// FromUpdate converts one update into a domain interaction. The second
// return is false for update kinds the bot does not handle (edits, channel
// posts, poll events).
func FromUpdate(update tgbotapi.Update, botUsername string) (domain.Interaction, bool) {
	switch {
	case update.Message != nil:
		msg, ok := fromMessage(update.Message, botUsername)
		if !ok {
			return domain.Interaction{}, false
		}
		return domain.Interaction{Message: msg}, true
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		out := &domain.CallbackQuery{
			ID:   cb.ID,
			Data: cb.Data,
		}
		if cb.From != nil {
			out.UserID = cb.From.ID
		}
		if cb.Message != nil {
			if msg, ok := fromMessage(cb.Message, botUsername); ok {
				out.Message = msg
			}
		}
		return domain.Interaction{Callback: out}, true
	case update.InlineQuery != nil:
		q := update.InlineQuery
		out := &domain.InlineQuery{
			ID:     q.ID,
			Query:  q.Query,
			Offset: q.Offset,
		}
		if q.From != nil {
			out.UserID = q.From.ID
		}
		return domain.Interaction{Inline: out}, true
	default:
		return domain.Interaction{}, false
	}
}

func fromMessage(msg *tgbotapi.Message, botUsername string) (*domain.Message, bool) {
	if msg.Chat == nil {
		return nil, false
	}

	out := &domain.Message{
		MessageID:        msg.MessageID,
		ChatID:           msg.Chat.ID,
		ChatType:         msg.Chat.Type,
		Text:             msg.Text,
		Caption:          msg.Caption,
		GroupChatCreated: msg.GroupChatCreated || msg.SuperGroupChatCreated,
	}
	if msg.From != nil {
		out.UserID = msg.From.ID
	}

	if msg.IsCommand() {
		// A command explicitly addressed to another bot is not ours.
		withAt := msg.CommandWithAt()
		if at := strings.Index(withAt, "@"); at >= 0 && !strings.EqualFold(withAt[at+1:], botUsername) {
			return nil, false
		}
		out.Command = strings.ToLower(msg.Command())
		out.CommandArgs = msg.CommandArguments()
	}

	if len(msg.Photo) > 0 {
		out.PhotoFileID = msg.Photo[len(msg.Photo)-1].FileID
	}
	if msg.Document != nil {
		out.Document = &domain.Document{
			FileID:   msg.Document.FileID,
			MimeType: msg.Document.MimeType,
			FileSize: int64(msg.Document.FileSize),
		}
	}
	if msg.ReplyToMessage != nil {
		if reply, ok := fromMessage(msg.ReplyToMessage, botUsername); ok {
			out.ReplyTo = reply
		}
	}
	for _, user := range msg.NewChatMembers {
		out.NewChatMemberIDs = append(out.NewChatMemberIDs, user.ID)
	}
	return out, true
}
