package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/jacklul/e621-telegram-bot/internal/commands"
)

// api is the slice of *tgbotapi.BotAPI the responder uses, split out so
// tests can fake it.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error)
	GetChatAdministrators(config tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Responder sends replies through the Bot API. It also implements the
// chat-description fetch, admin check and file download collaborators the
// command handlers need.
type Responder struct {
	api   api
	httpc *http.Client
	log   zerolog.Logger
}

// NewResponder wraps a Bot API client.
func NewResponder(botAPI *tgbotapi.BotAPI, log zerolog.Logger) *Responder {
	return &Responder{api: botAPI, httpc: http.DefaultClient, log: log}
}

// SendMessage implements commands.Responder. Messages go out as markdown
// when asked; a Button becomes a one-row inline keyboard.
func (r *Responder) SendMessage(_ context.Context, msg commands.Message) error {
	out := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	if msg.Markdown {
		out.ParseMode = tgbotapi.ModeMarkdown
	}
	out.ReplyToMessageID = msg.ReplyTo
	out.DisableWebPagePreview = msg.NoPreview
	if msg.Button != nil {
		out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(msg.Button.Text, msg.Button.Data),
			),
		)
	}
	_, err := r.api.Send(out)
	return err
}

// SendSticker implements commands.Responder.
func (r *Responder) SendSticker(_ context.Context, chatID int64, replyTo int, stickerID string) error {
	out := tgbotapi.NewSticker(chatID, tgbotapi.FileID(stickerID))
	out.ReplyToMessageID = replyTo
	_, err := r.api.Send(out)
	return err
}

// SendTyping implements commands.Responder. Failures only cost the typing
// indicator, so they are logged and swallowed.
func (r *Responder) SendTyping(_ context.Context, chatID int64) {
	if _, err := r.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		r.log.Debug().Err(err).Int64("chat_id", chatID).Msg("chat action failed")
	}
}

// AnswerCallback implements commands.Responder.
func (r *Responder) AnswerCallback(_ context.Context, id, text string, alert bool) error {
	_, err := r.api.Request(tgbotapi.CallbackConfig{
		CallbackQueryID: id,
		Text:            text,
		ShowAlert:       alert,
	})
	return err
}

// AnswerInline implements commands.Responder.
func (r *Responder) AnswerInline(_ context.Context, ans commands.InlineAnswer) error {
	_, err := r.api.Request(tgbotapi.InlineConfig{
		InlineQueryID:     ans.QueryID,
		Results:           ans.Results,
		NextOffset:        ans.NextOffset,
		CacheTime:         ans.CacheTime,
		SwitchPMText:      ans.SwitchPMText,
		SwitchPMParameter: ans.SwitchPMParameter,
	})
	return err
}

// ChatDescription implements groupcfg.DescriptionFetcher.
func (r *Responder) ChatDescription(_ context.Context, chatID int64) (string, error) {
	chat, err := r.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return "", err
	}
	return chat.Description, nil
}

// IsChatAdmin implements commands.AdminChecker.
func (r *Responder) IsChatAdmin(_ context.Context, chatID, userID int64) (bool, error) {
	members, err := r.api.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return false, err
	}
	for _, m := range members {
		if m.User != nil && m.User.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

// DownloadFile implements commands.FileDownloader. The returned filename
// is the base name of the Telegram file path, which reverse search uses as
// the upload name.
func (r *Responder) DownloadFile(ctx context.Context, fileID string) (string, []byte, error) {
	directURL, err := r.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, directURL, nil)
	if err != nil {
		return "", nil, err
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("file download failed with status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return "", nil, err
	}
	if len(data) > maxDownloadBytes {
		return "", nil, errors.New("file larger than advertised")
	}
	return path.Base(directURL), data, nil
}

// maxDownloadBytes bounds attachment downloads. Validation rejects
// anything over 5 MiB before download, so this only guards against a size
// the API under-reported.
const maxDownloadBytes = 20 << 20
