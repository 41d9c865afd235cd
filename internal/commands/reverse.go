package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/jacklul/e621-telegram-bot/internal/dispatch"
	"github.com/jacklul/e621-telegram-bot/internal/domain"
	"github.com/jacklul/e621-telegram-bot/internal/e621"
	"github.com/jacklul/e621-telegram-bot/internal/inline"
)

// maxReverseResults caps how many matched posts one reply lists.
const maxReverseResults = 5

// handleReverse runs a reverse image search for a URL in Args or for the
// photo/document attached to the message.
func (b *Bot) handleReverse(ctx context.Context, req dispatch.Request) error {
	msg := req.Interaction.Message
	if msg == nil {
		return nil
	}

	b.responder.SendTyping(ctx, msg.ChatID)

	var (
		result e621.ReverseResult
		err    error
	)
	if req.Args != "" {
		result, err = b.search.ReverseByURL(ctx, req.Args)
	} else {
		var text string
		result, text, err = b.reverseAttachment(ctx, msg)
		if text != "" {
			return b.reply(ctx, msg, text)
		}
	}
	if err != nil {
		b.log.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("reverse search failed")
		return b.reply(ctx, msg, "*Error:* Unhandled error occurred - service might be unreachable or returned an error")
	}
	if result.Message != "" {
		return b.reply(ctx, msg, "*Error:* "+result.Message+" (e621.net)")
	}

	urls := make([]string, 0, len(result.PostIDs))
	seen := make(map[int64]bool, len(result.PostIDs))
	for _, id := range result.PostIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		urls = append(urls, fmt.Sprintf("https://e621.net/posts/%d", id))
		if len(urls) == maxReverseResults {
			break
		}
	}

	if len(urls) == 0 {
		return b.reply(ctx, msg, "*No matching images found*")
	}

	var text string
	links := make([]string, len(urls))
	for i, u := range urls {
		links[i] = "[" + u + "](" + u + ")"
	}
	if len(links) == 1 {
		text = "*Post:* " + links[0]
	} else {
		text = "*Posts:*\n " + strings.Join(links, "\n ")
	}

	return b.responder.SendMessage(ctx, Message{
		ChatID:    msg.ChatID,
		ReplyTo:   msg.MessageID,
		Text:      text,
		Markdown:  true,
		NoPreview: true,
	})
}

// reverseAttachment validates and downloads the message's attachment, then
// searches by upload. A non-empty reply text means validation or download
// failed and the caller should send it verbatim.
func (b *Bot) reverseAttachment(ctx context.Context, msg *domain.Message) (e621.ReverseResult, string, error) {
	fileID := msg.PhotoFileID
	if doc := msg.Document; doc != nil && fileID == "" {
		if !strings.Contains(doc.MimeType, "image/") {
			return e621.ReverseResult{}, "*Error:* File is not an image", nil
		}
		if doc.FileSize > inline.MaxPhotoFileSize {
			return e621.ReverseResult{}, "*Error:* File exceeds 5MB file size limit", nil
		}
		fileID = doc.FileID
	}
	if fileID == "" {
		return e621.ReverseResult{}, "", fmt.Errorf("no file on message %d", msg.MessageID)
	}

	filename, data, err := b.files.DownloadFile(ctx, fileID)
	if err != nil {
		b.log.Error().Err(err).Str("file_id", fileID).Msg("file download failed")
		return e621.ReverseResult{}, "*Error:* Image couldn't be downloaded", nil
	}

	result, err := b.search.ReverseByFile(ctx, filename, data)
	return result, "", err
}
