package inline

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jacklul/e621-telegram-bot/internal/domain"
)

// MaxPhotoFileSize is Telegram's hard limit on externally hosted photos
// and GIFs, 5 MiB.
const MaxPhotoFileSize = 5242880

// Results shapes posts into inline query results. Photos over the size
// limit fall back to the sample image, oversized GIFs are dropped because
// Telegram fails to fetch them after showing the thumbnail, and webm files
// travel as a link-only video entry since Telegram cannot play them.
// Unsupported file types are skipped.
func Results(posts []domain.Post) []interface{} {
	results := make([]interface{}, 0, len(posts))
	for _, p := range posts {
		id := strconv.FormatInt(p.ID, 10)
		title := "Post #" + id
		desc := "(" + p.FileExt + ")"
		caption := p.PostURL()

		switch p.FileExt {
		case "jpg", "jpeg", "png":
			photoURL := p.FileURL
			if p.FileSize > MaxPhotoFileSize {
				photoURL = p.SampleURL
			}
			results = append(results, tgbotapi.InlineQueryResultPhoto{
				Type:        "photo",
				ID:          id,
				URL:         photoURL,
				ThumbURL:    p.PreviewURL,
				Width:       p.Width,
				Height:      p.Height,
				Caption:     caption,
				Title:       title,
				Description: desc,
			})
		case "gif":
			if p.FileSize > MaxPhotoFileSize {
				continue
			}
			results = append(results, tgbotapi.InlineQueryResultGIF{
				Type:     "gif",
				ID:       id,
				URL:      p.FileURL,
				ThumbURL: p.PreviewURL,
				Width:    p.Width,
				Height:   p.Height,
				Caption:  caption,
				Title:    title,
			})
		case "webm":
			results = append(results, tgbotapi.InlineQueryResultVideo{
				Type:        "video",
				ID:          id,
				URL:         p.FileURL,
				MimeType:    "video/mp4",
				ThumbURL:    p.PreviewURL,
				Width:       p.Width,
				Height:      p.Height,
				Caption:     caption,
				Title:       title,
				Description: desc,
				InputMessageContent: tgbotapi.InputTextMessageContent{
					Text: caption,
				},
			})
		}
	}
	return results
}
