package inline

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jacklul/e621-telegram-bot/internal/domain"
)

func TestResultsPhoto(t *testing.T) {
	posts := []domain.Post{{
		ID:         12345,
		FileExt:    "png",
		FileURL:    "https://static.e621.net/f.png",
		SampleURL:  "https://static.e621.net/s.jpg",
		PreviewURL: "https://static.e621.net/p.jpg",
		Width:      800,
		Height:     600,
		FileSize:   100000,
	}}

	results := Results(posts)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	photo, ok := results[0].(tgbotapi.InlineQueryResultPhoto)
	if !ok {
		t.Fatalf("result is %T, want photo", results[0])
	}
	if photo.URL != "https://static.e621.net/f.png" || photo.ThumbURL != "https://static.e621.net/p.jpg" {
		t.Errorf("urls = (%q, %q)", photo.URL, photo.ThumbURL)
	}
	if photo.Title != "Post #12345" || photo.Description != "(png)" {
		t.Errorf("title/description = (%q, %q)", photo.Title, photo.Description)
	}
	if photo.Caption != "https://e621.net/posts/12345" {
		t.Errorf("Caption = %q", photo.Caption)
	}
}

func TestResultsOversizedPhotoUsesSample(t *testing.T) {
	posts := []domain.Post{{
		ID:        1,
		FileExt:   "jpg",
		FileURL:   "https://static.e621.net/full.jpg",
		SampleURL: "https://static.e621.net/sample.jpg",
		FileSize:  MaxPhotoFileSize + 1,
	}}

	photo := Results(posts)[0].(tgbotapi.InlineQueryResultPhoto)
	if photo.URL != "https://static.e621.net/sample.jpg" {
		t.Errorf("URL = %q, want sample fallback", photo.URL)
	}
}

func TestResultsOversizedGIFDropped(t *testing.T) {
	posts := []domain.Post{
		{ID: 1, FileExt: "gif", FileSize: MaxPhotoFileSize + 1},
		{ID: 2, FileExt: "gif", FileSize: 1000},
	}

	results := Results(posts)
	if len(results) != 1 {
		t.Fatalf("got %d results, want oversized gif dropped", len(results))
	}
	if gif := results[0].(tgbotapi.InlineQueryResultGIF); gif.ID != "2" {
		t.Errorf("kept gif %s, want 2", gif.ID)
	}
}

func TestResultsWebmAsLinkVideo(t *testing.T) {
	posts := []domain.Post{{ID: 7, FileExt: "webm", FileURL: "https://static.e621.net/f.webm"}}

	video, ok := Results(posts)[0].(tgbotapi.InlineQueryResultVideo)
	if !ok {
		t.Fatal("webm must become a video result")
	}
	content, ok := video.InputMessageContent.(tgbotapi.InputTextMessageContent)
	if !ok || content.Text != "https://e621.net/posts/7" {
		t.Errorf("InputMessageContent = %+v, want post link text", video.InputMessageContent)
	}
}

func TestResultsUnsupportedTypeSkipped(t *testing.T) {
	posts := []domain.Post{
		{ID: 1, FileExt: "swf"},
		{ID: 2, FileExt: "jpg"},
	}
	if results := Results(posts); len(results) != 1 {
		t.Errorf("got %d results, want flash skipped", len(results))
	}
}
