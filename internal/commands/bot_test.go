package commands

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/jacklul/e621-telegram-bot/internal/antispam"
	"github.com/jacklul/e621-telegram-bot/internal/domain"
	"github.com/jacklul/e621-telegram-bot/internal/e621"
)

// fakeResponder records every outbound action.
type fakeResponder struct {
	messages  []Message
	stickers  []string
	typing    []int64
	callbacks []callbackAnswer
	inline    []InlineAnswer

	sendErr error
}

type callbackAnswer struct {
	id    string
	text  string
	alert bool
}

func (f *fakeResponder) SendMessage(_ context.Context, msg Message) error {
	f.messages = append(f.messages, msg)
	return f.sendErr
}

func (f *fakeResponder) SendSticker(_ context.Context, _ int64, _ int, stickerID string) error {
	f.stickers = append(f.stickers, stickerID)
	return nil
}

func (f *fakeResponder) SendTyping(_ context.Context, chatID int64) {
	f.typing = append(f.typing, chatID)
}

func (f *fakeResponder) AnswerCallback(_ context.Context, id, text string, alert bool) error {
	f.callbacks = append(f.callbacks, callbackAnswer{id: id, text: text, alert: alert})
	return nil
}

func (f *fakeResponder) AnswerInline(_ context.Context, ans InlineAnswer) error {
	f.inline = append(f.inline, ans)
	return nil
}

// fakeSearcher returns canned results and records requests.
type fakeSearcher struct {
	postsResult   domain.SearchResult
	postsRequests []e621.PostsRequest

	reverseResult e621.ReverseResult
	reverseErr    error
	reverseURLs   []string
	reverseFiles  []string
}

func (f *fakeSearcher) Posts(_ context.Context, req e621.PostsRequest) domain.SearchResult {
	f.postsRequests = append(f.postsRequests, req)
	return f.postsResult
}

func (f *fakeSearcher) ReverseByURL(_ context.Context, imageURL string) (e621.ReverseResult, error) {
	f.reverseURLs = append(f.reverseURLs, imageURL)
	return f.reverseResult, f.reverseErr
}

func (f *fakeSearcher) ReverseByFile(_ context.Context, filename string, _ []byte) (e621.ReverseResult, error) {
	f.reverseFiles = append(f.reverseFiles, filename)
	return f.reverseResult, f.reverseErr
}

type fakeSettings struct {
	settings      domain.GroupSettings
	err           error
	invalidations []int64
}

func (f *fakeSettings) Resolve(_ context.Context, _ int64) (domain.GroupSettings, error) {
	if f.err != nil {
		return domain.GroupSettings{}, f.err
	}
	return f.settings, nil
}

func (f *fakeSettings) Invalidate(_ context.Context, chatID int64) error {
	f.invalidations = append(f.invalidations, chatID)
	return nil
}

type fakeLimiter struct {
	verdict  antispam.Verdict
	acquired []string
}

func (f *fakeLimiter) Acquire(_ context.Context, command string, _ int64, _ time.Duration) (antispam.Verdict, error) {
	f.acquired = append(f.acquired, command)
	return f.verdict, nil
}

type fakeAdmins struct {
	admin bool
}

func (f *fakeAdmins) IsChatAdmin(_ context.Context, _, _ int64) (bool, error) {
	return f.admin, nil
}

type fakeFiles struct {
	filename string
	data     []byte
	err      error
}

func (f *fakeFiles) DownloadFile(_ context.Context, _ string) (string, []byte, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return f.filename, f.data, nil
}

// fixture bundles a Bot with all of its fakes.
type fixture struct {
	bot       *Bot
	responder *fakeResponder
	search    *fakeSearcher
	settings  *fakeSettings
	limiter   *fakeLimiter
	admins    *fakeAdmins
	files     *fakeFiles
}

func newFixture() *fixture {
	f := &fixture{
		responder: &fakeResponder{},
		search:    &fakeSearcher{postsResult: domain.OKResult(nil)},
		settings:  &fakeSettings{},
		limiter:   &fakeLimiter{verdict: antispam.Verdict{Allowed: true}},
		admins:    &fakeAdmins{},
		files:     &fakeFiles{},
	}
	f.bot = New(Options{
		Responder:   f.responder,
		Search:      f.search,
		Settings:    f.settings,
		Limiter:     f.limiter,
		Admins:      f.admins,
		Files:       f.files,
		BotUsername: "e621searchbot",
		Log:         zerolog.Nop(),
	})
	return f
}

func privateMessage() *domain.Message {
	return &domain.Message{MessageID: 10, ChatID: 100, ChatType: domain.ChatPrivate, UserID: 1}
}

func groupMessage() *domain.Message {
	return &domain.Message{MessageID: 10, ChatID: -100, ChatType: domain.ChatSupergroup, UserID: 1}
}

func simplePost(id int64) domain.Post {
	return domain.Post{
		ID:       id,
		FileURL:  "https://static.e621.net/f.jpg",
		FileExt:  "jpg",
		FileSize: 1000,
		Score:    42,
		FavCount: 7,
		Rating:   domain.RatingSafe,
	}
}

var errFake = errors.New("fake failure")
