package commands

import (
	"context"
	"testing"

	"github.com/jacklul/e621-telegram-bot/internal/dispatch"
	"github.com/jacklul/e621-telegram-bot/internal/domain"
	"github.com/jacklul/e621-telegram-bot/internal/e621"
)

const testHash = "aabbccddeeff00112233445566778899"

func md5Req(hash string) dispatch.Request {
	return dispatch.Request{
		Command:     domain.CmdMD5,
		Args:        hash,
		Interaction: domain.Interaction{Message: privateMessage()},
	}
}

func TestMD5Found(t *testing.T) {
	f := newFixture()
	f.search.postsResult = domain.OKResult([]domain.Post{simplePost(4242)})

	f.bot.handleMD5(context.Background(), md5Req(testHash))

	if req := f.search.postsRequests[0]; req.Tags != "md5:"+testHash {
		t.Errorf("Tags = %q", req.Tags)
	}
	msg := f.responder.messages[0]
	if msg.Text != "*Post:* https://e621.net/posts/4242" {
		t.Errorf("Text = %q", msg.Text)
	}
	if !msg.NoPreview || msg.ReplyTo != 10 {
		t.Errorf("got %+v", msg)
	}
}

func TestMD5NotFound(t *testing.T) {
	f := newFixture()
	f.search.postsResult = domain.OKResult(nil)

	f.bot.handleMD5(context.Background(), md5Req(testHash))

	if text := f.responder.messages[0].Text; text != "*Post not found*" {
		t.Errorf("Text = %q", text)
	}
}

func TestMD5InvalidHashSilent(t *testing.T) {
	f := newFixture()

	for _, hash := range []string{"", "zz", "AABBCCDDEEFF00112233445566778899", testHash + "0"} {
		f.bot.handleMD5(context.Background(), md5Req(hash))
	}

	if len(f.search.postsRequests) != 0 || len(f.responder.messages) != 0 {
		t.Error("anything but a lowercase 32-hex hash must be ignored")
	}
}

func TestMD5SearchError(t *testing.T) {
	f := newFixture()
	f.search.postsResult = domain.ErrorResult(e621.ReasonConnection, "dial timeout")

	f.bot.handleMD5(context.Background(), md5Req(testHash))

	if text := f.responder.messages[0].Text; text != "*Error:* "+e621.ReasonConnection {
		t.Errorf("Text = %q", text)
	}
}
