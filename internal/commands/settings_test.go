package commands

import (
	"context"
	"strings"
	"testing"

	"github.com/jacklul/e621-telegram-bot/internal/dispatch"
	"github.com/jacklul/e621-telegram-bot/internal/domain"
	"github.com/jacklul/e621-telegram-bot/internal/groupcfg"
)

func settingsReq(msg *domain.Message) dispatch.Request {
	return dispatch.Request{Command: domain.CmdSettings, Interaction: domain.Interaction{Message: msg}}
}

func TestSettingsPrivateChatRefused(t *testing.T) {
	f := newFixture()

	f.bot.handleSettings(context.Background(), settingsReq(privateMessage()))

	if text := f.responder.messages[0].Text; text != "*Settings are currently only available in groups!*" {
		t.Errorf("Text = %q", text)
	}
	if len(f.settings.invalidations) != 0 {
		t.Error("private chats must not touch the settings cache")
	}
}

func TestSettingsRendersValues(t *testing.T) {
	f := newFixture()
	f.settings.settings = domain.GroupSettings{DefaultTags: "wolf", ForceTags: true, AntispamSeconds: 15}

	f.bot.handleSettings(context.Background(), settingsReq(groupMessage()))

	text := f.responder.messages[0].Text
	for _, want := range []string{
		"*Default tags*: wolf",
		"*Forced tags*: enabled",
		"*Anti-spam*: 15 seconds",
		"*SFW mode*: disabled",
		"How to set group settings?",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q:\n%s", want, text)
		}
	}
	if !f.responder.messages[0].NoPreview {
		t.Error("the help link must not unfurl")
	}
}

func TestSettingsUnsetValues(t *testing.T) {
	f := newFixture()

	f.bot.handleSettings(context.Background(), settingsReq(groupMessage()))

	text := f.responder.messages[0].Text
	if !strings.Contains(text, "*Default tags*: (not set)") || !strings.Contains(text, "*Anti-spam*: disabled") {
		t.Errorf("text = %q", text)
	}
}

func TestSettingsAdminInvalidatesFirst(t *testing.T) {
	f := newFixture()
	f.admins.admin = true

	f.bot.handleSettings(context.Background(), settingsReq(groupMessage()))

	if len(f.settings.invalidations) != 1 || f.settings.invalidations[0] != -100 {
		t.Errorf("invalidations = %v", f.settings.invalidations)
	}
}

func TestSettingsNonAdminKeepsCache(t *testing.T) {
	f := newFixture()

	f.bot.handleSettings(context.Background(), settingsReq(groupMessage()))

	if len(f.settings.invalidations) != 0 {
		t.Error("non-admins must not invalidate the cache")
	}
}

func TestSettingsFetchFailed(t *testing.T) {
	f := newFixture()
	f.settings.err = groupcfg.ErrNotFetchable

	f.bot.handleSettings(context.Background(), settingsReq(groupMessage()))

	if !strings.Contains(f.responder.messages[0].Text, "*Failed to fetch group description!*") {
		t.Errorf("Text = %q", f.responder.messages[0].Text)
	}
}

func TestSettingsBadFragment(t *testing.T) {
	f := newFixture()
	f.settings.err = groupcfg.ErrUnparseable

	f.bot.handleSettings(context.Background(), settingsReq(groupMessage()))

	if !strings.Contains(f.responder.messages[0].Text, "*Settings string is invalid!*") {
		t.Errorf("Text = %q", f.responder.messages[0].Text)
	}
}
