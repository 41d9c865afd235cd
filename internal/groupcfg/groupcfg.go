// Package groupcfg resolves per-group bot settings.
//
// Group administrators configure the bot by embedding a JSON fragment in
// the group description, tagged with the bot's username:
//
//	@e621searchbot[{"tags":"wolf","force":1,"antispam":15,"sfw":1}]
//
// The resolver fetches the description through Telegram, extracts and
// parses the fragment, and caches the outcome in the shared store under
// "settings:<chatID>" so ordinary searches do not hit the getChat method.
package groupcfg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jacklul/e621-telegram-bot/internal/domain"
)

var (
	// ErrNotFetchable means the chat description could not be read at all,
	// usually because the bot lost access to the chat.
	ErrNotFetchable = errors.New("chat description is not available")

	// ErrUnparseable means a settings fragment was found but its JSON did
	// not decode.
	ErrUnparseable = errors.New("settings fragment is not valid JSON")
)

// Store is the slice of the cache store the resolver needs.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// DescriptionFetcher reads a chat's description. The Telegram transport
// implements it with getChat.
type DescriptionFetcher interface {
	ChatDescription(ctx context.Context, chatID int64) (string, error)
}

// wireSettings is the fragment's JSON shape. Booleans travel as 0/1
// integers. Every field is optional; an absent field keeps its zero
// default, so "{}" is a valid fragment that disables everything.
type wireSettings struct {
	Tags     string `json:"tags"`
	Force    int    `json:"force"`
	Antispam int    `json:"antispam"`
	SFW      int    `json:"sfw"`
}

// Resolver caches parsed group settings.
type Resolver struct {
	store       Store
	fetcher     DescriptionFetcher
	botUsername string
	ttl         time.Duration
}

// New builds a Resolver. ttl bounds how long a cached settings entry is
// served before the description is read again.
func New(store Store, fetcher DescriptionFetcher, botUsername string, ttl time.Duration) *Resolver {
	return &Resolver{
		store:       store,
		fetcher:     fetcher,
		botUsername: strings.TrimPrefix(botUsername, "@"),
		ttl:         ttl,
	}
}

func cacheKey(chatID int64) string {
	return fmt.Sprintf("settings:%d", chatID)
}

// Defaults returns the settings used for private chats and for groups with
// no fragment in their description. Everything off, no throttling.
func Defaults() domain.GroupSettings {
	return domain.GroupSettings{}
}

// Resolve returns the settings for a group chat, from cache when possible.
//
// A group without a fragment resolves to Defaults and that outcome is
// cached too, so fragment-less groups cost one description fetch per TTL
// instead of one per search. Fetch and parse failures are never cached.
func (r *Resolver) Resolve(ctx context.Context, chatID int64) (domain.GroupSettings, error) {
	key := cacheKey(chatID)
	if raw, ok, err := r.store.Get(ctx, key); err == nil && ok {
		var cached domain.GroupSettings
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
		// A cached entry we cannot decode is dropped and refetched.
		_ = r.store.Delete(ctx, key)
	}

	settings, err := r.fetch(ctx, chatID)
	if err != nil {
		return domain.GroupSettings{}, err
	}

	if raw, err := json.Marshal(settings); err == nil {
		if err := r.store.Set(ctx, key, string(raw), r.ttl); err != nil {
			log.Warn().Err(err).Int64("chat_id", chatID).Msg("settings cache write failed")
		}
	}
	return settings, nil
}

// Invalidate drops the cached settings for a chat. The settings command
// calls it so administrators see description edits immediately.
func (r *Resolver) Invalidate(ctx context.Context, chatID int64) error {
	return r.store.Delete(ctx, cacheKey(chatID))
}

func (r *Resolver) fetch(ctx context.Context, chatID int64) (domain.GroupSettings, error) {
	desc, err := r.fetcher.ChatDescription(ctx, chatID)
	if err != nil {
		return domain.GroupSettings{}, fmt.Errorf("%w: %v", ErrNotFetchable, err)
	}

	fragment, found := extractFragment(desc, r.botUsername)
	if !found {
		return Defaults(), nil
	}

	var wire wireSettings
	if err := json.Unmarshal([]byte(fragment), &wire); err != nil {
		return domain.GroupSettings{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	settings := domain.GroupSettings{
		DefaultTags:     strings.TrimSpace(wire.Tags),
		ForceTags:       wire.Force == 1,
		SFWOnly:         wire.SFW == 1,
		AntispamSeconds: wire.Antispam,
	}
	if settings.AntispamSeconds < 0 {
		settings.AntispamSeconds = 0
	}
	return settings, nil
}

// extractFragment locates "@<username>[<json>]" in a description and
// returns the bracketed JSON object. Matching is case-insensitive on the
// username. The fragment ends at the bracket closing the JSON value, so
// descriptions may carry text after it.
func extractFragment(description, username string) (string, bool) {
	marker := "@" + strings.ToLower(username) + "["
	idx := strings.Index(strings.ToLower(description), marker)
	if idx < 0 {
		return "", false
	}

	rest := description[idx+len(marker):]
	depth := 0
	inString := false
	escaped := false
	for i, ch := range rest {
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}':
			depth--
		case ']':
			if depth == 0 {
				return rest[:i], true
			}
			depth--
		}
	}
	return "", false
}
