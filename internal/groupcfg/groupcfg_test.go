package groupcfg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jacklul/e621-telegram-bot/internal/domain"
	"github.com/jacklul/e621-telegram-bot/internal/store"
)

type fakeFetcher struct {
	description string
	err         error
	calls       int
}

func (f *fakeFetcher) ChatDescription(_ context.Context, _ int64) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.description, nil
}

func newTestResolver(fetcher *fakeFetcher) *Resolver {
	return New(store.NewMemory(), fetcher, "e621searchbot", time.Hour)
}

func TestResolveParsesFragment(t *testing.T) {
	fetcher := &fakeFetcher{description: `Fan art group. @e621searchbot[{"tags":"wolf solo","force":1,"antispam":15,"sfw":1}] rules in pinned message.`}
	r := newTestResolver(fetcher)

	got, err := r.Resolve(context.Background(), -100)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := domain.GroupSettings{DefaultTags: "wolf solo", ForceTags: true, AntispamSeconds: 15, SFWOnly: true}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestResolveCaseInsensitiveMarker(t *testing.T) {
	fetcher := &fakeFetcher{description: `@E621SearchBot[{"tags":"dragon"}]`}
	r := newTestResolver(fetcher)

	got, err := r.Resolve(context.Background(), -100)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.DefaultTags != "dragon" {
		t.Errorf("DefaultTags = %q", got.DefaultTags)
	}
}

func TestResolveNoFragmentYieldsDefaults(t *testing.T) {
	fetcher := &fakeFetcher{description: "Just a regular group description."}
	r := newTestResolver(fetcher)

	got, err := r.Resolve(context.Background(), -100)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != Defaults() {
		t.Errorf("got %+v, want defaults", got)
	}

	// Defaults are cached like any other outcome.
	r.Resolve(context.Background(), -100)
	if fetcher.calls != 1 {
		t.Errorf("fetcher called %d times, want 1", fetcher.calls)
	}
}

func TestResolveCachesAcrossCalls(t *testing.T) {
	fetcher := &fakeFetcher{description: `@e621searchbot[{"tags":"wolf"}]`}
	r := newTestResolver(fetcher)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := r.Resolve(ctx, -100); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher called %d times, want 1", fetcher.calls)
	}
}

func TestResolveSeparateChats(t *testing.T) {
	fetcher := &fakeFetcher{description: `@e621searchbot[{"tags":"wolf"}]`}
	r := newTestResolver(fetcher)
	ctx := context.Background()

	r.Resolve(ctx, -100)
	r.Resolve(ctx, -200)
	if fetcher.calls != 2 {
		t.Errorf("fetcher called %d times, want one per chat", fetcher.calls)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	fetcher := &fakeFetcher{description: `@e621searchbot[{"antispam":5}]`}
	r := newTestResolver(fetcher)
	ctx := context.Background()

	r.Resolve(ctx, -100)
	fetcher.description = `@e621searchbot[{"antispam":30}]`
	if err := r.Invalidate(ctx, -100); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}

	got, err := r.Resolve(ctx, -100)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.AntispamSeconds != 30 {
		t.Errorf("AntispamSeconds = %d, want refetched value 30", got.AntispamSeconds)
	}
	if fetcher.calls != 2 {
		t.Errorf("fetcher called %d times, want 2", fetcher.calls)
	}
}

func TestResolveFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("chat not found")}
	r := newTestResolver(fetcher)

	_, err := r.Resolve(context.Background(), -100)
	if !errors.Is(err, ErrNotFetchable) {
		t.Fatalf("err = %v, want ErrNotFetchable", err)
	}

	// Failures must not be cached.
	r.Resolve(context.Background(), -100)
	if fetcher.calls != 2 {
		t.Errorf("fetcher called %d times, want 2", fetcher.calls)
	}
}

func TestResolveBadFragment(t *testing.T) {
	fetcher := &fakeFetcher{description: `@e621searchbot[{"tags": wolf}]`}
	r := newTestResolver(fetcher)

	_, err := r.Resolve(context.Background(), -100)
	if !errors.Is(err, ErrUnparseable) {
		t.Fatalf("err = %v, want ErrUnparseable", err)
	}
}

func TestResolveNegativeAntispamClamped(t *testing.T) {
	fetcher := &fakeFetcher{description: `@e621searchbot[{"antispam":-5}]`}
	r := newTestResolver(fetcher)

	got, err := r.Resolve(context.Background(), -100)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.AntispamSeconds != 0 {
		t.Errorf("AntispamSeconds = %d, want 0", got.AntispamSeconds)
	}
}

func TestExtractFragment(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
		found       bool
	}{
		{"plain", `@bot[{"sfw":1}]`, `{"sfw":1}`, true},
		{"surrounded", `before @bot[{"sfw":1}] after`, `{"sfw":1}`, true},
		{"bracket in string", `@bot[{"tags":"a]b"}]`, `{"tags":"a]b"}`, true},
		{"nested array", `@bot[{"tags":"x","extra":[1,2]}]`, `{"tags":"x","extra":[1,2]}`, true},
		{"unterminated", `@bot[{"sfw":1}`, "", false},
		{"wrong username", `@other[{"sfw":1}]`, "", false},
		{"no marker", `plain description`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := extractFragment(tt.description, "bot")
			if found != tt.found || got != tt.want {
				t.Errorf("extractFragment(%q) = (%q, %v), want (%q, %v)", tt.description, got, found, tt.want, tt.found)
			}
		})
	}
}
