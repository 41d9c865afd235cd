// Package antispam throttles repeated searches from the same chat with a
// fixed cooldown window per command.
//
// State lives in the shared store so that webhook deployments with more
// than one process agree on who is throttled. Keys follow the pattern
// "antispam:<command>:<chatID>" and hold the unix second of the last
// allowed search.
package antispam

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Store is the slice of the cache store the limiter needs.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Verdict is the outcome of one acquisition attempt.
type Verdict struct {
	Allowed bool
	// RemainingSeconds is how long the caller must wait, at least 1 when
	// not allowed.
	RemainingSeconds int
}

// Limiter enforces per-chat, per-command cooldowns.
type Limiter struct {
	store Store

	now func() time.Time // test hook
}

// New builds a Limiter over the given store.
func New(store Store) *Limiter {
	return &Limiter{store: store, now: time.Now}
}

func key(command string, chatID int64) string {
	return fmt.Sprintf("antispam:%s:%d", command, chatID)
}

// Acquire checks the cooldown for (command, chatID) and, when the chat is
// clear, records the current time as the start of a new window. A window of
// zero or less disables throttling entirely and touches no state.
//
// The check and the write are two store round trips, so two simultaneous
// requests from one chat can both pass. The cooldown is a politeness
// measure, not a quota, and the occasional double pass is harmless.
func (l *Limiter) Acquire(ctx context.Context, command string, chatID int64, window time.Duration) (Verdict, error) {
	if window <= 0 {
		return Verdict{Allowed: true}, nil
	}

	k := key(command, chatID)
	now := l.now()

	raw, ok, err := l.store.Get(ctx, k)
	if err != nil {
		return Verdict{}, err
	}
	if ok {
		if stored, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			remaining := int(window.Seconds()) - int(now.Unix()-stored)
			if remaining > 0 {
				return Verdict{RemainingSeconds: remaining}, nil
			}
			// An entry the store has not reaped yet. Treat it as expired
			// and start a fresh window below.
		}
	}

	if err := l.store.Set(ctx, k, strconv.FormatInt(now.Unix(), 10), window); err != nil {
		return Verdict{}, err
	}
	return Verdict{Allowed: true}, nil
}
