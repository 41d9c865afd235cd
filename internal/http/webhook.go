package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jacklul/e621-telegram-bot/internal/config"
	"github.com/jacklul/e621-telegram-bot/internal/http/middleware"
)

// webhookHandler receives Telegram updates. The secret path segment guards
// the endpoint; a replayed update_id inside the dedup window is acknowledged
// without being handled again, so Telegram retries and multi-delivery do not
// trigger duplicate bot responses.
func webhookHandler(deps Deps, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if subtle.ConstantTimeCompare([]byte(c.Param("secret")), []byte(cfg.WebhookSecret)) != 1 {
			fail(c, http.StatusForbidden, "forbidden", "invalid webhook secret")
			return
		}

		var update tgbotapi.Update
		if err := json.NewDecoder(c.Request.Body).Decode(&update); err != nil {
			fail(c, http.StatusBadRequest, "bad_request", "malformed update payload")
			return
		}

		if seen := markSeen(c, deps, update.UpdateID, cfg.UpdateDedupTTL); seen {
			c.JSON(http.StatusOK, gin.H{"ok": true, "duplicate": true})
			return
		}

		deps.Updates.Handle(c.Request.Context(), update)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// markSeen records update_id in the store and reports whether it was already
// there. Store failures fail open: a missed dedup beats a dropped update.
func markSeen(c *gin.Context, deps Deps, updateID int, ttl time.Duration) bool {
	key := fmt.Sprintf("update:%d", updateID)
	ctx := c.Request.Context()

	if _, ok, err := deps.Store.Get(ctx, key); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Str("key", key).Msg("dedup lookup failed")
		return false
	} else if ok {
		return true
	}

	if err := deps.Store.Set(ctx, key, "1", ttl); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Str("key", key).Msg("dedup write failed")
	}
	return false
}
