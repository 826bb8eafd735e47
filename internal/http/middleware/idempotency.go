// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for unsafe HTTP methods. It
// validates an Idempotency-Key request header and consults a store for a
// previous completion of the same (owner, route, key). The owner is the
// caller identity, or "ip:<client ip>" for anonymous callers. Handlers then:
//   - serve the stored resource when ReplayOf reports one
//   - call Remember after a successful create so retries can be replayed
//
// Replays bypass both the token bucket and the quotas.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header carrying the idempotency key.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // string: resource id of the stored result
	ctxKeyIdemStore  = "idem.store"
	ctxKeyRateBypass = "rate.bypass"
)

// IdempotencyStore persists completed requests.
//
// Lookup returns the resource id recorded for (userID, scope, key) when a
// record exists and has not expired at now. Remember records a completion.
type IdempotencyStore interface {
	Lookup(ctx context.Context, userID, scope, key string, now time.Time) (resourceID string, found bool, err error)
	Remember(ctx context.Context, userID, scope, key, resourceID string, status int) error
}

// IdempotencyOptions configures header validation for IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. Defaults to ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// GetIdempotencyKey returns the validated key stashed by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s, _ := c.Value(ctxKeyIdemKey).(string)
	return s, s != ""
}

// ReplayOf returns the resource id of a stored completion of this request.
func ReplayOf(c *gin.Context) (string, bool) {
	s, _ := c.Value(ctxKeyIdemReplay).(string)
	return s, s != ""
}

// Remember records resourceID as the result of this request when it carried
// a valid Idempotency-Key and a store is configured. Otherwise it is a no-op.
func Remember(c *gin.Context, resourceID string, status int) error {
	key, ok := GetIdempotencyKey(c)
	if !ok {
		return nil
	}
	store, _ := c.Value(ctxKeyIdemStore).(IdempotencyStore)
	if store == nil {
		return nil
	}
	return store.Remember(c.Request.Context(), idempotencyOwner(c), c.FullPath(), key, resourceID, status)
}

// idempotencyOwner scopes stored keys. Anonymous callers are separated by
// client IP so they never replay each other's results.
func idempotencyOwner(c *gin.Context) string {
	if uid := UserID(c); uid != "" {
		return uid
	}
	return "ip:" + c.ClientIP()
}

// IdempotencyValidator validates the Idempotency-Key header when present
// and, for POST/PUT/PATCH with a non-nil store, marks replays.
//
// Behavior:
//   - No header: no-op.
//   - Invalid header: 400 with code bad_idempotency_key.
//   - Stored completion found: ReplayOf reports it and rate limits are skipped.
//   - Lookup errors are ignored; the request is processed normally.
func IdempotencyValidator(opts IdempotencyOptions, store IdempotencyStore) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_idempotency_key",
				"detail":     "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if store == nil || !unsafeMethod(c.Request.Method) {
			c.Next()
			return
		}
		c.Set(ctxKeyIdemStore, store)

		id, found, err := store.Lookup(c.Request.Context(), idempotencyOwner(c), c.FullPath(), key, time.Now().UTC())
		if err != nil {
			LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
		} else if found && id != "" {
			c.Set(ctxKeyIdemReplay, id)
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	}
}

func unsafeMethod(m string) bool {
	switch m {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}
