// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for lead submissions. The client
// generates one Idempotency-Key per submit action and reuses it for every
// retry of that action. The middleware validates the header, stashes it in
// the Gin context and, when a stored replay already exists for
// (scope, key), marks the request so handlers answer from the replay and the
// rate limiter lets it through.
package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header carrying the idempotency key.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotencyReplayed is set to "true" on responses served from a replay.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // bool: true when a stored replay exists
	ctxKeyIdemScope  = "idem.scope"
	ctxKeyRateBypass = "rate.bypass" // bool: true to skip rate limiting
)

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the validated key stored by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether a stored result exists for this request's key.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyScope is the replay namespace for a request. It is the scope
// chosen by IdempotencyOptions.Scope when the validator ran, otherwise the
// matched route.
func IdempotencyScope(c *gin.Context) string {
	if s := c.GetString(ctxKeyIdemScope); s != "" {
		return s
	}
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}

// IdempotencyOptions configures header validation.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. Nil uses ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
	// Scope maps a matched route to its replay namespace. Routes mapped to
	// the same scope share keys. Nil or an empty result keeps the route.
	Scope func(route string) string
}

// IdempotencyLookup answers whether a replay exists for (scope, key). Lookup
// errors are ignored and the request proceeds normally.
type IdempotencyLookup func(ctx context.Context, scope, key string) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header when present.
// An invalid key is rejected with 400; a known key marks the request as a
// replay and bypasses rate limiting.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
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
				"error":      "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)
		if opts.Scope != nil {
			if s := opts.Scope(c.FullPath()); s != "" {
				c.Set(ctxKeyIdemScope, s)
			}
		}

		if lookup != nil && c.Request.Method == http.MethodPost {
			if exists, err := lookup(c.Request.Context(), IdempotencyScope(c), key); err == nil && exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}
