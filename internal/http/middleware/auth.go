// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the service credential checks. Lead submissions come
// from a public website, so the credential is a publishable bearer token (or
// an HS256 JWT minted for the site) rather than a user login. The table API
// additionally requires an apikey header, mirroring hosted table gateways.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ctxKeySubject = "auth.subject"

	// HeaderAPIKey carries the table API key.
	HeaderAPIKey = "apikey"

	subjectService = "service"
)

// Subject returns the authenticated subject stored by BearerAuth, or "".
func Subject(c *gin.Context) string {
	v, _ := c.Get(ctxKeySubject)
	return asString(v)
}

// BearerAuth checks the Authorization header. When jwtSecret is set the
// bearer must be an HS256 JWT signed with it and its "sub" claim becomes the
// subject; otherwise the bearer must equal token. With both empty the
// middleware is a no-op. Preflight requests are never challenged.
func BearerAuth(token, jwtSecret string) gin.HandlerFunc {
	if token == "" && jwtSecret == "" {
		return func(c *gin.Context) { c.Next() }
	}
	secret := []byte(jwtSecret)

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		raw, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, "Missing bearer token")
			return
		}

		if len(secret) > 0 {
			sub, err := verifyJWT(raw, secret)
			if err != nil {
				LoggerFrom(c).Debug().Err(err).Msg("jwt rejected")
				unauthorized(c, "Invalid bearer token")
				return
			}
			c.Set(ctxKeySubject, sub)
			c.Next()
			return
		}

		if !constantEqual(raw, token) {
			unauthorized(c, "Invalid bearer token")
			return
		}
		c.Set(ctxKeySubject, subjectService)
		c.Next()
	}
}

// APIKey requires the apikey header to equal key. Empty key disables it.
func APIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if !constantEqual(c.GetHeader(HeaderAPIKey), key) {
			unauthorized(c, "Invalid API key")
			return
		}
		c.Next()
	}
}

func verifyJWT(raw string, secret []byte) (string, error) {
	tok, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	sub, err := tok.Claims.GetSubject()
	if err != nil || sub == "" {
		return subjectService, nil
	}
	return sub, nil
}

func bearer(h string) (string, bool) {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(h[len(prefix):])
	return tok, tok != ""
}

func constantEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"error":      msg,
	})
}
