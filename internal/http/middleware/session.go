// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the client session. Every state endpoint operates on the
// stores of exactly one session, named by the X-Session-ID request header.
// Requests without the header share the demo session.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/marketplace-state/internal/session"
)

const (
	// HeaderSessionID carries the client session id.
	HeaderSessionID = "X-Session-ID"

	ctxKeySessionID = "sessionID"
)

// SessionID validates the X-Session-ID header and stashes the normalized id
// in the Gin context. Invalid ids are rejected with 400 before any store is
// touched.
func SessionID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := session.Normalize(c.GetHeader(HeaderSessionID))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_session_id",
				"message":    err.Error(),
			})
			return
		}
		c.Set(ctxKeySessionID, id)
		c.Next()
	}
}

// SessionIDFrom returns the session id stored by SessionID, or
// session.DefaultID when the middleware did not run.
func SessionIDFrom(c *gin.Context) string {
	if v, ok := c.Get(ctxKeySessionID); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return session.DefaultID
}
