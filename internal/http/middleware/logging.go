// Package middleware contains the Gin middleware shared by the storefront
// API: correlation and session ids, access logging, panic recovery,
// idempotency keys, rate limiting, security headers and metrics.
//
// Recommended order: RequestID, CORS, SessionID, Logger (or
// RedactingLogger), Recovery, then the rest. Logger reads the session id
// resolved by SessionID, so SessionID must run first.
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	ctxKeyLogger    = "logger"

	// maxQueryLogLength caps the logged query string, in bytes.
	maxQueryLogLength = 2048

	// headerStateRevision mirrors the header handlers write after touching
	// session state.
	headerStateRevision = "X-State-Revision"
)

// RequestID reuses an incoming X-Request-ID or mints a UUIDv4, and echoes it
// on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// requestLogger builds the per-request logger carrying correlation fields.
// Route params that identify storefront entities are attached when present.
func requestLogger(c *gin.Context, rid, path string) zerolog.Logger {
	sid, _ := c.Get(ctxKeySessionID)

	lc := log.With().
		Str("request_id", rid).
		Str("session_id", asString(sid)).
		Str("method", c.Request.Method).
		Str("path", path).
		Str("remote_ip", c.ClientIP())
	if id := c.Param("id"); id != "" {
		lc = lc.Str("resource_id", id)
	}
	return lc.Logger()
}

// Logger emits one access log line per request and stores a request-scoped
// logger for LoggerFrom. Level follows the outcome: error for 5xx or gin
// errors, warn for 4xx, info otherwise.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		rid, _ := c.Get(requestIDKey)
		l := requestLogger(c, asString(rid), path)
		c.Set(ctxKeyLogger, &l)

		c.Next()

		status := c.Writer.Status()
		ev := levelFor(&l, status, len(c.Errors) > 0)
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		if rev := c.Writer.Header().Get(headerStateRevision); rev != "" {
			ev = ev.Str("state_rev", rev)
		}
		if c.Writer.Header().Get(HeaderIdempotencyReplayed) != "" {
			ev = ev.Bool("replayed", true)
		}
		ev.
			Str("user_agent", c.Request.UserAgent()).
			Str("query", truncate(c.Request.URL.RawQuery, maxQueryLogLength)).
			Int64("bytes_in", c.Request.ContentLength).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size()).
			Msg("request")
	}
}

func levelFor(l *zerolog.Logger, status int, hasErrors bool) *zerolog.Event {
	switch {
	case hasErrors, status >= 500:
		return l.Error()
	case status >= 400:
		return l.Warn()
	default:
		return l.Info()
	}
}

// Recovery turns a panic into a JSON 500 using the API error envelope, or a
// bare 500 when the handler already started writing.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid, _ := c.Get(requestIDKey)
			sid, _ := c.Get(ctxKeySessionID)
			log.Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", asString(rid)).
				Str("session_id", asString(sid)).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(requestIDHeader, asString(rid))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": asString(rid),
				"code":       "internal_error",
				"message":    "internal server error",
			})
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, or the global logger when
// Logger is not installed.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(ctxKeyLogger); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// truncate cuts s to max bytes plus an ellipsis. max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
