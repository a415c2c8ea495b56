package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// RedactOptions configures RedactingLogger. MaskHeaders lists extra header
// names (case-insensitive) whose values are replaced with "[REDACTED]", on
// top of Authorization, Cookie and Set-Cookie.
type RedactOptions struct {
	MaskHeaders []string
}

var (
	redactUUID  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	redactEmail = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits only, so the hex groups of a UUID never match.
	redactPhone = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// scrubber removes contact details and opaque ids from log values.
type scrubber struct {
	masked map[string]struct{}
}

func newScrubber(extra []string) scrubber {
	s := scrubber{masked: map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}}
	for _, h := range extra {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			s.masked[h] = struct{}{}
		}
	}
	return s
}

// text redacts ids first: the phone pattern would otherwise eat UUID digits.
func (s scrubber) text(v string) string {
	if v == "" {
		return v
	}
	v = redactUUID.ReplaceAllString(v, "[REDACTED:id]")
	v = redactEmail.ReplaceAllString(v, "[REDACTED:email]")
	return redactPhone.ReplaceAllString(v, "[REDACTED:phone]")
}

func (s scrubber) headers(c *gin.Context) map[string]string {
	out := make(map[string]string, len(c.Request.Header))
	for k, vv := range c.Request.Header {
		if _, ok := s.masked[strings.ToLower(k)]; ok {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = s.text(strings.Join(vv, ", "))
	}
	return out
}

// RedactingLogger is the production access logger. Bodies are never logged
// since they carry chat messages; the query string and request headers are
// scrubbed of emails, phone numbers and UUIDs, and sensitive headers are
// masked. Like Logger it installs a request-scoped logger for LoggerFrom.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	scrub := newScrubber(opts.MaskHeaders)

	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		rid := c.Writer.Header().Get(requestIDHeader)
		if rid == "" {
			rid = c.GetHeader(requestIDHeader)
		}
		l := requestLogger(c, rid, path)
		c.Set(ctxKeyLogger, &l)
		headers := scrub.headers(c)

		c.Next()

		status := c.Writer.Status()
		ev := levelFor(&l, status, false)
		if rev := c.Writer.Header().Get(headerStateRevision); rev != "" {
			ev = ev.Str("state_rev", rev)
		}
		ev.
			Str("query", scrub.text(c.Request.URL.RawQuery)).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}
