package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/tbourn/marketplace-state/internal/session"
)

// keyFunc selects the identity a bucket belongs to.
type keyFunc func(*gin.Context) string

// KeyBySessionOrIP keys buckets by the session resolved by SessionID and
// falls back to the client IP. The shared demo session is keyed by IP so
// anonymous tabs do not drain one bucket together.
func KeyBySessionOrIP() keyFunc {
	return func(c *gin.Context) string {
		if v, ok := c.Get(ctxKeySessionID); ok {
			if s, ok := v.(string); ok && s != "" && s != session.DefaultID {
				return "session:" + s
			}
		}
		return "ip:" + c.ClientIP()
	}
}

// Request classes. Storefront tabs poll cart, wishlist and chat views far
// more often than they mutate them, so reads get their own larger bucket.
const (
	classRead  = "read"
	classWrite = "write"
)

func requestClass(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return classRead
	}
	return classWrite
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per (identity, request class). Idle
// buckets are evicted opportunistically every gcEvery lookups.
type RateLimiter struct {
	rps       rate.Limit
	burst     int
	readBurst int
	keyFn     keyFunc
	now       func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
	ttl      time.Duration
	cleanupN uint64
}

const gcEvery = 5000

// RateLimitOption customizes a RateLimiter.
type RateLimitOption func(*RateLimiter)

// WithReadBurstFactor multiplies the burst of the read bucket. Factors below
// one are ignored.
func WithReadBurstFactor(f int) RateLimitOption {
	return func(rl *RateLimiter) {
		if f >= 1 {
			rl.readBurst = rl.burst * f
		}
	}
}

// WithIdleTTL sets how long an unused bucket survives.
func WithIdleTTL(ttl time.Duration) RateLimitOption {
	return func(rl *RateLimiter) { rl.ttl = ttl }
}

// NewRateLimiter refills rps tokens per second up to burst (coerced to at
// least 1) for writes, and up to four times burst for reads unless
// overridden.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc, opts ...RateLimitOption) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	rl := &RateLimiter{
		rps:       rate.Limit(rps),
		burst:     burst,
		readBurst: burst * 4,
		keyFn:     keyFn,
		now:       time.Now,
		visitors:  make(map[string]*visitor),
		ttl:       10 * time.Minute,
	}
	for _, o := range opts {
		o(rl)
	}
	return rl
}

// getVisitor returns the limiter for key. Eviction runs before the lookup so
// a stale bucket is dropped even when it is the one requested.
func (rl *RateLimiter) getVisitor(key, class string) *rate.Limiter {
	now := rl.now()
	bucket := class + "|" + key

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanupN++
	if rl.cleanupN >= gcEvery {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.cleanupN = 0
	}

	if v, ok := rl.visitors[bucket]; ok {
		v.lastSeen = now
		return v.limiter
	}
	burst := rl.burst
	if class == classRead {
		burst = rl.readBurst
	}
	lim := rate.NewLimiter(rl.rps, burst)
	rl.visitors[bucket] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// IsRateBypass reports whether IdempotencyValidator flagged the request as a
// replay, which is served without spending a token.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// retryAfter rounds the wait for the next token up to whole seconds.
func retryAfter(lim *rate.Limiter, now time.Time) string {
	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return "1"
	}
	d := r.DelayFrom(now)
	r.CancelAt(now)
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// Handler rejects requests that exceed their bucket with 429, a Retry-After header and
// the API error envelope.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		class := requestClass(c.Request.Method)
		lim := rl.getVisitor(rl.keyFn(c), class)
		now := rl.now()
		if lim.AllowN(now, 1) {
			c.Next()
			return
		}

		rateLimited.WithLabelValues(class).Inc()
		c.Header("Retry-After", retryAfter(lim, now))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}
