// Package session maps session ids to their client state stores.
//
// A session stands for one browser. Its stores are constructed on first use
// over the session's storage namespace and then kept in memory as the
// authoritative state; every mutation is already flushed to the backend, so
// idle sessions can be dropped at any time and rebuilt from their slots.
//
// Two processes serving the same session do not coordinate: the last writer
// of a slot wins.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tbourn/marketplace-state/internal/storage"
	"github.com/tbourn/marketplace-state/internal/stores"
)

// DefaultID is used when a request carries no session id.
const DefaultID = "demo-session"

// MaxIDLength bounds session ids; it matches the slot namespace column.
const MaxIDLength = 128

// ErrInvalidID is returned by Normalize for ids that cannot be used as a
// storage namespace.
var ErrInvalidID = errors.New("invalid session id")

// Normalize trims id, maps empty to DefaultID and rejects ids that are too
// long or contain characters outside [A-Za-z0-9._:-].
func Normalize(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultID, nil
	}
	if len(id) > MaxIDLength {
		return "", fmt.Errorf("%w: longer than %d bytes", ErrInvalidID, MaxIDLength)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '_', r == ':', r == '-':
		default:
			return "", fmt.Errorf("%w: unexpected %q", ErrInvalidID, r)
		}
	}
	return id, nil
}

// Session bundles the stores of one session.
type Session struct {
	ID       string
	Cart     *stores.Cart
	Wishlist *stores.Wishlist
	Chat     *stores.Chat

	revision atomic.Uint64
	epoch    int64
	lastSeen time.Time
	unsub    []func()
}

// Revision increases on every change signal of any of the session's stores.
func (s *Session) Revision() uint64 { return s.revision.Load() }

// Epoch identifies this in-memory instance of the session. Revisions restart
// at zero when an evicted session is rebuilt, so (Epoch, Revision) together
// name a state.
func (s *Session) Epoch() int64 { return s.epoch }

func (s *Session) close() {
	for _, fn := range s.unsub {
		fn()
	}
}

// Registry constructs and caches sessions. It is safe for concurrent use.
type Registry struct {
	provider storage.Provider
	chatOpts []stores.ChatOption
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	sweepN   uint64
	sweepAt  uint64
}

// Option configures a Registry.
type Option func(*Registry)

// WithTTL evicts sessions idle for at least ttl. Zero disables eviction.
func WithTTL(ttl time.Duration) Option { return func(r *Registry) { r.ttl = ttl } }

// WithChatOptions passes opts to every chat store the registry builds.
func WithChatOptions(opts ...stores.ChatOption) Option {
	return func(r *Registry) { r.chatOpts = append(r.chatOpts, opts...) }
}

// WithClock overrides time.Now for idle tracking.
func WithClock(now func() time.Time) Option { return func(r *Registry) { r.now = now } }

// WithSweepEvery runs the idle sweep every n lookups (default 1000).
func WithSweepEvery(n uint64) Option { return func(r *Registry) { r.sweepAt = n } }

// NewRegistry returns a registry whose sessions live in provider.
func NewRegistry(provider storage.Provider, opts ...Option) *Registry {
	r := &Registry{
		provider: provider,
		now:      time.Now,
		sessions: make(map[string]*Session),
		ttl:      30 * time.Minute,
		sweepAt:  1000,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Get returns the session for id, building its stores on first use. id must
// already be normalized. Stores load their slots outside the registry lock,
// so a slow backend only delays the session being built; when two callers
// race to build the same session the first insert wins.
func (r *Registry) Get(id string) *Session {
	if s, ok := r.lookup(id, r.now()); ok {
		return s
	}

	built := r.build(id)

	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		built.close()
		s.lastSeen = now
		return s
	}
	built.epoch = now.UnixNano()
	built.lastSeen = now
	r.sessions[id] = built
	return built
}

func (r *Registry) lookup(id string, now time.Time) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Sweep before touching the requested session so a stale entry is
	// rebuilt from its slots rather than refreshed.
	r.sweepN++
	if r.sweepAt > 0 && r.sweepN >= r.sweepAt {
		r.sweepLocked(now)
		r.sweepN = 0
	}

	s, ok := r.sessions[id]
	if ok {
		s.lastSeen = now
	}
	return s, ok
}

// Sweep evicts idle sessions and returns how many were dropped.
func (r *Registry) Sweep() int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(now)
}

// Len returns the number of cached sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) sweepLocked(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	n := 0
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) >= r.ttl {
			s.close()
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

func (r *Registry) build(id string) *Session {
	backend := r.provider.Namespace(id)
	s := &Session{
		ID:       id,
		Cart:     stores.NewCart(backend),
		Wishlist: stores.NewWishlist(backend),
		Chat:     stores.NewChat(backend, r.chatOpts...),
	}
	bump := func() { s.revision.Add(1) }
	s.unsub = []func(){
		s.Cart.Subscribe(bump),
		s.Wishlist.Subscribe(bump),
		s.Chat.Subscribe(bump),
	}
	return s
}
