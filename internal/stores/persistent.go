package stores

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/marketplace-state/internal/storage"
)

// Slot names. They are part of the persisted format and must not change.
const (
	SlotCart         = "kendem-cart"
	SlotWishlist     = "kendem-wishlist"
	SlotChatThreads  = "kendem-chat-threads"
	SlotChatMessages = "kendem-chat-messages"
)

// defaultSlotTimeout bounds a single backend round trip.
const defaultSlotTimeout = 5 * time.Second

// Shape is the JSON kind a slot must decode from.
type Shape uint8

const (
	ShapeArray Shape = iota
	ShapeObject
)

func (s Shape) matches(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch s {
	case ShapeArray:
		return raw[0] == '['
	case ShapeObject:
		return raw[0] == '{'
	}
	return false
}

// Slot binds a value type to one named slot of a backend.
//
// Load never fails: an absent, unreadable, wrongly shaped or undecodable
// slot yields the default. Save never fails either: errors are logged,
// counted and dropped, and the caller's in-memory state stays authoritative.
type Slot[T any] struct {
	backend storage.Backend
	name    string
	shape   Shape
	def     func() T
	timeout time.Duration
}

// NewSlot returns a slot named name over backend. def builds the default
// value and is called on every fallback, so it must return a fresh value.
func NewSlot[T any](backend storage.Backend, name string, shape Shape, def func() T) *Slot[T] {
	return &Slot[T]{
		backend: backend,
		name:    name,
		shape:   shape,
		def:     def,
		timeout: defaultSlotTimeout,
	}
}

// Name returns the slot name.
func (s *Slot[T]) Name() string { return s.name }

// Load reads and decodes the slot.
func (s *Slot[T]) Load() T {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	raw, err := s.backend.Get(ctx, s.name)
	if errors.Is(err, storage.ErrNotFound) {
		return s.def()
	}
	if err != nil {
		return s.fallback("unreadable", err)
	}
	if !s.shape.matches(raw) {
		return s.fallback("shape", nil)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return s.fallback("decode", err)
	}
	return v
}

// Save encodes v and writes it to the slot.
func (s *Slot[T]) Save(v T) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.writeFailed(err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.backend.Set(ctx, s.name, raw); err != nil {
		s.writeFailed(err)
	}
}

func (s *Slot[T]) fallback(reason string, err error) T {
	slotLoadFallbacks.WithLabelValues(s.name, reason).Inc()
	log.Warn().
		Str("slot", s.name).
		Str("reason", reason).
		Err(err).
		Msg("slot load fell back to default")
	return s.def()
}

func (s *Slot[T]) writeFailed(err error) {
	slotWriteFailures.WithLabelValues(s.name).Inc()
	ev := log.Error()
	if errors.Is(err, storage.ErrQuotaExceeded) {
		ev = log.Warn()
	}
	ev.Str("slot", s.name).Err(err).Msg("slot write dropped; keeping in-memory state")
}
