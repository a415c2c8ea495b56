// Package storage provides the durable key/value slots that back the client
// state stores. A slot is one named JSON document inside a namespace; a
// namespace stands for one browser session.
//
// Three providers are available:
//
//   - MemoryStore: process-local maps, used in tests and for ephemeral demos.
//   - SQLStore:    one row per slot in the "slots" table (gorm + SQLite).
//   - RedisStore:  one string key per slot.
//
// Each provider hands out a namespace-scoped Backend. Backends do not
// interpret slot contents and perform no locking beyond what the underlying
// medium provides: two writers of the same slot resolve to last-writer-wins.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the slot does not exist.
	ErrNotFound = errors.New("slot not found")
	// ErrQuotaExceeded is returned by Set when the backend refuses the write
	// because of its size limit.
	ErrQuotaExceeded = errors.New("slot quota exceeded")
	// ErrUnknownBackend is returned by Kind.Validate for unsupported kinds.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Backend reads and writes the slots of a single namespace.
type Backend interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Set(ctx context.Context, name string, value []byte) error
	Remove(ctx context.Context, name string) error
}

// Provider hands out namespace-scoped backends.
type Provider interface {
	Namespace(ns string) Backend
}

// Lister is implemented by providers that can enumerate the slot names of a
// namespace.
type Lister interface {
	Names(ctx context.Context, ns string) ([]string, error)
}

// Kind names a provider implementation.
type Kind string

const (
	KindMemory Kind = "memory"
	KindSQLite Kind = "sqlite"
	KindRedis  Kind = "redis"
)

// Validate reports ErrUnknownBackend for anything but the known kinds.
func (k Kind) Validate() error {
	switch k {
	case KindMemory, KindSQLite, KindRedis:
		return nil
	}
	return ErrUnknownBackend
}
