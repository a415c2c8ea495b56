// Package stores defines the client state stores. This file centralizes the
// errors their operations return.
//
// Most store operations never fail: missing or corrupt persisted data falls
// back to defaults, out-of-range quantities are normalized, and removing
// something absent is a no-op. Only the chat store rejects input for which
// no safe default exists.
package stores

import "errors"

var (
	// ErrEmptyMessage is returned when a buyer message body is empty after
	// trimming. Nothing is persisted and no thread is created.
	ErrEmptyMessage = errors.New("message body is empty")

	// ErrTooLong is returned when a buyer message body exceeds the configured
	// rune limit.
	ErrTooLong = errors.New("message body too long")

	// ErrThreadNotFound is returned when a seller reply targets a thread that
	// was never created.
	ErrThreadNotFound = errors.New("thread not found")

	// ErrThreadMismatch is returned when a buyer message names a thread id
	// other than the one derived from its seller and product.
	ErrThreadMismatch = errors.New("thread id does not match seller and product")
)
