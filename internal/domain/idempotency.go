package domain

import (
	"time"

	"github.com/google/uuid"
)

// Idempotency represents a recorded result of a previously processed buyer
// message, keyed by (session_id, thread_id, key). Retries carrying the same
// Idempotency-Key get the original message back instead of a duplicate.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	SessionID string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_session_thread_key,priority:1"`
	ThreadID  string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_session_thread_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_session_thread_key,priority:3"`
	MessageID string    `gorm:"type:TEXT NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }

// NewIdempotency records that key produced messageID with status, valid for
// ttl from now.
func NewIdempotency(sessionID, threadID, key, messageID string, status int, now time.Time, ttl time.Duration) *Idempotency {
	return &Idempotency{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		ThreadID:  threadID,
		Key:       key,
		MessageID: messageID,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the record no longer deduplicates retries at now.
func (i Idempotency) Expired(now time.Time) bool { return !i.ExpiresAt.After(now) }
