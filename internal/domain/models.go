// Package domain defines the data model of the marketplace client state:
// product snapshots, cart lines, chat threads and messages, and the gorm
// models used to persist them in durable slots.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Slot is one named, JSON-encoded value in a session namespace. It is the
// durable stand-in for a browser's local storage entry: each store owns its
// slot names and is the only writer to them.
//
// Fields:
//   - Namespace: session namespace (one per browser session).
//   - Name: stable slot name (e.g. "kendem-cart").
//   - Value: raw JSON document as written by the owning store.
//   - UpdatedAt: last write time, managed by GORM.
type Slot struct {
	ID        uint           `json:"-"          gorm:"primaryKey"`
	Namespace string         `json:"namespace"  gorm:"type:varchar(128);not null;uniqueIndex:ux_slot_ns_name,priority:1"`
	Name      string         `json:"name"       gorm:"type:varchar(128);not null;uniqueIndex:ux_slot_ns_name,priority:2"`
	Value     datatypes.JSON `json:"value"      gorm:"not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"index"`
}

// TableName returns the database table name for Slot.
func (Slot) TableName() string { return "slots" }
