// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Slot
// model: one JSON document per (namespace, name).
//
// All functions are context-aware and accept a *gorm.DB handle. They follow
// the "thin repository" approach: no decoding, no fallbacks. Deciding what
// a missing or corrupt slot means is left to the caller.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/marketplace-state/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience.
var ErrNotFound = gorm.ErrRecordNotFound

// GetSlot returns the raw value stored under (namespace, name), or
// ErrNotFound.
func GetSlot(ctx context.Context, db *gorm.DB, namespace, name string) ([]byte, error) {
	var s domain.Slot
	err := db.WithContext(ctx).
		Where("namespace = ? AND name = ?", namespace, name).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return []byte(s.Value), nil
}

// PutSlot inserts or replaces the value stored under (namespace, name).
func PutSlot(ctx context.Context, db *gorm.DB, namespace, name string, value []byte) error {
	now := time.Now().UTC()
	s := &domain.Slot{
		Namespace: namespace,
		Name:      name,
		Value:     datatypes.JSON(value),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(s).Error
}

// DeleteSlot removes (namespace, name). Deleting a missing slot is not an
// error.
func DeleteSlot(ctx context.Context, db *gorm.DB, namespace, name string) error {
	return db.WithContext(ctx).
		Where("namespace = ? AND name = ?", namespace, name).
		Delete(&domain.Slot{}).Error
}

// ListSlots returns every slot of namespace ordered by name.
func ListSlots(ctx context.Context, db *gorm.DB, namespace string) ([]domain.Slot, error) {
	var out []domain.Slot
	err := db.WithContext(ctx).
		Where("namespace = ?", namespace).
		Order("name asc").
		Find(&out).Error
	return out, err
}

// IsNotFound reports whether err means the slot does not exist.
func IsNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }
