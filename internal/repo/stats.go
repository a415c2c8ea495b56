// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries over stored
// slots, used by the CLI to inspect a session namespace.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/marketplace-state/internal/domain"
)

// SlotsStats returns aggregate metadata for a namespace: the number of slots
// and the greatest UpdatedAt among them. When the namespace holds no slots,
// the returned count is 0 and maxUpdatedAt is nil.
func SlotsStats(ctx context.Context, db *gorm.DB, namespace string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Slot{}).Where("namespace = ?", namespace)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// Namespaces returns the distinct namespaces that own at least one slot.
func Namespaces(ctx context.Context, db *gorm.DB) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.Slot{}).
		Distinct("namespace").
		Order("namespace asc").
		Pluck("namespace", &out).Error
	return out, err
}
