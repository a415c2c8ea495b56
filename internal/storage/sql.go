package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tbourn/marketplace-state/internal/repo"
)

// SQLStore keeps slots in the "slots" table. Run repo.AutoMigrate first.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore wraps db.
func NewSQLStore(db *gorm.DB) *SQLStore { return &SQLStore{db: db} }

// Namespace returns the backend for ns.
func (s *SQLStore) Namespace(ns string) Backend { return &sqlBackend{db: s.db, ns: ns} }

// Names lists the slot names stored under ns in lexical order.
func (s *SQLStore) Names(ctx context.Context, ns string) ([]string, error) {
	rows, err := repo.ListSlots(ctx, s.db, ns)
	if err != nil {
		return nil, fmt.Errorf("list slots %s: %w", ns, err)
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Name)
	}
	return out, nil
}

type sqlBackend struct {
	db *gorm.DB
	ns string
}

func (b *sqlBackend) Get(ctx context.Context, name string) ([]byte, error) {
	v, err := repo.GetSlot(ctx, b.db, b.ns, name)
	if repo.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get slot %s/%s: %w", b.ns, name, err)
	}
	return v, nil
}

func (b *sqlBackend) Set(ctx context.Context, name string, value []byte) error {
	if err := repo.PutSlot(ctx, b.db, b.ns, name, value); err != nil {
		return fmt.Errorf("put slot %s/%s: %w", b.ns, name, err)
	}
	return nil
}

func (b *sqlBackend) Remove(ctx context.Context, name string) error {
	if err := repo.DeleteSlot(ctx, b.db, b.ns, name); err != nil {
		return fmt.Errorf("delete slot %s/%s: %w", b.ns, name, err)
	}
	return nil
}
