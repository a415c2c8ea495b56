package storage

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/marketplace-state/internal/repo"
)

func newSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, repo.AutoMigrate(db))
	return NewSQLStore(db)
}

func TestSQLStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newSQLStore(t)
	b := s.Namespace("s1")

	_, err := b.Get(ctx, "kendem-cart")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Set(ctx, "kendem-cart", []byte(`[{"id":1}]`)))
	require.NoError(t, b.Set(ctx, "kendem-cart", []byte(`[{"id":2}]`)))
	got, err := b.Get(ctx, "kendem-cart")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":2}]`, string(got))

	require.NoError(t, b.Set(ctx, "kendem-wishlist", []byte(`[]`)))
	names, err := s.Names(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"kendem-cart", "kendem-wishlist"}, names)

	require.NoError(t, b.Remove(ctx, "kendem-cart"))
	_, err = b.Get(ctx, "kendem-cart")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_WrapsDatabaseErrors(t *testing.T) {
	ctx := context.Background()
	s := newSQLStore(t)
	require.NoError(t, s.db.Migrator().DropTable("slots"))

	err := s.Namespace("s1").Set(ctx, "kendem-cart", []byte(`[]`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = s.Namespace("s1").Get(ctx, "kendem-cart")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
