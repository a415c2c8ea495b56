package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/marketplace-state/internal/catalog"
	"github.com/tbourn/marketplace-state/internal/config"
	"github.com/tbourn/marketplace-state/internal/domain"
	"github.com/tbourn/marketplace-state/internal/storage"
	"github.com/tbourn/marketplace-state/internal/stores"
)

func TestOpenBackend_Memory(t *testing.T) {
	be, err := openBackend(context.Background(), config.StorageConfig{Backend: "memory", MemoryMaxBytes: 1024})
	require.NoError(t, err)
	t.Cleanup(be.close)

	assert.IsType(t, &storage.MemoryStore{}, be.provider)
	require.NotNil(t, be.db)
	assert.True(t, be.db.Migrator().HasTable("idempotency"))
}

func TestOpenBackend_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	be, err := openBackend(context.Background(), config.StorageConfig{Backend: "sqlite", DBPath: path})
	require.NoError(t, err)
	t.Cleanup(be.close)

	assert.IsType(t, &storage.SQLStore{}, be.provider)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpenBackend_UnknownKind(t *testing.T) {
	_, err := openBackend(context.Background(), config.StorageConfig{Backend: "etcd"})
	require.ErrorIs(t, err, storage.ErrUnknownBackend)
}

func TestChatOptions(t *testing.T) {
	opts, err := chatOptions(config.ChatConfig{MaxMessageRunes: 10})
	require.NoError(t, err)
	assert.Len(t, opts, 1)

	path := filepath.Join(t.TempDir(), "replies.toml")
	require.NoError(t, os.WriteFile(path, []byte(`replies = ["Yes!", "Ships Monday."]`), 0o600))
	opts, err = chatOptions(config.ChatConfig{RepliesFile: path})
	require.NoError(t, err)
	assert.Len(t, opts, 2)

	_, err = chatOptions(config.ChatConfig{RepliesFile: filepath.Join(t.TempDir(), "missing.toml")})
	assert.Error(t, err)
}

func TestPrintSlots(t *testing.T) {
	mem := storage.NewMemoryStore()
	mem.Put("tab-1", stores.SlotCart, []byte(`{"lines":[]}`))
	mem.Put("tab-1", "raw", []byte("not json"))

	var out bytes.Buffer
	require.NoError(t, printSlots(context.Background(), &out, mem, "tab-1"))
	assert.Contains(t, out.String(), "== "+stores.SlotCart)
	assert.Contains(t, out.String(), `"lines": []`)
	assert.Contains(t, out.String(), "not json")

	out.Reset()
	require.NoError(t, printSlots(context.Background(), &out, mem, "tab-2"))
	assert.Equal(t, "session tab-2 has no slots\n", out.String())
}

func TestPrintNamespaces(t *testing.T) {
	ctx := context.Background()
	be, err := openBackend(ctx, config.StorageConfig{Backend: "sqlite", DBPath: filepath.Join(t.TempDir(), "ns.db")})
	require.NoError(t, err)
	t.Cleanup(be.close)

	require.NoError(t, be.provider.Namespace("tab-a").Set(ctx, "cart", []byte(`{}`)))
	require.NoError(t, be.provider.Namespace("tab-a").Set(ctx, "wishlist", []byte(`[]`)))
	require.NoError(t, be.provider.Namespace("tab-b").Set(ctx, "cart", []byte(`{}`)))

	var out bytes.Buffer
	require.NoError(t, printNamespaces(ctx, &out, be))
	assert.Contains(t, out.String(), "SESSION")
	assert.Regexp(t, `tab-a\s+2\s`, out.String())
	assert.Regexp(t, `tab-b\s+1\s`, out.String())
}

type staticUpstream []domain.ServerProduct

func (u staticUpstream) FetchAllProducts(context.Context) ([]domain.ServerProduct, error) {
	return u, nil
}

func (staticUpstream) RecordVisit(context.Context, string) error { return nil }

func TestPrintRefreshAndProducts(t *testing.T) {
	svc := catalog.NewService(staticUpstream{
		{ID: "abc123", Name: "Woven basket", Price: 1000, Community: "kendem"},
		{ID: "neg", Name: "Negative", Price: -1},
	})
	rep, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	var out bytes.Buffer
	printRefresh(&out, rep, svc.RefreshedAt())
	assert.Regexp(t, `^fetched=2 skipped=1 collisions=0 refreshed=\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z\n$`, out.String())

	out.Reset()
	require.NoError(t, printProducts(&out, svc))
	assert.Contains(t, out.String(), "SERVER ID")
	assert.Regexp(t, `abc123\s+1000\.00\s+Woven basket`, out.String())
}

func TestNewApp_Commands(t *testing.T) {
	app := newApp()
	for _, name := range []string{"serve", "migrate", "slots", "catalog"} {
		assert.NotNil(t, app.Command(name), name)
	}
}
