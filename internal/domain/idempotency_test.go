package domain

import (
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestNewIdempotency_And_Expired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := NewIdempotency("tab-1", "seller-1::inbox", "k1", "m-1", 201, now, time.Hour)

	if rec.ID == "" || rec.CreatedAt != now || rec.ExpiresAt != now.Add(time.Hour) {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Expired(now) || rec.Expired(now.Add(59*time.Minute)) {
		t.Fatalf("record expired too early")
	}
	// The boundary itself is expired, matching the purge query.
	if !rec.Expired(now.Add(time.Hour)) {
		t.Fatalf("record should expire at ExpiresAt")
	}
	if other := NewIdempotency("tab-1", "seller-1::inbox", "k1", "m-1", 201, now, time.Hour); other.ID == rec.ID {
		t.Fatalf("ids must be unique")
	}
}

func TestIdempotency_AutoMigrate_Constraints(t *testing.T) {
	db := newTestDB(t)
	if err := db.AutoMigrate(&Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()
	if !m.HasTable("idempotency") {
		t.Fatalf("expected table idempotency")
	}
	if !m.HasIndex(&Idempotency{}, "ux_session_thread_key") {
		t.Fatalf("expected composite index ux_session_thread_key")
	}

	now := time.Now().UTC()
	if err := db.Create(NewIdempotency("tab-1", "seller-1::inbox", "k1", "m-1", 201, now, time.Hour)).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Same key in another session or thread is a different record.
	for _, rec := range []*Idempotency{
		NewIdempotency("tab-2", "seller-1::inbox", "k1", "m-2", 201, now, time.Hour),
		NewIdempotency("tab-1", "seller-2::inbox", "k1", "m-3", 201, now, time.Hour),
	} {
		if err := db.Create(rec).Error; err != nil {
			t.Fatalf("insert %s/%s: %v", rec.SessionID, rec.ThreadID, err)
		}
	}
	if err := db.Create(NewIdempotency("tab-1", "seller-1::inbox", "k1", "m-4", 201, now, time.Hour)).Error; err == nil {
		t.Fatalf("expected unique violation on (session_id, thread_id, key)")
	}

	for _, col := range []string{"session_id", "thread_id", "key", "message_id"} {
		err := db.Exec(fmt.Sprintf(`INSERT INTO idempotency (id, session_id, thread_id, key, message_id, status, created_at, expires_at)
			VALUES ('null-%[1]s', 's', 't', 'k-%[1]s', 'm', 201, ?, ?)`, col), now, now).Error
		if err != nil {
			t.Fatalf("control insert for %s: %v", col, err)
		}
		err = db.Exec(fmt.Sprintf(`UPDATE idempotency SET %s = NULL WHERE id = 'null-%s'`, col, col)).Error
		if err == nil {
			t.Fatalf("expected NOT NULL violation for %s", col)
		}
	}

	var got Idempotency
	if err := db.First(&got, "session_id = ? AND thread_id = ? AND key = ?", "tab-1", "seller-1::inbox", "k1").Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if got.MessageID != "m-1" || got.Status != 201 {
		t.Fatalf("unexpected row: %+v", got)
	}
}
