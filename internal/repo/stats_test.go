package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/ai-content-studio/internal/domain"
)

func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func seedScript(t *testing.T, db *gorm.DB, id, userID string, at time.Time) {
	t.Helper()
	s := &domain.Script{
		ID: id, UserID: userID, Topic: "topic " + id, Content: "content",
		Style: domain.StyleProfessional, Duration: 30, Provider: "template", CreatedAt: at,
	}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func TestScriptsStats_CountError_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	_, _, err := ScriptsStats(context.Background(), db, "u1")
	if err == nil {
		t.Fatalf("expected error due to missing scripts table")
	}
}

func TestScriptsStats_ZeroRows(t *testing.T) {
	db := newTestDB(t, &domain.Script{})
	count, maxAt, err := ScriptsStats(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("ScriptsStats error: %v", err)
	}
	if count != 0 || maxAt != nil {
		t.Fatalf("expected (0, nil), got (%d, %v)", count, maxAt)
	}
}

func TestScriptsStats_Success_FilterAndMax(t *testing.T) {
	db := newTestDB(t, &domain.Script{})

	t1 := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC) // max for u1
	t3 := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)   // other user, newer

	seedScript(t, db, "s1", "u1", t1)
	seedScript(t, db, "s2", "u1", t2)
	seedScript(t, db, "s3", "u2", t3)

	count, maxAt, err := ScriptsStats(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("ScriptsStats error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
	if maxAt == nil || !maxAt.Equal(t2) {
		t.Fatalf("expected maxCreatedAt %v, got %v", t2, maxAt)
	}
}

// Force the second query (SELECT created_at ...) to fail by renaming the column.
func TestScriptsStats_SelectLatest_ErrorPath(t *testing.T) {
	db := newTestDB(t, &domain.Script{})
	seedScript(t, db, "sx", "uerr", time.Now().UTC())

	if err := db.Exec(`ALTER TABLE scripts RENAME COLUMN created_at TO created_at_old`).Error; err != nil {
		t.Fatalf("rename column: %v", err)
	}

	_, _, err := ScriptsStats(context.Background(), db, "uerr")
	if err == nil {
		t.Fatalf("expected error from latest-created select after column rename")
	}
}
