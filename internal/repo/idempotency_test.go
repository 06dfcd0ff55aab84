package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
)

func newIdemDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid schema leakage across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if migrate {
		if err := AutoMigrate(db); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestGetIdempotency_BlankInput_ReturnsNotFound(t *testing.T) {
	db := newIdemDB(t, true)
	now := time.Now().UTC()

	if rec, err := GetIdempotency(context.Background(), db, "avvik", "   ", "k1", now); rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for blank journalpost id, got (%v, %v)", rec, err)
	}
	if rec, err := GetIdempotency(context.Background(), db, "avvik", "201028011", "", now); rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for blank key, got (%v, %v)", rec, err)
	}
}

func TestGetIdempotency_ExpiredOrMissing_ReturnsNotFound(t *testing.T) {
	db := newIdemDB(t, true)
	now := time.Now().UTC()

	exp := &domain.Idempotency{
		ID:            "expired",
		Operasjon:     "avvik",
		JournalpostID: "201028011",
		Key:           "k1",
		Respons:       `{"avvikType":"OVERFOR_TIL_ANNEN_ENHET"}`,
		Status:        200,
		CreatedAt:     now.Add(-2 * time.Hour),
		ExpiresAt:     now.Add(-time.Hour),
	}
	if err := db.Create(exp).Error; err != nil {
		t.Fatalf("seed expired: %v", err)
	}

	if rec, err := GetIdempotency(context.Background(), db, "avvik", "201028011", "k1", now); rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for expired, got (%v, %v)", rec, err)
	}
	if rec, err := GetIdempotency(context.Background(), db, "avvik", "201028011", "missing", now); rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for missing, got (%v, %v)", rec, err)
	}
	// Same key under another operation is a different request.
	if rec, err := GetIdempotency(context.Background(), db, "endre", "201028011", "k1", now); rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for other operation, got (%v, %v)", rec, err)
	}
}

func TestCreateIdempotency_SuccessAndDuplicate(t *testing.T) {
	db := newIdemDB(t, true)
	ttl := 90 * time.Minute
	start := time.Now().UTC()

	rec, err := CreateIdempotency(context.Background(), db, "avvik", "201028011", "k9", `{"avvikType":"TREKK_JOURNALPOST"}`, 200, ttl)
	if err != nil {
		t.Fatalf("CreateIdempotency error: %v", err)
	}
	if rec == nil || rec.ID == "" || rec.Operasjon != "avvik" || rec.JournalpostID != "201028011" || rec.Key != "k9" || rec.Status != 200 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	// loose bound to avoid timing flakes
	if !(rec.ExpiresAt.After(start) && rec.ExpiresAt.Before(start.Add(2*time.Hour))) {
		t.Fatalf("unexpected ExpiresAt: %v", rec.ExpiresAt)
	}

	got, err := GetIdempotency(context.Background(), db, "avvik", "201028011", "k9", time.Now().UTC())
	if err != nil || got.Respons != `{"avvikType":"TREKK_JOURNALPOST"}` {
		t.Fatalf("readback failed: %+v %v", got, err)
	}

	if _, err := CreateIdempotency(context.Background(), db, "avvik", "201028011", "k9", "{}", 200, ttl); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestCreateIdempotency_ReplacesExpired(t *testing.T) {
	db := newIdemDB(t, true)
	now := time.Now().UTC()
	old := &domain.Idempotency{
		ID:            "old",
		Operasjon:     "endre",
		JournalpostID: "1",
		Key:           "k",
		Respons:       "",
		Status:        200,
		CreatedAt:     now.Add(-2 * time.Hour),
		ExpiresAt:     now.Add(-time.Hour),
	}
	if err := db.Create(old).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec, err := CreateIdempotency(context.Background(), db, "endre", "1", "k", "", 200, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency over expired row: %v", err)
	}
	if rec.ID == "old" {
		t.Fatalf("expected a fresh row")
	}
}

func TestPurgeExpiredIdempotency(t *testing.T) {
	db := newIdemDB(t, true)
	now := time.Now().UTC()
	for i, exp := range []time.Time{now.Add(-time.Minute), now.Add(-time.Hour), now.Add(time.Hour)} {
		rec := &domain.Idempotency{
			ID:            fmt.Sprintf("r%d", i),
			Operasjon:     "avvik",
			JournalpostID: "1",
			Key:           fmt.Sprintf("k%d", i),
			Status:        200,
			CreatedAt:     now.Add(-2 * time.Hour),
			ExpiresAt:     exp,
		}
		if err := db.Create(rec).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	n, err := PurgeExpiredIdempotency(context.Background(), db, now)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 purged, got %d (%v)", n, err)
	}
	var left int64
	db.Model(&domain.Idempotency{}).Count(&left)
	if left != 1 {
		t.Fatalf("expected 1 row left, got %d", left)
	}
}

// Generic DB error path: attempt insert without migrating the table.
func TestCreateIdempotency_Error_NoTable(t *testing.T) {
	db := newIdemDB(t, false)
	_, err := CreateIdempotency(context.Background(), db, "avvik", "1", "kX", "", 200, time.Minute)
	if err == nil {
		t.Fatalf("expected error when table is missing")
	}
	if err == ErrDuplicate {
		t.Fatalf("expected non-duplicate error, got ErrDuplicate")
	}
}
