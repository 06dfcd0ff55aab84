package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/navikt/bidrag-dokument-arkiv/internal/domain"
)

var (
	// ErrNotFound is returned when no live record matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates that a record already exists for the given
	// (operasjon, journalpost_id, key) tuple.
	ErrDuplicate = errors.New("duplicate")
)

// GetIdempotency returns a non-expired record or ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, operasjon, journalpostID, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(journalpostID) == "" || strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("operasjon = ? AND journalpost_id = ? AND key = ? AND expires_at > ?", operasjon, journalpostID, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateIdempotency stores the outcome of a completed request and returns
// ErrDuplicate on unique violation. An expired row for the same tuple is
// replaced.
func CreateIdempotency(ctx context.Context, db *gorm.DB, operasjon, journalpostID, key, respons string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	rec := &domain.Idempotency{
		ID:            uuid.NewString(),
		Operasjon:     operasjon,
		JournalpostID: journalpostID,
		Key:           key,
		Respons:       respons,
		Status:        status,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("operasjon = ? AND journalpost_id = ? AND key = ? AND expires_at <= ?", operasjon, journalpostID, key, now).
			Delete(&domain.Idempotency{}).Error; err != nil {
			return err
		}
		return tx.Create(rec).Error
	})
	if err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// PurgeExpiredIdempotency deletes rows that expired at or before now and
// returns how many were removed.
func PurgeExpiredIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}
