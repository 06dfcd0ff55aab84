package domain

import "time"

// Idempotency records the outcome of a processed mutating request keyed by
// (operation, journalpost id, Idempotency-Key). A retry with the same key is
// answered from this row without repeating any archive mutation.
//
// The table only deduplicates requests; it never holds journal entry state.
type Idempotency struct {
	ID            string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Operasjon     string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_operasjon_journalpost_key,priority:1"`
	JournalpostID string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_operasjon_journalpost_key,priority:2"`
	Key           string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_operasjon_journalpost_key,priority:3"`
	Respons       string    `gorm:"type:TEXT NOT NULL"`
	Status        int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt     time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt     time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
