package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/rizzrioo06/careermate/internal/types"
)

// User represents a user account
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize to JSON
	PasswordSet  bool      `json:"password_set" db:"password_set"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Record is one persisted generation result. Content always holds the
// normalized shape for Kind.
type Record struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Kind      types.RecordKind `json:"kind"`
	Title     string           `json:"title"`
	Profile   map[string]any   `json:"profile,omitempty"` // the input the record was generated from
	Content   map[string]any   `json:"content"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// RecordSummary is a Record without its payloads, for listings.
type RecordSummary struct {
	ID        uuid.UUID        `json:"id"`
	Kind      types.RecordKind `json:"kind"`
	Title     string           `json:"title"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// CreateRecordInput holds the fields of a new record.
type CreateRecordInput struct {
	UserID  uuid.UUID
	Kind    types.RecordKind
	Title   string
	Profile any
	Content map[string]any
}
