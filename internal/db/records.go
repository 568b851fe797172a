package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rizzrioo06/careermate/internal/shape"
	"github.com/rizzrioo06/careermate/internal/types"
)

const recordColumns = `id, user_id, kind, title, profile, content, created_at, updated_at`

// List limits for ListRecords.
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// normalizeForWrite runs the shape normalizer for kind and encodes the result.
// Every content write goes through here.
func normalizeForWrite(kind types.RecordKind, content map[string]any) (map[string]any, []byte, error) {
	normalized, report := shape.NormalizeWithReport(kind, content)
	if !report.Clean() {
		log.Printf("[shape] %s", report)
	}
	data, err := json.Marshal(normalized)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal %s content: %w", kind, err)
	}
	return normalized, data, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var (
		r                      Record
		kind                   string
		profileRaw, contentRaw []byte
	)
	if err := row.Scan(&r.ID, &r.UserID, &kind, &r.Title, &profileRaw, &contentRaw, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Kind = types.RecordKind(kind)
	if len(profileRaw) > 0 {
		if err := json.Unmarshal(profileRaw, &r.Profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
	}
	if err := json.Unmarshal(contentRaw, &r.Content); err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}
	if r.Content == nil {
		r.Content = map[string]any{}
	}
	return &r, nil
}

// CreateRecord normalizes in.Content for its kind and inserts the record.
func (db *DB) CreateRecord(ctx context.Context, in *CreateRecordInput) (*Record, error) {
	if _, err := types.ParseRecordKind(string(in.Kind)); err != nil {
		return nil, err
	}

	_, content, err := normalizeForWrite(in.Kind, in.Content)
	if err != nil {
		return nil, err
	}

	var profile []byte
	if in.Profile != nil {
		profile, err = json.Marshal(in.Profile)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profile: %w", err)
		}
	}

	rec, err := scanRecord(db.pool.QueryRow(ctx,
		`INSERT INTO career_records (user_id, kind, title, profile, content)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+recordColumns,
		in.UserID, string(in.Kind), in.Title, profile, content,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s record: %w", in.Kind, err)
	}
	return rec, nil
}

// GetRecord retrieves a record owned by userID.
// Returns nil, nil if the record does not exist or belongs to another user.
func (db *DB) GetRecord(ctx context.Context, userID, id uuid.UUID) (*Record, error) {
	rec, err := scanRecord(db.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM career_records WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

// ListRecords lists a user's records, newest first. An empty kind lists all
// kinds; a non-positive limit uses DefaultListLimit and limits are capped
// at MaxListLimit.
func (db *DB) ListRecords(ctx context.Context, userID uuid.UUID, kind types.RecordKind, limit int) ([]RecordSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)
	rows, err := db.pool.Query(ctx,
		`SELECT id, kind, title, created_at, updated_at
		 FROM career_records
		 WHERE user_id = $1 AND ($2::text = '' OR kind = $2)
		 ORDER BY created_at DESC
		 LIMIT $3`,
		userID, string(kind), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	summaries := []RecordSummary{}
	for rows.Next() {
		var (
			s RecordSummary
			k string
		)
		if err := rows.Scan(&s.ID, &k, &s.Title, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan record summary: %w", err)
		}
		s.Kind = types.RecordKind(k)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return summaries, nil
}

// ReplaceRecordContent normalizes content for the record's kind and replaces
// the stored content. Returns nil, nil if the record is not found for userID.
func (db *DB) ReplaceRecordContent(ctx context.Context, userID, id uuid.UUID, content map[string]any) (*Record, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var kind string
	err = tx.QueryRow(ctx,
		`SELECT kind FROM career_records WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id, userID,
	).Scan(&kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock record: %w", err)
	}

	_, data, err := normalizeForWrite(types.RecordKind(kind), content)
	if err != nil {
		return nil, err
	}

	rec, err := scanRecord(tx.QueryRow(ctx,
		`UPDATE career_records SET content = $1, updated_at = NOW()
		 WHERE id = $2
		 RETURNING `+recordColumns,
		data, id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to replace record content: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit record update: %w", err)
	}
	return rec, nil
}

// DeleteRecord deletes a record owned by userID and reports whether it existed.
func (db *DB) DeleteRecord(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM career_records WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountRecordsByKind returns the number of records per kind for a user.
// Every kind is present in the result, with zero when the user has none.
func (db *DB) CountRecordsByKind(ctx context.Context, userID uuid.UUID) (map[types.RecordKind]int, error) {
	counts := make(map[types.RecordKind]int, len(types.AllKinds()))
	for _, k := range types.AllKinds() {
		counts[k] = 0
	}

	rows, err := db.pool.Query(ctx,
		`SELECT kind, COUNT(*) FROM career_records WHERE user_id = $1 GROUP BY kind`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan record count: %w", err)
		}
		counts[types.RecordKind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	return counts, nil
}
