package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nadirh/cannalog/internal/apperror"
	"github.com/nadirh/cannalog/internal/model"
	"github.com/nadirh/cannalog/internal/repository"
)

// Compile-time check that *DB implements repository.EntryRepository.
var _ repository.EntryRepository = (*DB)(nil)

const entryColumns = `id, user_id, thc_mg, timestamp, date, time, method, amount, puffs,
	thc_percent, strain, mood, energy, focus, creativity, anxiety,
	activities, notes, created_at, updated_at`

// CreateEntry inserts a new entry and fills in ID, CreatedAt and UpdatedAt.
func (db *DB) CreateEntry(ctx context.Context, entry *model.Entry) error {
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	activities, err := encodeActivities(entry.Activities)
	if err != nil {
		return err
	}

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO entries (user_id, thc_mg, timestamp, date, time, method, amount,
			puffs, thc_percent, strain, mood, energy, focus, creativity, anxiety,
			activities, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.UserID,
		entry.THCmg,
		entry.Timestamp,
		entry.Date,
		entry.Time,
		entry.Method,
		entry.Amount,
		entry.Puffs,
		entry.THCPercent,
		entry.Strain,
		entry.Mood,
		entry.Energy,
		entry.Focus,
		entry.Creativity,
		entry.Anxiety,
		activities,
		entry.Notes,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading entry id: %w", err)
	}
	entry.ID = id

	return nil
}

// GetEntry retrieves one entry. The WHERE clause filters on both id and
// user_id, so another user's entry is indistinguishable from a missing one.
func (db *DB) GetEntry(ctx context.Context, id, userID int64) (*model.Entry, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+entryColumns+`
		 FROM entries
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	entry, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("entry")
		}
		return nil, fmt.Errorf("sqlite: getting entry %d: %w", id, err)
	}

	return entry, nil
}

// ListEntries returns the user's entries newest-first with offset/limit pagination.
func (db *DB) ListEntries(ctx context.Context, userID int64, opts repository.ListOptions) ([]model.Entry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+entryColumns+`
		 FROM entries
		 WHERE user_id = ?
		 ORDER BY timestamp DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// ListEntriesSince returns the user's entries with timestamp >= since, newest-first.
// Feeds the trailing-window statistics.
func (db *DB) ListEntriesSince(ctx context.Context, userID int64, since time.Time) ([]model.Entry, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+entryColumns+`
		 FROM entries
		 WHERE user_id = ? AND timestamp >= ?
		 ORDER BY timestamp DESC`,
		userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing entries since %s: %w", since.Format(time.RFC3339), err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// UpdateEntry writes all mutable fields, matching on (id, user_id). Zero rows
// affected means the entry doesn't exist for this user, i.e. not found.
func (db *DB) UpdateEntry(ctx context.Context, entry *model.Entry) error {
	entry.UpdatedAt = time.Now()

	activities, err := encodeActivities(entry.Activities)
	if err != nil {
		return err
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE entries
		 SET thc_mg = ?, timestamp = ?, date = ?, time = ?, method = ?, amount = ?,
		     puffs = ?, thc_percent = ?, strain = ?, mood = ?, energy = ?, focus = ?,
		     creativity = ?, anxiety = ?, activities = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		entry.THCmg,
		entry.Timestamp,
		entry.Date,
		entry.Time,
		entry.Method,
		entry.Amount,
		entry.Puffs,
		entry.THCPercent,
		entry.Strain,
		entry.Mood,
		entry.Energy,
		entry.Focus,
		entry.Creativity,
		entry.Anxiety,
		activities,
		entry.Notes,
		entry.UpdatedAt,
		entry.ID,
		entry.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating entry %d: %w", entry.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("entry")
	}

	return nil
}

// DeleteEntry removes an entry, matching on (id, user_id).
func (db *DB) DeleteEntry(ctx context.Context, id, userID int64) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM entries WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting entry %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("entry")
	}

	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*model.Entry, error) {
	var (
		entry      model.Entry
		activities string
	)
	err := s.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.THCmg,
		&entry.Timestamp,
		&entry.Date,
		&entry.Time,
		&entry.Method,
		&entry.Amount,
		&entry.Puffs,
		&entry.THCPercent,
		&entry.Strain,
		&entry.Mood,
		&entry.Energy,
		&entry.Focus,
		&entry.Creativity,
		&entry.Anxiety,
		&activities,
		&entry.Notes,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(activities), &entry.Activities); err != nil {
		return nil, fmt.Errorf("sqlite: decoding activities for entry %d: %w", entry.ID, err)
	}
	if entry.Activities == nil {
		entry.Activities = []string{}
	}

	return &entry, nil
}

func collectEntries(rows *sql.Rows) ([]model.Entry, error) {
	entries := make([]model.Entry, 0, 16)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning entry row: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating entries: %w", err)
	}
	return entries, nil
}

// encodeActivities stores the tag list as a JSON array column, preserving
// insertion order.
func encodeActivities(activities []string) (string, error) {
	if activities == nil {
		activities = []string{}
	}
	b, err := json.Marshal(activities)
	if err != nil {
		return "", fmt.Errorf("sqlite: encoding activities: %w", err)
	}
	return string(b), nil
}
