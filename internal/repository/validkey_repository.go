package repository

import (
	"context"
	"database/sql"
)

// ValidKey is a short attendance credential issued to a pilot for a
// session. A key value is unique within the union of the current and
// previous month tags; keys are never deleted, they rotate out as the
// window advances past their tag.
type ValidKey struct {
	ID        uint64 `json:"id"`
	SessionID uint64 `json:"session_id"`
	Value     string `json:"key"`
	PilotName string `json:"pilot_name"`
	MonthTag  string `json:"month_tag"`
	CreatedAt string `json:"created_at"`
}

// ValidKeyRepo manages persistence for validation keys.
type ValidKeyRepo struct {
	db *sql.DB
}

// NewValidKeyRepo constructs a ValidKeyRepo with the given DB handle.
func NewValidKeyRepo(db *sql.DB) *ValidKeyRepo {
	return &ValidKeyRepo{db: db}
}

// Create inserts a new key. The unique index on (key_value, month_tag)
// is the authority for same-tag duplicates: its violation is mapped to
// ErrDuplicateKey so a race slipping past the availability probe still
// surfaces as a conflict rather than a stored duplicate.
func (r *ValidKeyRepo) Create(ctx context.Context, k *ValidKey) error {
	const q = `INSERT INTO valid_keys (session_id, key_value, pilot_name, month_tag) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, k.SessionID, k.Value, k.PilotName, k.MonthTag)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrDuplicateKey
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	k.ID = uint64(id)
	const sel = `SELECT id, session_id, key_value, pilot_name, month_tag, created_at FROM valid_keys WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, k.ID).Scan(
		&k.ID, &k.SessionID, &k.Value, &k.PilotName, &k.MonthTag, &k.CreatedAt,
	)
}

// ValueInUse reports whether a key value exists under any of the given
// month tags. It backs the generator's availability probe.
func (r *ValidKeyRepo) ValueInUse(ctx context.Context, value string, tags ...string) (bool, error) {
	if len(tags) == 0 {
		return false, nil
	}
	q := `SELECT EXISTS(SELECT 1 FROM valid_keys WHERE key_value = ? AND month_tag IN (?` // first tag
	args := []any{value, tags[0]}
	for _, tag := range tags[1:] {
		q += ", ?"
		args = append(args, tag)
	}
	q += `))`
	var used bool
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&used); err != nil {
		return false, err
	}
	return used, nil
}

// PilotHasKey reports whether the pilot already holds a key for the
// session under any of the given month tags.
func (r *ValidKeyRepo) PilotHasKey(ctx context.Context, sessionID uint64, pilotName string, tags ...string) (bool, error) {
	if len(tags) == 0 {
		return false, nil
	}
	q := `SELECT EXISTS(SELECT 1 FROM valid_keys WHERE session_id = ? AND pilot_name = ? AND month_tag IN (?`
	args := []any{sessionID, pilotName, tags[0]}
	for _, tag := range tags[1:] {
		q += ", ?"
		args = append(args, tag)
	}
	q += `))`
	var has bool
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&has); err != nil {
		return false, err
	}
	return has, nil
}

// ListBySession returns the keys issued for a session, newest first.
func (r *ValidKeyRepo) ListBySession(ctx context.Context, sessionID uint64) ([]ValidKey, error) {
	const q = `SELECT id, session_id, key_value, pilot_name, month_tag, created_at
	           FROM valid_keys WHERE session_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []ValidKey
	for rows.Next() {
		var k ValidKey
		if err := rows.Scan(&k.ID, &k.SessionID, &k.Value, &k.PilotName, &k.MonthTag, &k.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
