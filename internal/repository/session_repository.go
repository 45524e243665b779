package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Session is a time-boxed flight registration window. Schedule fields
// keep their persisted string forms: FlightDate is "YYYY-MM-DD" and the
// times of day are zero-padded "HH:mm". EndsAt is empty when no end was
// configured; the schedule package then assumes a two hour duration.
type Session struct {
	ID                uint64  `json:"id"`
	Code              string  `json:"code"`
	Number            int     `json:"number"`
	FlightDate        string  `json:"flight_date"`
	RegistrationStart string  `json:"registration_start"`
	StartsAt          string  `json:"starts_at"`
	EndsAt            string  `json:"ends_at,omitempty"`
	ClosingMinutes    int     `json:"closing_minutes"`
	Status            string  `json:"status"`
	Comment           string  `json:"comment,omitempty"`
	CreatorID         *uint64 `json:"creator_id,omitempty"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

// SessionRepo manages persistence for sessions.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo constructs a SessionRepo with the given DB handle.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

const sessionColumns = `id, code, number, flight_date, registration_start, starts_at, ends_at,
                        closing_minutes, status, comment, creator_id, created_at, updated_at`

func scanSession(row interface{ Scan(...any) error }, s *Session) error {
	var endsAt sql.NullString
	var creator sql.NullInt64
	err := row.Scan(
		&s.ID, &s.Code, &s.Number, &s.FlightDate, &s.RegistrationStart, &s.StartsAt, &endsAt,
		&s.ClosingMinutes, &s.Status, &s.Comment, &creator, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if endsAt.Valid {
		s.EndsAt = endsAt.String
	}
	if creator.Valid {
		id := uint64(creator.Int64)
		s.CreatorID = &id
	}
	return nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullID(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}

// Create inserts a new session and assigns the generated ID back to the
// struct, then reselects the row so DB defaults (timestamps) are
// populated.
func (r *SessionRepo) Create(ctx context.Context, s *Session) error {
	const q = `INSERT INTO sessions
	           (code, number, flight_date, registration_start, starts_at, ends_at, closing_minutes, status, comment, creator_id)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		s.Code, s.Number, s.FlightDate, s.RegistrationStart, s.StartsAt, nullStr(s.EndsAt),
		s.ClosingMinutes, s.Status, s.Comment, nullID(s.CreatorID),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`
	return scanSession(r.db.QueryRowContext(ctx, sel, s.ID), s)
}

// GetByID retrieves a session by its ID. It returns ErrSessionNotFound
// if there is no matching row.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (*Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`
	var s Session
	if err := scanSession(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepo) queryList(ctx context.Context, q string, args ...any) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Session
	for rows.Next() {
		var s Session
		if err := scanSession(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// List returns all sessions ordered by date and start time. Status
// filtering happens after the read-path refresh, never here: the stored
// status may be stale until that refresh runs.
func (r *SessionRepo) List(ctx context.Context) ([]Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions ORDER BY flight_date ASC, starts_at ASC`
	return r.queryList(ctx, q)
}

// ListUpcoming returns all sessions whose stored status is not
// completed, ordered by date and start time. Callers still recompute
// status afterwards; rows that just completed are filtered out again on
// the refreshed value.
func (r *SessionRepo) ListUpcoming(ctx context.Context) ([]Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE status <> 'completed' ORDER BY flight_date ASC, starts_at ASC`
	return r.queryList(ctx, q)
}

// ListByDate returns all sessions on the given calendar date. The
// overlap check runs over this set in memory because the default end
// time of sessions without an explicit one cannot be expressed in SQL.
func (r *SessionRepo) ListByDate(ctx context.Context, date string) ([]Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM sessions WHERE flight_date = ? ORDER BY starts_at ASC`
	return r.queryList(ctx, q, date)
}

// CodeInUse reports whether a session code is taken inside the recency
// window, i.e. by a session created at or after the given instant.
// Codes of older sessions are free for reuse.
func (r *SessionRepo) CodeInUse(ctx context.Context, code string, since time.Time) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM sessions WHERE code = ? AND created_at >= ?)`
	var used bool
	if err := r.db.QueryRowContext(ctx, q, code, since.UTC().Format("2006-01-02 15:04:05")).Scan(&used); err != nil {
		return false, err
	}
	return used, nil
}

// MaxNumber returns the highest sequence number assigned so far, or 0
// when no sessions exist. The caller increments it for the next session.
func (r *SessionRepo) MaxNumber(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(number), 0) FROM sessions`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdateStatus persists a recomputed status for a single session. It is
// called by the read-path refresh only when the derived status differs
// from the stored one.
func (r *SessionRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	return err
}

// Update persists the mutable fields of a session and reselects the
// row. It returns ErrSessionNotFound when the session disappeared.
func (r *SessionRepo) Update(ctx context.Context, s *Session) error {
	const q = `UPDATE sessions
	           SET flight_date = ?, registration_start = ?, starts_at = ?, ends_at = ?,
	               closing_minutes = ?, status = ?, comment = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		s.FlightDate, s.RegistrationStart, s.StartsAt, nullStr(s.EndsAt),
		s.ClosingMinutes, s.Status, s.Comment, s.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Zero affected rows can also mean an identical update; confirm
		// the row exists before reporting not found.
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ? LIMIT 1`, s.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSessionNotFound
			}
			return err
		}
	}
	const sel = `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`
	return scanSession(r.db.QueryRowContext(ctx, sel, s.ID), s)
}

// DeleteCompleted removes a session and its participants inside one
// transaction. Only sessions whose stored status is completed may be
// deleted; otherwise ErrSessionNotCompleted is returned. Validation
// keys are deliberately left in place so their values stay burned for
// the remainder of the two-month uniqueness window.
func (r *SessionRepo) DeleteCompleted(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM sessions WHERE id = ?`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSessionNotFound
		}
		return err
	}
	if status != "completed" {
		err = ErrSessionNotCompleted
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM participants WHERE session_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}
