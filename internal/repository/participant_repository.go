package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Participant is a pilot's registration against a session. The
// ValidationCode is supplied by the registrant (normalized to upper
// case), the PersonalCode is issued by the system at registration time.
// Validated is tri-state: nil until a scheduler explicitly confirms or
// rejects the attendance.
type Participant struct {
	ID             uint64 `json:"id"`
	SessionID      uint64 `json:"session_id"`
	Name           string `json:"name"`
	ValidationCode string `json:"validation_code"`
	PersonalCode   string `json:"personal_code"`
	Validated      *bool  `json:"validated"`
	RegisteredAt   string `json:"registered_at"`
}

// ParticipantRepo manages persistence for participants.
type ParticipantRepo struct {
	db *sql.DB
}

// NewParticipantRepo constructs a ParticipantRepo with the given DB handle.
func NewParticipantRepo(db *sql.DB) *ParticipantRepo {
	return &ParticipantRepo{db: db}
}

const participantColumns = `id, session_id, name, validation_code, personal_code, validated, registered_at`

func scanParticipant(row interface{ Scan(...any) error }, p *Participant) error {
	var validated sql.NullBool
	err := row.Scan(&p.ID, &p.SessionID, &p.Name, &p.ValidationCode, &p.PersonalCode, &validated, &p.RegisteredAt)
	if err != nil {
		return err
	}
	if validated.Valid {
		v := validated.Bool
		p.Validated = &v
	}
	return nil
}

// Create inserts a new participant and populates the generated ID and
// registration timestamp.
func (r *ParticipantRepo) Create(ctx context.Context, p *Participant) error {
	const q = `INSERT INTO participants (session_id, name, validation_code, personal_code) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.SessionID, p.Name, p.ValidationCode, p.PersonalCode)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	const sel = `SELECT ` + participantColumns + ` FROM participants WHERE id = ?`
	return scanParticipant(r.db.QueryRowContext(ctx, sel, p.ID), p)
}

// GetByID retrieves a participant by ID, returning
// ErrParticipantNotFound when no row matches.
func (r *ParticipantRepo) GetByID(ctx context.Context, id uint64) (*Participant, error) {
	const q = `SELECT ` + participantColumns + ` FROM participants WHERE id = ?`
	var p Participant
	if err := scanParticipant(r.db.QueryRowContext(ctx, q, id), &p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListBySession returns the participants of a session ordered by
// registration time. An empty slice and nil error means none exist.
func (r *ParticipantRepo) ListBySession(ctx context.Context, sessionID uint64) ([]Participant, error) {
	const q = `SELECT ` + participantColumns + ` FROM participants WHERE session_id = ? ORDER BY registered_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Participant
	for rows.Next() {
		var p Participant
		if err := scanParticipant(rows, &p); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SetValidated stores the tri-state validation flag. Passing nil resets
// the participant to the undecided state.
func (r *ParticipantRepo) SetValidated(ctx context.Context, id uint64, validated *bool) error {
	var value any
	if validated != nil {
		value = *validated
	}
	res, err := r.db.ExecContext(ctx, `UPDATE participants SET validated = ? WHERE id = ?`, value, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM participants WHERE id = ? LIMIT 1`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrParticipantNotFound
			}
			return err
		}
	}
	return nil
}
