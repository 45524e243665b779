package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	repo "github.com/Iliyas128/flight-connect-backend/internal/repository"
)

var sessionCols = []string{
	"id", "code", "number", "flight_date", "registration_start", "starts_at", "ends_at",
	"closing_minutes", "status", "comment", "creator_id", "created_at", "updated_at",
}

func sessionRow(id uint64) *sqlmock.Rows {
	return sqlmock.NewRows(sessionCols).AddRow(
		id, "ABC", 4, "2024-06-01", "08:00", "10:00", nil,
		60, "open", "", nil, "2024-05-20 12:00:00", "2024-05-20 12:00:00",
	)
}

func TestSessionRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := repo.NewSessionRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sessions`)).
		WithArgs("ABC", 4, "2024-06-01", "08:00", "10:00", nil, 60, "open", "", nil).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM sessions WHERE id = ?`)).
		WithArgs(uint64(5)).
		WillReturnRows(sessionRow(5))

	s := &repo.Session{
		Code:              "ABC",
		Number:            4,
		FlightDate:        "2024-06-01",
		RegistrationStart: "08:00",
		StartsAt:          "10:00",
		ClosingMinutes:    60,
		Status:            "open",
	}
	require.NoError(t, r.Create(context.Background(), s))
	require.Equal(t, uint64(5), s.ID)
	require.Empty(t, s.EndsAt)
	require.Nil(t, s.CreatorID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := repo.NewSessionRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM sessions WHERE id = ?`)).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows(sessionCols))

	_, err = r.GetByID(context.Background(), 99)
	require.ErrorIs(t, err, repo.ErrSessionNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoListReturnsAllRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := repo.NewSessionRepo(db)

	// No WHERE clause: status filtering belongs to the handler after
	// the refresh, so the repository always reads every row.
	mock.ExpectQuery(regexp.QuoteMeta(`FROM sessions ORDER BY flight_date ASC, starts_at ASC`)).
		WillReturnRows(sessionRow(1).AddRow(
			2, "XYZ", 5, "2024-06-02", "09:00", "11:00", "13:00",
			30, "open", "", nil, "2024-05-21 12:00:00", "2024-05-21 12:00:00",
		))

	got, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "ABC", got[0].Code)
	require.Equal(t, "XYZ", got[1].Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoCodeInUse(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := repo.NewSessionRepo(db)

	since := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM sessions WHERE code = ? AND created_at >= ?)`)).
		WithArgs("ABC", "2024-04-02 00:00:00").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	used, err := r.CodeInUse(context.Background(), "ABC", since)
	require.NoError(t, err)
	require.True(t, used)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoMaxNumberEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := repo.NewSessionRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(number), 0) FROM sessions`)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))

	n, err := r.MaxNumber(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoDeleteCompletedRejectsLiveSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := repo.NewSessionRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM sessions WHERE id = ?`)).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("open"))
	mock.ExpectRollback()

	err = r.DeleteCompleted(context.Background(), 3)
	require.ErrorIs(t, err, repo.ErrSessionNotCompleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoDeleteCompletedCascadesParticipantsOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := repo.NewSessionRepo(db)

	// The transaction removes participants and the session and nothing
	// else: issued validation keys stay behind so their values remain
	// burned for the rest of the month window. Any statement against
	// valid_keys would fail the ordered expectations here.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM sessions WHERE id = ?`)).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("completed"))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM participants WHERE session_id = ?`)).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE id = ?`)).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, r.DeleteCompleted(context.Background(), 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoDeleteCompletedRollsBackOnConstraintError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := repo.NewSessionRepo(db)

	// A session with issued keys must still be deletable, which is why
	// valid_keys.session_id carries no foreign key. If the row delete is
	// ever rejected by the storage layer anyway, the error has to roll
	// the transaction back and surface as-is rather than as a sentinel.
	blocked := errors.New("Error 1451 (23000): Cannot delete or update a parent row: a foreign key constraint fails")
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM sessions WHERE id = ?`)).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("completed"))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM participants WHERE session_id = ?`)).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE id = ?`)).
		WithArgs(uint64(3)).
		WillReturnError(blocked)
	mock.ExpectRollback()

	err = r.DeleteCompleted(context.Background(), 3)
	require.ErrorIs(t, err, blocked)
	require.NotErrorIs(t, err, repo.ErrSessionNotFound)
	require.NotErrorIs(t, err, repo.ErrSessionNotCompleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepoUpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := repo.NewSessionRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sessions SET status = ?`)).
		WithArgs("closed", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.UpdateStatus(context.Background(), 7, "closed"))
	require.NoError(t, mock.ExpectationsWereMet())
}
