package repository_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	repo "github.com/Iliyas128/flight-connect-backend/internal/repository"
)

var participantCols = []string{
	"id", "session_id", "name", "validation_code", "personal_code", "validated", "registered_at",
}

func TestParticipantRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := repo.NewParticipantRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO participants`)).
		WithArgs(uint64(2), "Jamie Doe", "KLM", "QRT").
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM participants WHERE id = ?`)).
		WithArgs(uint64(8)).
		WillReturnRows(sqlmock.NewRows(participantCols).
			AddRow(8, 2, "Jamie Doe", "KLM", "QRT", nil, "2024-06-01 08:15:00"))

	p := &repo.Participant{SessionID: 2, Name: "Jamie Doe", ValidationCode: "KLM", PersonalCode: "QRT"}
	require.NoError(t, r.Create(context.Background(), p))
	require.Equal(t, uint64(8), p.ID)
	require.Nil(t, p.Validated, "new registrations start undecided")
	require.NotEmpty(t, p.RegisteredAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantRepoSetValidated(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := repo.NewParticipantRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE participants SET validated = ? WHERE id = ?`)).
		WithArgs(true, uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	v := true
	require.NoError(t, r.SetValidated(context.Background(), 8, &v))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantRepoSetValidatedResetToNull(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := repo.NewParticipantRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE participants SET validated = ? WHERE id = ?`)).
		WithArgs(nil, uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.SetValidated(context.Background(), 8, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantRepoSetValidatedNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := repo.NewParticipantRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE participants SET validated = ? WHERE id = ?`)).
		WithArgs(true, uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM participants WHERE id = ? LIMIT 1`)).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	v := true
	err = r.SetValidated(context.Background(), 99, &v)
	require.ErrorIs(t, err, repo.ErrParticipantNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantRepoListBySessionScansTriState(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := repo.NewParticipantRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM participants WHERE session_id = ?`)).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows(participantCols).
			AddRow(1, 2, "A", "AAA", "BBB", true, "2024-06-01 08:00:00").
			AddRow(2, 2, "B", "CCC", "DDD", false, "2024-06-01 08:05:00").
			AddRow(3, 2, "C", "EEE", "FFF", nil, "2024-06-01 08:10:00"))

	got, err := r.ListBySession(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.NotNil(t, got[0].Validated)
	require.True(t, *got[0].Validated)
	require.NotNil(t, got[1].Validated)
	require.False(t, *got[1].Validated)
	require.Nil(t, got[2].Validated)
	require.NoError(t, mock.ExpectationsWereMet())
}
