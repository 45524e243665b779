package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	repo "github.com/Iliyas128/flight-connect-backend/internal/repository"
)

func TestValidKeyRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := repo.NewValidKeyRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO valid_keys`)).
		WithArgs(uint64(2), "KLM", "Jan Novak", "2024-06").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM valid_keys WHERE id = ?`)).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "session_id", "key_value", "pilot_name", "month_tag", "created_at"},
		).AddRow(11, 2, "KLM", "Jan Novak", "2024-06", "2024-06-10 09:00:00"))

	k := &repo.ValidKey{SessionID: 2, Value: "KLM", PilotName: "Jan Novak", MonthTag: "2024-06"}
	require.NoError(t, r.Create(context.Background(), k))
	require.Equal(t, uint64(11), k.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidKeyRepoCreateDuplicateMapsToConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := repo.NewValidKeyRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO valid_keys`)).
		WithArgs(uint64(2), "KLM", "Jan Novak", "2024-06").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'KLM-2024-06' for key 'uq_valid_keys_value_tag'"))

	k := &repo.ValidKey{SessionID: 2, Value: "KLM", PilotName: "Jan Novak", MonthTag: "2024-06"}
	err = r.Create(context.Background(), k)
	require.ErrorIs(t, err, repo.ErrDuplicateKey)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidKeyRepoValueInUse(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := repo.NewValidKeyRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM valid_keys WHERE key_value = ? AND month_tag IN (?, ?))`)).
		WithArgs("KLM", "2024-06", "2024-05").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	used, err := r.ValueInUse(context.Background(), "KLM", "2024-06", "2024-05")
	require.NoError(t, err)
	require.False(t, used)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidKeyRepoPilotHasKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := repo.NewValidKeyRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM valid_keys WHERE session_id = ? AND pilot_name = ? AND month_tag IN (?, ?))`)).
		WithArgs(uint64(2), "Jan Novak", "2024-06", "2024-05").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	has, err := r.PilotHasKey(context.Background(), 2, "Jan Novak", "2024-06", "2024-05")
	require.NoError(t, err)
	require.True(t, has)
	require.NoError(t, mock.ExpectationsWereMet())
}
