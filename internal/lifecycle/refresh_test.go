package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Iliyas128/flight-connect-backend/internal/repository"
)

type fakeWriter struct {
	writes map[uint64]string
	err    error
}

func (f *fakeWriter) UpdateStatus(_ context.Context, id uint64, status string) error {
	if f.err != nil {
		return f.err
	}
	if f.writes == nil {
		f.writes = map[uint64]string{}
	}
	f.writes[id] = status
	return nil
}

func session(id uint64, start, stored string) repository.Session {
	return repository.Session{
		ID:                id,
		FlightDate:        "2024-06-01",
		RegistrationStart: "08:00",
		StartsAt:          start,
		ClosingMinutes:    60,
		Status:            stored,
	}
}

func TestRefreshWritesOnlyChangedRows(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	sessions := []repository.Session{
		session(1, "10:00", "open"),   // started at 10:00 -> closed
		session(2, "14:00", "open"),   // still open, no write
		session(3, "07:00", "closed"), // ended 09:00 -> completed
	}
	w := &fakeWriter{}
	require.NoError(t, Refresh(context.Background(), w, sessions, now))

	require.Equal(t, map[uint64]string{1: "closed", 3: "completed"}, w.writes)
	require.Equal(t, "closed", sessions[0].Status)
	require.Equal(t, "open", sessions[1].Status)
	require.Equal(t, "completed", sessions[2].Status)
}

func TestRefreshSkipsMalformedSchedules(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	bad := session(1, "junk", "open")
	w := &fakeWriter{}
	require.NoError(t, Refresh(context.Background(), w, []repository.Session{bad}, now))
	require.Empty(t, w.writes)
}

func TestRefreshAbortsOnWriteFailure(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	boom := errors.New("store down")
	w := &fakeWriter{err: boom}
	err := Refresh(context.Background(), w, []repository.Session{session(1, "10:00", "open")}, now)
	require.ErrorIs(t, err, boom)
}

func TestRefreshOne(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := session(4, "10:00", "closed") // default end 12:00 -> completed
	w := &fakeWriter{}
	require.NoError(t, RefreshOne(context.Background(), w, &s, now))
	require.Equal(t, "completed", s.Status)
	require.Equal(t, map[uint64]string{4: "completed"}, w.writes)

	// Unchanged status does not write again.
	w2 := &fakeWriter{}
	require.NoError(t, RefreshOne(context.Background(), w2, &s, now))
	require.Empty(t, w2.writes)
}
