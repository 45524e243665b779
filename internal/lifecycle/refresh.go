// Package lifecycle coordinates status recomputation across session
// collections. Stored status is only a cache of the derived value;
// every read path refreshes it so persisted state converges to the true
// state without a background scheduler.
package lifecycle

import (
	"context"
	"log"
	"time"

	"github.com/Iliyas128/flight-connect-backend/internal/repository"
	"github.com/Iliyas128/flight-connect-backend/internal/schedule"
)

// StatusWriter persists a recomputed status. *repository.SessionRepo
// satisfies it; tests plug in a fake.
type StatusWriter interface {
	UpdateStatus(ctx context.Context, id uint64, status string) error
}

// Times extracts the schedule fields of a session row.
func Times(s *repository.Session) schedule.Times {
	return schedule.Times{
		Date:              s.FlightDate,
		RegistrationStart: s.RegistrationStart,
		Start:             s.StartsAt,
		End:               s.EndsAt,
		ClosingMinutes:    s.ClosingMinutes,
	}
}

// Refresh recomputes the status of every session in place and persists
// only the rows whose status actually changed (write-on-change keeps
// store churn down). Rows with a malformed stored schedule keep their
// stored status; a write failure aborts since the store is clearly
// unhealthy.
func Refresh(ctx context.Context, w StatusWriter, sessions []repository.Session, now time.Time) error {
	for i := range sessions {
		s := &sessions[i]
		status, err := schedule.ComputeStatus(Times(s), now)
		if err != nil {
			log.Printf("lifecycle: session %d has malformed schedule: %v", s.ID, err)
			continue
		}
		if string(status) == s.Status {
			continue
		}
		if err := w.UpdateStatus(ctx, s.ID, string(status)); err != nil {
			return err
		}
		s.Status = string(status)
	}
	return nil
}

// RefreshOne recomputes and, when changed, persists the status of a
// single session row.
func RefreshOne(ctx context.Context, w StatusWriter, s *repository.Session, now time.Time) error {
	status, err := schedule.ComputeStatus(Times(s), now)
	if err != nil {
		return err
	}
	if string(status) == s.Status {
		return nil
	}
	if err := w.UpdateStatus(ctx, s.ID, string(status)); err != nil {
		return err
	}
	s.Status = string(status)
	return nil
}
