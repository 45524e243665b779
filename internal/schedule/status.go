// Package schedule implements the time reasoning for registration
// sessions: deriving a session's lifecycle status from its configured
// window boundaries, detecting same-day time-range conflicts between
// sessions, and computing the rolling month window used to scope
// validation key uniqueness. All arithmetic is done on UTC instants so
// results do not depend on the local zone of the evaluating process.
package schedule

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a session derived from the clock.
type Status string

const (
	StatusOpen      Status = "open"      // registration window open (or not yet reached)
	StatusClosing   Status = "closing"   // registration closes within the next 30 minutes
	StatusClosed    Status = "closed"    // session has started, registration over
	StatusCompleted Status = "completed" // session has ended
)

// DefaultDuration is assumed for sessions without an explicit end time.
const DefaultDuration = 2 * time.Hour

// closingSoonWindow is how far ahead of the closing boundary a session
// is reported as "closing".
const closingSoonWindow = 30 * time.Minute

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Times carries the schedule fields of a session in their persisted
// string form: a calendar date "YYYY-MM-DD" and zero-padded 24-hour
// "HH:mm" times of day. End may be empty, in which case the session is
// assumed to run for DefaultDuration after Start.
type Times struct {
	Date              string
	RegistrationStart string
	Start             string
	End               string
	ClosingMinutes    int
}

// ValidDate reports whether s is a well-formed "YYYY-MM-DD" date.
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil && len(s) == len(dateLayout)
}

// ValidClock reports whether s is a well-formed zero-padded "HH:mm" time.
func ValidClock(s string) bool {
	_, err := time.Parse(clockLayout, s)
	return err == nil && len(s) == len(clockLayout)
}

// at parses the session date combined with a time of day as a UTC instant.
func at(date, clock string) (time.Time, error) {
	t, err := time.Parse(dateLayout+" "+clockLayout, date+" "+clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid schedule time %q %q: %w", date, clock, err)
	}
	return t, nil
}

// StartAt returns the instant the session starts.
func (t Times) StartAt() (time.Time, error) {
	return at(t.Date, t.Start)
}

// EndAt returns the instant the session ends. When no end time is
// configured the session runs for DefaultDuration after its start.
func (t Times) EndAt() (time.Time, error) {
	if t.End != "" {
		return at(t.Date, t.End)
	}
	start, err := t.StartAt()
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(DefaultDuration), nil
}

// RegistrationOpensAt returns the instant the registration window opens.
func (t Times) RegistrationOpensAt() (time.Time, error) {
	return at(t.Date, t.RegistrationStart)
}

// ClosesAt returns the instant registration closes: ClosingMinutes
// before the session start.
func (t Times) ClosesAt() (time.Time, error) {
	start, err := t.StartAt()
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(-time.Duration(t.ClosingMinutes) * time.Minute), nil
}

// RegistrationOpen reports whether pilots may register at the given
// instant: the registration window has opened and the closing boundary
// has not passed yet.
func (t Times) RegistrationOpen(now time.Time) (bool, error) {
	opens, err := t.RegistrationOpensAt()
	if err != nil {
		return false, err
	}
	closes, err := t.ClosesAt()
	if err != nil {
		return false, err
	}
	return !now.Before(opens) && now.Before(closes), nil
}

// ComputeStatus derives the lifecycle status of a session at the given
// instant. The rules are evaluated in order, first match wins:
//
//  1. now at or past the end       -> completed
//  2. now at or past the start     -> closed
//  3. now before registration open -> open
//  4. closing boundary within the next 30 minutes -> closing
//  5. otherwise                    -> open
//
// The function is pure: the same schedule and instant always yield the
// same status, so callers recompute on every read instead of trusting
// the stored value. Note the band between the closing boundary and the
// session start deliberately reports open; rule 4 only fires while the
// boundary is still ahead.
func ComputeStatus(t Times, now time.Time) (Status, error) {
	end, err := t.EndAt()
	if err != nil {
		return "", err
	}
	if !now.Before(end) {
		return StatusCompleted, nil
	}
	start, err := t.StartAt()
	if err != nil {
		return "", err
	}
	if !now.Before(start) {
		return StatusClosed, nil
	}
	opens, err := t.RegistrationOpensAt()
	if err != nil {
		return "", err
	}
	if now.Before(opens) {
		return StatusOpen, nil
	}
	closes, err := t.ClosesAt()
	if err != nil {
		return "", err
	}
	if until := closes.Sub(now); until > 0 && until <= closingSoonWindow {
		return StatusClosing, nil
	}
	return StatusOpen, nil
}
