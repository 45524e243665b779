package schedule

import "time"

// Interval is a half-open [Start, End) time range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect. Touching
// boundaries do not overlap: [09:00,11:00) and [11:00,13:00) are clear.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Entry pairs a session identifier with its schedule for conflict
// checks against a set of same-day sessions.
type Entry struct {
	ID    uint64
	Times Times
}

// FindConflict checks a candidate schedule against the sessions already
// planned on the same date and returns the first one whose time range
// intersects the candidate's. Sessions without an explicit end are
// assumed to run for DefaultDuration, same as the status engine.
// excludeID skips one session, which update flows use so a session does
// not conflict with itself; pass 0 when creating.
func FindConflict(candidate Times, excludeID uint64, sameDay []Entry) (*Entry, error) {
	candStart, err := candidate.StartAt()
	if err != nil {
		return nil, err
	}
	candEnd, err := candidate.EndAt()
	if err != nil {
		return nil, err
	}
	want := Interval{Start: candStart, End: candEnd}
	for i := range sameDay {
		e := sameDay[i]
		if e.ID == excludeID {
			continue
		}
		start, err := e.Times.StartAt()
		if err != nil {
			return nil, err
		}
		end, err := e.Times.EndAt()
		if err != nil {
			return nil, err
		}
		if Overlaps(want, Interval{Start: start, End: end}) {
			return &e, nil
		}
	}
	return nil, nil
}
