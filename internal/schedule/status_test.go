package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// The reference session used across status tests: registration opens at
// 08:00, the session starts at 10:00 and registration closes 60 minutes
// before start (09:00). No explicit end, so it runs until 12:00.
var refTimes = Times{
	Date:              "2024-06-01",
	RegistrationStart: "08:00",
	Start:             "10:00",
	ClosingMinutes:    60,
}

func utc(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestComputeStatus(t *testing.T) {
	cases := []struct {
		name string
		now  string
		want Status
	}{
		{"before registration opens", "2024-06-01T07:00:00Z", StatusOpen},
		{"registration just opened", "2024-06-01T08:00:00Z", StatusOpen},
		{"more than 30min to closing", "2024-06-01T08:29:00Z", StatusOpen},
		{"exactly 30min to closing", "2024-06-01T08:30:00Z", StatusClosing},
		{"15min to closing", "2024-06-01T08:45:00Z", StatusClosing},
		{"one second to closing", "2024-06-01T08:59:59Z", StatusClosing},
		// Past the closing boundary but before start the engine still
		// reports open; rule 4 only fires while the boundary is ahead.
		{"at closing boundary", "2024-06-01T09:00:00Z", StatusOpen},
		{"40min past closing", "2024-06-01T09:40:00Z", StatusOpen},
		{"45min past closing", "2024-06-01T09:45:00Z", StatusOpen},
		{"at start", "2024-06-01T10:00:00Z", StatusClosed},
		{"mid-session", "2024-06-01T11:00:00Z", StatusClosed},
		{"just before default end", "2024-06-01T11:59:59Z", StatusClosed},
		{"at default end", "2024-06-01T12:00:00Z", StatusCompleted},
		{"long after end", "2024-06-02T00:00:00Z", StatusCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeStatus(refTimes, utc(tc.now))
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestComputeStatusExplicitEnd(t *testing.T) {
	tm := refTimes
	tm.End = "10:30"

	got, err := ComputeStatus(tm, utc("2024-06-01T10:30:00Z"))
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, got)

	got, err = ComputeStatus(tm, utc("2024-06-01T10:29:00Z"))
	require.NoError(t, err)
	require.Equal(t, StatusClosed, got)
}

func TestComputeStatusCompletedWinsOverEverything(t *testing.T) {
	// Degenerate schedule where the closing window would also match:
	// rule 1 is evaluated first so completed always wins past the end.
	tm := Times{
		Date:              "2024-06-01",
		RegistrationStart: "08:00",
		Start:             "09:00",
		End:               "09:30",
		ClosingMinutes:    0,
	}
	got, err := ComputeStatus(tm, utc("2024-06-01T09:30:00Z"))
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, got)
}

func TestComputeStatusDeterministic(t *testing.T) {
	now := utc("2024-06-01T08:45:00Z")
	first, err := ComputeStatus(refTimes, now)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := ComputeStatus(refTimes, now)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestComputeStatusMalformedSchedule(t *testing.T) {
	tm := refTimes
	tm.Start = "25:99"
	_, err := ComputeStatus(tm, utc("2024-06-01T08:00:00Z"))
	require.Error(t, err)
}

func TestRegistrationOpen(t *testing.T) {
	cases := []struct {
		now  string
		want bool
	}{
		{"2024-06-01T07:59:59Z", false}, // not open yet
		{"2024-06-01T08:00:00Z", true},  // opens inclusively
		{"2024-06-01T08:45:00Z", true},  // closing soon but still open
		{"2024-06-01T08:59:59Z", true},
		{"2024-06-01T09:00:00Z", false}, // closing boundary is exclusive
		{"2024-06-01T10:30:00Z", false},
	}
	for _, tc := range cases {
		open, err := refTimes.RegistrationOpen(utc(tc.now))
		require.NoError(t, err)
		require.Equal(t, tc.want, open, "now=%s", tc.now)
	}
}

func TestValidators(t *testing.T) {
	require.True(t, ValidDate("2024-06-01"))
	require.False(t, ValidDate("2024-6-1"))
	require.False(t, ValidDate("01-06-2024"))
	require.False(t, ValidDate("2024-13-01"))

	require.True(t, ValidClock("08:05"))
	require.True(t, ValidClock("23:59"))
	require.False(t, ValidClock("8:05"))
	require.False(t, ValidClock("24:00"))
	require.False(t, ValidClock("08:05:00"))
}
