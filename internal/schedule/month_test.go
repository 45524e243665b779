package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMonthTag(t *testing.T) {
	require.Equal(t, "2024-06", MonthTag(utc("2024-06-15T12:00:00Z")))
	require.Equal(t, "2024-01", MonthTag(utc("2024-01-01T00:00:00Z")))
}

func TestMonthWindow(t *testing.T) {
	cur, prev := MonthWindow(utc("2024-06-15T12:00:00Z"))
	require.Equal(t, "2024-06", cur)
	require.Equal(t, "2024-05", prev)

	// Year boundary.
	cur, prev = MonthWindow(utc("2024-01-03T09:00:00Z"))
	require.Equal(t, "2024-01", cur)
	require.Equal(t, "2023-12", prev)

	// End-of-month instants must not skip a month when stepping back.
	cur, prev = MonthWindow(utc("2024-03-31T23:59:59Z"))
	require.Equal(t, "2024-03", cur)
	require.Equal(t, "2024-02", prev)
}

func TestMonthTagUsesUTC(t *testing.T) {
	// 23:30 on May 31 in UTC+2 is 21:30 UTC, still May.
	zone := time.FixedZone("UTC+2", 2*60*60)
	local := time.Date(2024, 5, 31, 23, 30, 0, 0, zone)
	require.Equal(t, "2024-05", MonthTag(local))
}
