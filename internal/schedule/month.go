package schedule

import "time"

const monthTagLayout = "2006-01"

// MonthTag formats the month of the given instant as a "YYYY-MM" tag.
// Validation keys are scoped to these tags and rotate out implicitly as
// the window advances.
func MonthTag(t time.Time) string {
	return t.UTC().Format(monthTagLayout)
}

// MonthWindow returns the current and previous month tags for the given
// instant. A key value must be unique within the union of the two tags;
// taking the reference instant explicitly keeps the helper pure instead
// of reading the wall clock wherever it happens to be called.
func MonthWindow(t time.Time) (current, previous string) {
	t = t.UTC()
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.Format(monthTagLayout), first.AddDate(0, -1, 0).Format(monthTagLayout)
}
