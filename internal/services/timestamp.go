package services

import "time"

const appliedAtLayout = "January 2, 2006 at 3:04 PM"

// FormatAppliedAt renders t the way the form shows "Date Applied",
// e.g. "April 5, 2024 at 3:45 PM".
func FormatAppliedAt(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(appliedAtLayout)
}
