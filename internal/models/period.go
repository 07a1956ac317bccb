package models

import "time"

// periodLayout renders a billing period label ("October 2026").
const periodLayout = "January 2006"

// PeriodLabel returns the billing period label for t.
func PeriodLabel(t time.Time) string {
	return t.Format(periodLayout)
}
