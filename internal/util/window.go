package util

import "time"

// DateLayout is the YYYY-MM-DD layout used by provider date parameters.
const DateLayout = "2006-01-02"

// DateWindow is an inclusive calendar-day range.
type DateWindow struct {
	From time.Time
	To   time.Time
}

// LookbackWindow returns the window ending on the calendar day of now and
// starting days earlier. A negative days value is treated as zero.
func LookbackWindow(now time.Time, days int) DateWindow {
	if days < 0 {
		days = 0
	}
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return DateWindow{
		From: to.AddDate(0, 0, -days),
		To:   to,
	}
}

// FromString formats the window start as YYYY-MM-DD.
func (w DateWindow) FromString() string { return w.From.Format(DateLayout) }

// ToString formats the window end as YYYY-MM-DD.
func (w DateWindow) ToString() string { return w.To.Format(DateLayout) }
