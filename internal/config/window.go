package config

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// DateLayout is the format of window dates
const DateLayout = "2006-01-02"

// Window selects the leads of a snapshot by creation date. Either both Start and End
// are set, or RRule names a recurrence whose last completed period is used. End is
// inclusive of the whole day.
type Window struct {
	Start string `yaml:"start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	End   string `yaml:"end,omitempty" validate:"omitempty,datetime=2006-01-02"`

	// RRule must carry a DTSTART, e.g. "DTSTART=20230101T000000Z;FREQ=MONTHLY"
	RRule string `yaml:"rrule,omitempty"`
}

// IsZero reports whether no window is configured
func (w Window) IsZero() bool {
	return w.Start == "" && w.End == "" && w.RRule == ""
}

// Validate checks the window is either explicit dates or a parseable rrule
func (w Window) Validate() error {
	if w.RRule != "" {
		if w.Start != "" || w.End != "" {
			return fmt.Errorf("set either start/end or rrule, not both")
		}
		if _, err := rrule.StrToRRule(w.RRule); err != nil {
			return fmt.Errorf("invalid rrule: %w", err)
		}
		return nil
	}

	if (w.Start == "") != (w.End == "") {
		return fmt.Errorf("start and end must be set together")
	}
	if w.Start == "" {
		return nil
	}
	_, _, err := w.explicit()
	return err
}

func (w Window) explicit() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, w.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse(DateLayout, w.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s is before start %s", w.End, w.Start)
	}
	return start, end, nil
}

// Resolve returns the inclusive start and end days of the window. For an rrule the
// period is [previous occurrence, last occurrence) before now, reported with the
// day before the last occurrence as the end day.
func (w Window) Resolve(now time.Time) (time.Time, time.Time, error) {
	if w.RRule == "" {
		if w.Start == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("no snapshot window configured")
		}
		return w.explicit()
	}

	r, err := rrule.StrToRRule(w.RRule)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid rrule: %w", err)
	}

	last := r.Before(now, true)
	if last.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("rrule has no occurrence before %s", now.Format(DateLayout))
	}
	prev := r.Before(last, false)
	if prev.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("rrule has no completed period before %s", now.Format(DateLayout))
	}

	start := truncateDay(prev)
	end := truncateDay(last).AddDate(0, 0, -1)
	return start, end, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
