package station

import (
	"fmt"
	"time"
)

// FreezePeriod is an annually recurring ice-affected window, expressed as
// month/day boundaries. The window may wrap the year end (e.g. November
// through March).
type FreezePeriod struct {
	StartMonth time.Month
	StartDay   int
	EndMonth   time.Month
	EndDay     int
}

// ParseFreezePeriod parses "MM-DD:MM-DD" into a FreezePeriod.
func ParseFreezePeriod(s string) (*FreezePeriod, error) {
	var sm, sd, em, ed int
	if _, err := fmt.Sscanf(s, "%d-%d:%d-%d", &sm, &sd, &em, &ed); err != nil {
		return nil, fmt.Errorf("freeze period %q: want MM-DD:MM-DD", s)
	}
	fp := &FreezePeriod{
		StartMonth: time.Month(sm),
		StartDay:   sd,
		EndMonth:   time.Month(em),
		EndDay:     ed,
	}
	if sm < 1 || sm > 12 || em < 1 || em > 12 || sd < 1 || sd > 31 || ed < 1 || ed > 31 {
		return nil, fmt.Errorf("freeze period %q: month or day out of range", s)
	}
	return fp, nil
}

// Mask marks each date that falls inside the freeze window.
func (fp *FreezePeriod) Mask(dates []time.Time) []bool {
	mask := make([]bool, len(dates))
	beg := int(fp.StartMonth)*100 + fp.StartDay
	end := int(fp.EndMonth)*100 + fp.EndDay
	for i, d := range dates {
		md := int(d.Month())*100 + d.Day()
		if beg <= end {
			mask[i] = md >= beg && md <= end
		} else {
			mask[i] = md >= beg || md <= end
		}
	}
	return mask
}
