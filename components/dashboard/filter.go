package dashboard

import (
	"fmt"
	"strings"
)

// DateRange selects a prefix of the activity collection.
type DateRange string

const (
	Range7Days  DateRange = "7d"
	Range30Days DateRange = "30d"
	Range90Days DateRange = "90d"
	RangeAll    DateRange = "all"
)

// DefaultDateRange is applied on activation.
const DefaultDateRange = Range30Days

var rangeLengths = map[DateRange]int{
	Range7Days:  7,
	Range30Days: 30,
	Range90Days: 90,
}

// DateRanges lists the selectors in display order.
func DateRanges() []DateRange {
	return []DateRange{Range7Days, Range30Days, Range90Days, RangeAll}
}

// Valid reports whether r is a known selector.
func (r DateRange) Valid() bool {
	if r == RangeAll {
		return true
	}
	_, ok := rangeLengths[r]
	return ok
}

// ParseDateRange normalizes user input and rejects unknown selectors.
func ParseDateRange(value string) (DateRange, error) {
	r := DateRange(strings.ToLower(strings.TrimSpace(value)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDateRange, value)
	}
	return r, nil
}

// FilterActivity returns the first N records for 7d/30d/90d, or a full copy for all.
// It is a prefix slice, not a calendar window. ok is false for unknown selectors and
// the result is nil; callers decide what to keep.
func FilterActivity(baseline []ActivityRecord, r DateRange) ([]ActivityRecord, bool) {
	if r == RangeAll {
		return append([]ActivityRecord{}, baseline...), true
	}
	n, ok := rangeLengths[r]
	if !ok {
		return nil, false
	}
	if n > len(baseline) {
		n = len(baseline)
	}
	return append([]ActivityRecord{}, baseline[:n]...), true
}
