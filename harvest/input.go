package harvest

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for inputs and derived dates.
const DateLayout = "2006-01-02"

// Input validation errors. Their messages are shown to the operator as is.
var (
	ErrNoChannels       = errors.New("at least one channel required")
	ErrInvalidDateRange = errors.New("start date must not be after end date")
	ErrInvalidDate      = errors.New("invalid date")
)

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: use YYYY-MM-DD", ErrInvalidDate, s)
	}
	return t, nil
}

// ParseDateRange parses both bounds and validates their order.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, fmt.Errorf("start date: %w", err)
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, fmt.Errorf("end date: %w", err)
	}
	r := DateRange{Start: s, End: e}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// Validate checks that both bounds are set and Start is not after End.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidDate)
	}
	if r.Start.After(r.End) {
		return ErrInvalidDateRange
	}
	return nil
}

// String formats the range as "YYYY-MM-DD to YYYY-MM-DD".
func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + " to " + r.End.Format(DateLayout)
}

// ParseChannelIDs splits operator input into channel IDs. Lines and commas
// both separate entries; blank entries are dropped. Order and duplicates are
// kept.
func ParseChannelIDs(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})
	ids := make([]string, 0, len(fields))
	for _, f := range fields {
		if id := strings.TrimSpace(f); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Request describes one harvesting run.
type Request struct {
	// ChannelIDs are processed in this order.
	ChannelIDs []string
	// Dates is the inclusive publication date range.
	Dates DateRange
	// Observer is notified as each channel starts. Optional.
	Observer Observer
}

// Validate rejects requests that must not issue any query.
func (r Request) Validate() error {
	if len(r.ChannelIDs) == 0 {
		return ErrNoChannels
	}
	for _, id := range r.ChannelIDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: empty channel id", ErrNoChannels)
		}
	}
	return r.Dates.Validate()
}
