package timectrl

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInstant is returned for time strings outside the strict
// HH:MM:SS format or with out-of-range fields.
var ErrInvalidInstant = errors.New("invalid time instant")

// ErrInvalidDate is returned for date strings that are not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

// Layout is the only accepted spelling of a time instant.
const Layout = "HH:MM:SS"

const dateLayout = "2006-01-02"

// Instant is a time of day with one-second resolution. Track records are
// keyed by it; it carries no date.
type Instant struct {
	Hour   int
	Minute int
	Second int
}

// ParseInstant parses s as HH:MM:SS with exactly two digits per field,
// hours 00-23, minutes 00-59 and seconds 00-59.
func ParseInstant(s string) (Instant, error) {
	if len(s) != len(Layout) || s[2] != ':' || s[5] != ':' {
		return Instant{}, fmt.Errorf("%w: %q is not %s", ErrInvalidInstant, s, Layout)
	}

	fields := [3]int{}
	for i := range fields {
		v, ok := twoDigits(s[i*3 : i*3+2])
		if !ok {
			return Instant{}, fmt.Errorf("%w: %q is not %s", ErrInvalidInstant, s, Layout)
		}
		fields[i] = v
	}

	in := Instant{Hour: fields[0], Minute: fields[1], Second: fields[2]}
	switch {
	case in.Hour > 23:
		return Instant{}, fmt.Errorf("%w: hour %02d out of range 00-23", ErrInvalidInstant, in.Hour)
	case in.Minute > 59:
		return Instant{}, fmt.Errorf("%w: minute %02d out of range 00-59", ErrInvalidInstant, in.Minute)
	case in.Second > 59:
		return Instant{}, fmt.Errorf("%w: second %02d out of range 00-59", ErrInvalidInstant, in.Second)
	}
	return in, nil
}

func twoDigits(s string) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// String returns the canonical HH:MM:SS spelling, which is also the key
// used to match track records.
func (in Instant) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", in.Hour, in.Minute, in.Second)
}

// On anchors the instant to the calendar day of date, in UTC.
func (in Instant) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, in.Hour, in.Minute, in.Second, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidDate, s)
	}
	return d, nil
}
