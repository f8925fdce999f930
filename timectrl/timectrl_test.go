package timectrl

import (
	"errors"
	"testing"
	"time"
)

func TestParseInstantValid(t *testing.T) {
	cases := map[string]Instant{
		"00:00:00": {},
		"23:25:00": {Hour: 23, Minute: 25},
		"23:59:59": {Hour: 23, Minute: 59, Second: 59},
		"07:05:09": {Hour: 7, Minute: 5, Second: 9},
	}
	for s, want := range cases {
		got, err := ParseInstant(s)
		if err != nil {
			t.Fatalf("ParseInstant(%q) error: %v", s, err)
		}
		if got != want {
			t.Fatalf("ParseInstant(%q) = %+v, want %+v", s, got, want)
		}
		if got.String() != s {
			t.Fatalf("String() = %q, want %q", got.String(), s)
		}
	}
}

func TestParseInstantInvalid(t *testing.T) {
	for _, s := range []string{
		"25:61:00", // hour and minute out of range
		"24:00:00",
		"12:60:00",
		"12:00:60", // seconds are range-checked too
		"7:05:09",
		"12:00",
		"12-00-00",
		"12:00:00 ",
		"ab:cd:ef",
		"+1:00:00",
		"",
	} {
		if _, err := ParseInstant(s); !errors.Is(err, ErrInvalidInstant) {
			t.Fatalf("ParseInstant(%q) error = %v, want ErrInvalidInstant", s, err)
		}
	}
}

func TestInstantOn(t *testing.T) {
	in := Instant{Hour: 23, Minute: 25, Second: 7}
	date := time.Date(2021, time.October, 2, 15, 0, 0, 0, time.UTC)
	want := time.Date(2021, time.October, 2, 23, 25, 7, 0, time.UTC)
	if got := in.On(date); !got.Equal(want) {
		t.Fatalf("On() = %v, want %v", got, want)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2021-10-02")
	if err != nil {
		t.Fatalf("ParseDate error: %v", err)
	}
	if d.Year() != 2021 || d.Month() != time.October || d.Day() != 2 {
		t.Fatalf("ParseDate = %v, want 2021-10-02", d)
	}
	for _, s := range []string{"2021-13-01", "02/10/2021", ""} {
		if _, err := ParseDate(s); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ParseDate(%q) error = %v, want ErrInvalidDate", s, err)
		}
	}
}
