package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var ErrEmptyDate = errors.New("empty date")

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the calendar day at
// UTC midnight. Stay dates carry no time of day.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrEmptyDate
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return DateOnly(t), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

// DateOnly drops the clock part, keeping the calendar day of t.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Nights counts whole days between two stay dates.
func Nights(checkIn, checkOut time.Time) int {
	return int(math.Round(DateOnly(checkOut).Sub(DateOnly(checkIn)).Hours() / 24))
}

// Overlaps is the half-open interval test: [aStart, aEnd) and [bStart, bEnd)
// intersect. Touching boundaries do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// RoundMoney rounds to cents.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// AmountsMatch compares two currency amounts with a one cent tolerance.
func AmountsMatch(a, b float64) bool {
	return math.Abs(math.Round(a*100)-math.Round(b*100)) <= 1
}

// FlexString binds a JSON string or bare number into a string so form-ish
// payloads can be validated field by field instead of failing the decode.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}
	*f = FlexString(string(data))
	return nil
}

func (f FlexString) String() string { return string(f) }
