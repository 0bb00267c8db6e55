// Package calendar maps absolute instants to civil days in a fixed-offset timezone.
//
// Every day boundary used by the attendance code (today, month start/end, admin date
// filters) goes through a Normalizer so results never depend on the host's local zone.
// The zone is a fixed offset with no daylight-saving transitions; zones that observe DST
// need a tz database location instead of a fixed offset.
package calendar

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DayKeyLayout      = "2006-01-02"
	MonthKeyLayout    = "2006-01"
	DisplayTimeLayout = "03:04 PM"

	// ISTOffset is UTC+05:30.
	ISTOffset = 5*60*60 + 30*60
)

var (
	ErrInvalidDayKey   = errors.New("invalid day key, expected YYYY-MM-DD")
	ErrInvalidMonthKey = errors.New("invalid month, expected YYYY-MM")
	ErrInvalidOffset   = errors.New("invalid utc offset, expected ±HH:MM")

	dayKeyPattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	monthKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
	offsetPattern   = regexp.MustCompile(`^[+-]\d{2}:\d{2}$`)
)

// DayKey is a zero-padded YYYY-MM-DD civil date. Lexical order equals chronological order.
type DayKey string

// ParseDayKey accepts only fixed-width, zero-padded keys naming a real calendar date.
func ParseDayKey(s string) (DayKey, error) {
	s = strings.TrimSpace(s)
	if !dayKeyPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDayKey, s)
	}
	if _, err := time.Parse(DayKeyLayout, s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDayKey, s)
	}
	return DayKey(s), nil
}

func (k DayKey) String() string { return string(k) }

// After reports whether k is a later civil day than other.
func (k DayKey) After(other DayKey) bool { return k > other }

// Month is a calendar month of a given year.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses "YYYY-MM" with the month restricted to 01..12.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	if !monthKeyPattern.MatchString(s) {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonthKey, s)
	}
	year, _ := strconv.Atoi(s[:4])
	mon, _ := strconv.Atoi(s[5:])
	if mon < 1 || mon > 12 {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonthKey, s)
	}
	return Month{Year: year, Month: time.Month(mon)}, nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Day returns the key of the given day of the month (1-based).
func (m Month) Day(day int) DayKey {
	return DayKey(fmt.Sprintf("%04d-%02d-%02d", m.Year, int(m.Month), day))
}

// Before reports whether m is strictly earlier than other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// Normalizer converts between instants and civil days of one fixed-offset zone.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer builds a normalizer for a zone offsetSeconds east of UTC.
func NewNormalizer(name string, offsetSeconds int) *Normalizer {
	return &Normalizer{loc: time.FixedZone(name, offsetSeconds)}
}

// IST is the default civil zone.
func IST() *Normalizer {
	return NewNormalizer("IST", ISTOffset)
}

// ParseOffset parses "+05:30" style offsets into seconds east of UTC.
func ParseOffset(s string) (int, error) {
	s = strings.TrimSpace(s)
	if !offsetPattern.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOffset, s)
	}
	hours, _ := strconv.Atoi(s[1:3])
	minutes, _ := strconv.Atoi(s[4:6])
	if hours > 14 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOffset, s)
	}
	secs := hours*3600 + minutes*60
	if s[0] == '-' {
		secs = -secs
	}
	return secs, nil
}

func (n *Normalizer) Location() *time.Location { return n.loc }

// DayKey returns the civil date of t.
func (n *Normalizer) DayKey(t time.Time) DayKey {
	return DayKey(t.In(n.loc).Format(DayKeyLayout))
}

// DayStart returns the instant of 00:00 on t's civil day, expressed in UTC.
func (n *Normalizer) DayStart(t time.Time) time.Time {
	y, m, d := t.In(n.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, n.loc).UTC()
}

// DayStartFromKey is DayStart for an explicit "YYYY-MM-DD" key.
func (n *Normalizer) DayStartFromKey(key string) (time.Time, error) {
	k, err := ParseDayKey(key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(DayKeyLayout, string(k), n.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDayKey, key)
	}
	return t.UTC(), nil
}

// NextDayStart returns the start of the civil day after the one starting at dayStart.
func (n *Normalizer) NextDayStart(dayStart time.Time) time.Time {
	return n.AddDays(dayStart, 1)
}

// AddDays shifts a day start by whole civil days.
func (n *Normalizer) AddDays(dayStart time.Time, days int) time.Time {
	return dayStart.In(n.loc).AddDate(0, 0, days).UTC()
}

// MonthOf returns the civil month containing t.
func (n *Normalizer) MonthOf(t time.Time) Month {
	y, m, _ := t.In(n.loc).Date()
	return Month{Year: y, Month: m}
}

// MonthRange returns [start of the month's first day, start of the next month's first day).
func (n *Normalizer) MonthRange(m Month) (time.Time, time.Time) {
	from := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, n.loc)
	return from.UTC(), from.AddDate(0, 1, 0).UTC()
}

// DisplayTime formats t as a 12-hour clock in the civil zone. Display only.
func (n *Normalizer) DisplayTime(t time.Time) string {
	return t.In(n.loc).Format(DisplayTimeLayout)
}
