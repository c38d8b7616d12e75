package value

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time-of-day or zone component.
type Date struct {
	Year  int
	Month int
	Day   int
}

func (d Date) ToTime() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Cmp(o Date) int {
	return d.ToTime().Compare(o.ToTime())
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("value: invalid DATE literal %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

// Time is a time-of-day with microsecond precision.
type Time struct {
	Microseconds int64 // microseconds since midnight
}

func (t Time) Cmp(o Time) int {
	switch {
	case t.Microseconds < o.Microseconds:
		return -1
	case t.Microseconds > o.Microseconds:
		return 1
	default:
		return 0
	}
}

func (t Time) String() string {
	us := t.Microseconds
	h := us / 3_600_000_000
	us -= h * 3_600_000_000
	m := us / 60_000_000
	us -= m * 60_000_000
	s := us / 1_000_000
	us -= s * 1_000_000
	if us == 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d.%06d", h, m, s, us)
}

func ParseTime(s string) (Time, error) {
	for _, layout := range []string{"15:04:05.999999", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			us := int64(t.Hour())*3_600_000_000 + int64(t.Minute())*60_000_000 + int64(t.Second())*1_000_000 + int64(t.Nanosecond())/1000
			return Time{Microseconds: us}, nil
		}
	}
	return Time{}, fmt.Errorf("value: invalid TIME literal %q", s)
}

// Timestamp is a date+time pair in UTC, microsecond precision.
type Timestamp struct {
	Date Date
	Time Time
}

func (ts Timestamp) ToTime() time.Time {
	d := ts.Date.ToTime()
	return d.Add(time.Duration(ts.Time.Microseconds) * time.Microsecond)
}

func (ts Timestamp) Cmp(o Timestamp) int {
	return ts.ToTime().Compare(o.ToTime())
}

func (ts Timestamp) String() string {
	return ts.Date.String() + " " + ts.Time.String()
}

func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range []string{"2006-01-02 15:04:05.999999", "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{
				Date: Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()},
				Time: Time{Microseconds: int64(t.Hour())*3_600_000_000 + int64(t.Minute())*60_000_000 + int64(t.Second())*1_000_000 + int64(t.Nanosecond())/1000},
			}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("value: invalid TIMESTAMP literal %q", s)
}

// Interval is a month+microsecond composite, matching the translator's
// normalisation rule in spec §4.2 ("intervals to the month+microsecond
// composite").
type Interval struct {
	Months       int32
	Microseconds int64
}

func (iv Interval) Cmp(o Interval) int {
	// Approximate months as 30 days for ordering purposes, the conventional
	// SQL interval comparison rule when months and exact durations mix.
	a := int64(iv.Months)*30*24*3_600_000_000 + iv.Microseconds
	b := int64(o.Months)*30*24*3_600_000_000 + o.Microseconds
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (iv Interval) String() string {
	return fmt.Sprintf("%d months %d us", iv.Months, iv.Microseconds)
}

// Inet holds an IPv4 or IPv6 address.
type Inet struct {
	Addr [16]byte
	V4   bool
}

func (i Inet) Cmp(o Inet) int {
	for idx := range i.Addr {
		if i.Addr[idx] != o.Addr[idx] {
			if i.Addr[idx] < o.Addr[idx] {
				return -1
			}
			return 1
		}
	}
	return 0
}
