// Package time contains time related helpers
package time

import "time"

// Ptr returns a pointer to t or nil if t is zero
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// UnixSeconds floors t to whole epoch seconds; nil maps to 0
func UnixSeconds(t *time.Time) int64 {
	if t == nil || t.IsZero() {
		return 0
	}
	ms := t.UnixMilli()
	if ms < 0 {
		return 0
	}
	return ms / 1000
}

// FromUnixMilli converts epoch milliseconds to a UTC time
func FromUnixMilli(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// Now is the clock used for stamping records; tests may swap it
var Now = func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }
