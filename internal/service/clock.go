package service

import "time"

// Clock supplies the single wall-clock sample an Evaluate call seeds every
// individual request's current-dateTime/date/time designators from (spec
// §8 property 8, §4.9 step 3: "all three derived from one clock sample").
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock, backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
