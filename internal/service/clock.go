package service

import "time"

// Clock supplies the current time. All domain comparisons happen in UTC.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
