package core

import (
	"time"
)

// Clock supplies the current time. Services hold one so tests can pin timestamps.
type Clock func() time.Time

// SystemClock returns the wall-clock time in UTC
func SystemClock() time.Time {
	return time.Now().UTC()
}
