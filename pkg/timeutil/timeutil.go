// Package timeutil provides the engine's clock abstraction and academic
// calendar helpers. Period-window checks and transition stamps go through an
// injected Clock so tests can control time.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"sync"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// RealClock is the production clock.
type RealClock struct{}

// Now returns the current UTC time.
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// FakeClock is a settable clock for tests.
type FakeClock struct {
	mu sync.Mutex
	t  time.Time
}

// NewFakeClock creates a fake clock frozen at t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{t: t.UTC()}
}

// Now returns the frozen time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Set moves the fake clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t.UTC()
}

// Advance moves the fake clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// AcademicYearStartMonth is when the academic year rolls over (September).
const AcademicYearStartMonth = time.September

// AcademicYearAt returns the academic year containing t in "YYYY-YYYY" form,
// with the year boundary at the start of September.
func AcademicYearAt(t time.Time) string {
	y := t.Year()
	if t.Month() < AcademicYearStartMonth {
		y--
	}
	return fmt.Sprintf("%d-%d", y, y+1)
}

// SemesterAt returns the semester containing t: semester 1 runs September
// through January, semester 2 February through August.
func SemesterAt(t time.Time) int {
	if t.Month() >= time.February && t.Month() < AcademicYearStartMonth {
		return 2
	}
	return 1
}

// StartOfDay returns the start of the day (00:00:00 UTC).
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the end of the day (23:59:59.999999999 UTC).
func EndOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 999999999, time.UTC)
}
