package util

import (
	"fmt"
	"sync"
	"time"
)

// TimeProvider answers "what day is it" in the configured timezone. A fixed
// instant can be pinned for reproducible renders and tests.
type TimeProvider struct {
	location *time.Location
	fixed    *time.Time
	mu       sync.RWMutex
}

var (
	globalTimeProvider *TimeProvider
	mu                 sync.Mutex
)

// InitializeTimeProvider initializes the global time provider with the specified timezone
func InitializeTimeProvider(timezone string) error {
	mu.Lock()
	defer mu.Unlock()

	provider := &TimeProvider{}
	if err := provider.SetTimezone(timezone); err != nil {
		return err
	}

	globalTimeProvider = provider
	return nil
}

// GetTimeProvider returns the global time provider instance
// If not initialized, it defaults to Local timezone
func GetTimeProvider() *TimeProvider {
	mu.Lock()
	defer mu.Unlock()
	if globalTimeProvider == nil {
		globalTimeProvider = &TimeProvider{location: time.Local}
	}
	return globalTimeProvider
}

// NewTimeProvider builds a standalone provider, optionally pinned to a fixed instant.
func NewTimeProvider(timezone string, fixed *time.Time) (*TimeProvider, error) {
	tp := &TimeProvider{}
	if err := tp.SetTimezone(timezone); err != nil {
		return nil, err
	}
	if fixed != nil {
		tp.Pin(*fixed)
	}
	return tp, nil
}

// SetTimezone updates the timezone for the time provider
func (tp *TimeProvider) SetTimezone(timezone string) error {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	loc := time.Local
	if timezone != "" && timezone != "Local" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w\nValid examples: Local, UTC, America/New_York, Asia/Shanghai, Europe/London", timezone, err)
		}
		loc = l
	}
	tp.location = loc
	return nil
}

// Pin freezes Now at t.
func (tp *TimeProvider) Pin(t time.Time) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	pinned := t
	tp.fixed = &pinned
}

// Unpin resumes wall-clock time.
func (tp *TimeProvider) Unpin() {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.fixed = nil
}

// Now returns the current time in the configured timezone
func (tp *TimeProvider) Now() time.Time {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	loc := tp.location
	if loc == nil {
		loc = time.Local
	}
	if tp.fixed != nil {
		return tp.fixed.In(loc)
	}
	return time.Now().In(loc)
}

// Today returns the current calendar day in the configured timezone,
// expressed as UTC midnight so it compares directly with parsed dates.
func (tp *TimeProvider) Today() time.Time {
	now := tp.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Format formats a time according to the layout in the configured timezone
func (tp *TimeProvider) Format(t time.Time, layout string) string {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	loc := tp.location
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(layout)
}
