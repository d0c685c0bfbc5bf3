package utils

import "time"

// Clock abstracts time.Now so persistence timestamps can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, backed by the system time.
type SystemClock struct{}

func (s SystemClock) Now() time.Time {
	return time.Now()
}

// MockClock reports a fixed instant until SetNow moves it.
type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

func (m *MockClock) SetNow(now time.Time) {
	m.FixedNow = now
}
