package util

import (
	"fmt"
	"sync"
	"time"
)

// TimeProvider holds the zone log timestamps are interpreted and shown in.
// HWiNFO writes wall clock time without an offset, so the zone has to come
// from the user.
type TimeProvider struct {
	location *time.Location
	mu       sync.RWMutex
}

var (
	globalTimeProvider *TimeProvider
	mu                 sync.Mutex
)

// InitializeTimeProvider sets the global zone. On error the previous provider
// is kept.
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

// GetTimeProvider returns the global provider, defaulting to Local.
func GetTimeProvider() *TimeProvider {
	mu.Lock()
	p := globalTimeProvider
	mu.Unlock()

	if p == nil {
		_ = InitializeTimeProvider("Local")
		mu.Lock()
		p = globalTimeProvider
		mu.Unlock()
	}
	return p
}

// LoadLocation resolves a zone name; "" and "Local" mean time.Local.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	l, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w\nValid examples: Local, UTC, Europe/Berlin, Asia/Shanghai, America/New_York", timezone, err)
	}
	return l, nil
}

func (tp *TimeProvider) SetTimezone(timezone string) error {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return err
	}

	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.location = loc
	return nil
}

func (tp *TimeProvider) Location() *time.Location {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return tp.location
}

// FromMillis converts an epoch millisecond timestamp into the configured zone.
func (tp *TimeProvider) FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).In(tp.Location())
}

// FormatMillis formats an epoch millisecond timestamp in the configured zone.
func (tp *TimeProvider) FormatMillis(ms int64, layout string) string {
	return tp.FromMillis(ms).Format(layout)
}
