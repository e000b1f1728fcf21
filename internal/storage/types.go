package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // 0 means default
	// HistorySize caps the table; older rows are pruned opportunistically.
	// 0 means the default of 200.
	HistorySize int
}

// RecordEntry is one persisted firing.
// Clock readings are seconds; keep the schema compact and stable.
type RecordEntry struct {
	ID        int64
	At        time.Time
	Name      string
	Scheduled float64
	Start     float64
	End       float64
	Value     string
	Error     string
}

// Skew is how late the firing started relative to its scheduled second.
func (e RecordEntry) Skew() float64 { return e.Start - e.Scheduled }

// Duration is how long the job ran, in seconds.
func (e RecordEntry) Duration() float64 { return e.End - e.Start }
