package config

type Config struct {
	Logging LoggingConfig `json:"logging"`

	// Clock controls the tick scheduler.
	Clock ClockConfig `json:"clock"`

	// Overview controls job registration and wait/teardown budgets.
	Overview OverviewConfig `json:"overview"`

	// Storage enables the optional record history. Nil means disabled.
	Storage *StorageConfig `json:"storage,omitempty"`

	Pprof PprofConfig `json:"pprof,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// ClockConfig controls the polling scheduler.
//
// Defaults (when fields are omitted/zero):
//   - interval_seconds: 1.0
//   - quantum: "100ms"
type ClockConfig struct {
	IntervalSeconds float64 `json:"interval_seconds,omitempty"`
	// Quantum is a Go duration string (e.g. "100ms").
	Quantum string `json:"quantum,omitempty"`
}

// OverviewConfig declares the jobs to register and the budgets used when
// waiting for and tearing down a run.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
type OverviewConfig struct {
	// WaitTimeout is the per-job wait budget. Default "30s".
	WaitTimeout string `json:"wait_timeout,omitempty"`
	// TeardownTimeout bounds clock join + runtime cleanup. Default "5s".
	TeardownTimeout string `json:"teardown_timeout,omitempty"`

	Jobs []JobConfig `json:"jobs,omitempty"`
}

// JobConfig is one declarative registration.
//
// Exactly one of At or Spec should be set. At is seconds from clock start;
// -1 registers the job without arming it. Spec is a cron expression
// ("*/5 * * * *", "@hourly", "@every 30s") and takes precedence over At.
type JobConfig struct {
	Name string  `json:"name"`
	At   float64 `json:"at,omitempty"`
	Spec string  `json:"spec,omitempty"`

	// Sleep makes the job body block for this long before returning,
	// for exercising wait budgets. Go duration string.
	Sleep string `json:"sleep,omitempty"`
}

// StorageConfig controls the optional record history.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./tempo.db" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
	// HistorySize caps how many records RecentRecords returns. Default 200.
	HistorySize int `json:"history_size,omitempty"`
}

// PprofConfig controls the optional pprof HTTP server.
//
// Security note:
//   - Prefer binding to localhost (e.g. "127.0.0.1:6060").
//   - If you bind to a non-loopback address, set a token or explicitly allow_insecure.
type PprofConfig struct {
	Enabled       bool   `json:"enabled"`
	Addr          string `json:"addr,omitempty"`   // default: "127.0.0.1:6060"
	Prefix        string `json:"prefix,omitempty"` // default: "/debug/pprof/"
	Token         string `json:"token,omitempty"`  // optional bearer token (do not log)
	AllowInsecure bool   `json:"allow_insecure,omitempty"`

	// Server timeouts (Go duration strings). WriteTimeout defaults to 0 (disabled)
	// so /profile (which can take 30s+) works reliably.
	ReadTimeout  string `json:"read_timeout,omitempty"`
	WriteTimeout string `json:"write_timeout,omitempty"`
	IdleTimeout  string `json:"idle_timeout,omitempty"`

	// Runtime profiling rates. Leave 0 to keep Go defaults.
	MutexProfileFraction int `json:"mutex_profile_fraction,omitempty"`
	BlockProfileRate     int `json:"block_profile_rate,omitempty"`
	MemProfileRate       int `json:"mem_profile_rate,omitempty"`
}
