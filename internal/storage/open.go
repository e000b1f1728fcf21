package storage

import (
	"context"
	"errors"
	"strings"

	logx "tempo/pkg/logx"
	"tempo/pkg/overview"
)

// Store is the persistence API used by the rest of the program.
// It also satisfies overview.RecordStore.
type Store interface {
	AppendRecord(ctx context.Context, name string, rec *overview.Record) error
	RecentRecords(ctx context.Context, name string, limit int) ([]RecordEntry, error)
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
