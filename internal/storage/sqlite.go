package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	logx "tempo/pkg/logx"
	"tempo/pkg/overview"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db      *sql.DB
	log     logx.Logger
	history int

	opCount    atomic.Uint64
	pruneEvery uint64
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	history := cfg.HistorySize
	if history <= 0 {
		history = 200
	}
	st := &sqliteStore{db: db, log: log, history: history, pruneEvery: 50}

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) AppendRecord(ctx context.Context, name string, rec *overview.Record) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if rec == nil {
		return nil
	}
	var errStr any
	if rec.Err != nil {
		errStr = rec.Err.Error()
	}
	var valStr any
	if rec.Value != nil {
		valStr = fmt.Sprintf("%v", rec.Value)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records(at, name, scheduled_s, start_s, end_s, value, err)
		 VALUES(?,?,?,?,?,?,?)`,
		time.Now().Format(time.RFC3339Nano), name, rec.Scheduled, rec.Start, rec.End, valStr, errStr,
	)
	if err == nil && s.opCount.Add(1)%s.pruneEvery == 0 {
		pctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		_ = s.prune(pctx)
		cancel()
	}
	return err
}

func (s *sqliteStore) RecentRecords(ctx context.Context, name string, limit int) ([]RecordEntry, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	if limit <= 0 || limit > s.history {
		limit = s.history
	}

	q := `SELECT id, at, name, scheduled_s, start_s, end_s, COALESCE(value,''), COALESCE(err,'')
	      FROM records`
	args := []any{}
	if strings.TrimSpace(name) != "" {
		q += ` WHERE name = ?`
		args = append(args, name)
	}
	q += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecordEntry
	for rows.Next() {
		var e RecordEntry
		var at string
		if err := rows.Scan(&e.ID, &at, &e.Name, &e.Scheduled, &e.Start, &e.End, &e.Value, &e.Error); err != nil {
			return nil, err
		}
		if t, perr := time.Parse(time.RFC3339Nano, at); perr == nil {
			e.At = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// prune keeps only the newest history rows.
func (s *sqliteStore) prune(ctx context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE id NOT IN (SELECT id FROM records ORDER BY id DESC LIMIT ?)`,
		s.history,
	)
	if err != nil && !s.log.IsZero() {
		s.log.Warn("record prune failed", logx.Err(err))
	}
	return err
}
