// Package app wires configuration, logging, storage, profiling and the
// overview coordinator into one runnable unit.
package app

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"tempo/internal/config"
	"tempo/internal/eventbus"
	pprofsrv "tempo/internal/observability/pprof"
	"tempo/internal/storage"
	"tempo/pkg/clock"
	logx "tempo/pkg/logx"
	"tempo/pkg/overview"
	"tempo/pkg/profile"
	"tempo/pkg/resolve"
)

type App struct {
	cfgm *config.ConfigManager

	mu  sync.Mutex
	cfg *config.Config

	logs *logx.Service
	log  logx.Logger
	bus  eventbus.Bus
	rt   *resolve.Runtime

	store storage.Store
	pprof *pprofsrv.Service
	env   *profile.Environment
}

// New loads and validates the config at cfgPath and brings up the ambient
// services (logging, storage, pprof). The scheduling machinery is created
// per run.
func New(cfgPath string) (*App, error) {
	cfgm := config.NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	logs, log := logx.New(cfg.LogxConfig())
	cfgm.SetLogger(log.With(logx.String("comp", "config")))
	cfgm.SetValidator(func(ctx context.Context, c *config.Config) error {
		return c.Validate()
	})

	bus := eventbus.New()
	rt := resolve.NewRuntime(
		resolve.WithRuntimeLogger(log.With(logx.String("comp", "runtime"))),
		resolve.WithRuntimeBus(bus),
	)

	a := &App{
		cfgm: cfgm,
		cfg:  cfg,
		logs: logs,
		log:  log,
		bus:  bus,
		rt:   rt,
		env:  profile.NewEnvironment(),
	}

	if cfg.Storage != nil {
		busy, _ := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
		st, err := storage.Open(storage.Config{
			Driver:      cfg.Storage.Driver,
			Path:        cfg.Storage.Path,
			BusyTimeout: busy,
			HistorySize: cfg.Storage.HistorySize,
		}, log.With(logx.String("comp", "storage")))
		if err != nil {
			logs.Close()
			return nil, fmt.Errorf("open storage: %w", err)
		}
		a.store = st
	}

	a.pprof = pprofsrv.New(pprofConfig(cfg.Pprof), log.With(logx.String("comp", "pprof")), rt)
	if a.pprof.Enabled() {
		_ = a.pprof.Start()
	}

	return a, nil
}

func pprofConfig(c config.PprofConfig) pprofsrv.Config {
	rd, _ := config.ParseDurationField("pprof.read_timeout", c.ReadTimeout)
	wr, _ := config.ParseDurationField("pprof.write_timeout", c.WriteTimeout)
	idle, _ := config.ParseDurationField("pprof.idle_timeout", c.IdleTimeout)
	return pprofsrv.Config{
		Enabled:              c.Enabled,
		Addr:                 c.Addr,
		Prefix:               c.Prefix,
		Token:                c.Token,
		AllowInsecure:        c.AllowInsecure,
		ReadTimeout:          rd,
		WriteTimeout:         wr,
		IdleTimeout:          idle,
		MutexProfileFraction: c.MutexProfileFraction,
		BlockProfileRate:     c.BlockProfileRate,
		MemProfileRate:       c.MemProfileRate,
	}
}

// Watch hot-reloads config changes until ctx is cancelled: logging is
// re-applied live, pprof restarts when its section changes.
func (a *App) Watch(ctx context.Context) {
	updates := a.cfgm.Subscribe(4)
	a.rt.Go("config.watch", func() { _ = a.cfgm.Watch(ctx) })
	a.rt.Go("config.apply", func() {
		defer a.cfgm.Unsubscribe(updates)
		for {
			select {
			case <-ctx.Done():
				return
			case cfg, ok := <-updates:
				if !ok {
					return
				}
				changed, attrs := config.SummarizeConfigChange(a.config(), cfg)
				if len(changed) == 0 {
					continue
				}
				a.log.Info("config reloaded", append(attrs, logx.Any("sections", changed))...)
				a.logs.Apply(cfg.LogxConfig())
				a.pprof.Reconfigure(ctx, pprofConfig(cfg.Pprof))
				a.mu.Lock()
				a.cfg = cfg
				a.mu.Unlock()
			}
		}
	})
}

// Run executes the configured jobs once: register everything on a fresh
// clock, let it fire, wait and tear down, then write the timing reports to w.
func (a *App) config() *config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

func (a *App) Run(ctx context.Context, w io.Writer, color bool) (overview.Summary, error) {
	cfg := a.config()
	interval, quantum, err := cfg.Clock.Resolve()
	if err != nil {
		return overview.Summary{}, err
	}
	wait, teardown, err := cfg.Overview.Budgets()
	if err != nil {
		return overview.Summary{}, err
	}

	clk := clock.New(
		clock.WithInterval(interval),
		clock.WithQuantum(quantum),
		clock.WithClockLogger(a.log.With(logx.String("comp", "clock"))),
		clock.WithClockBus(a.bus),
		clock.WithClockRuntime(a.rt),
	)
	opts := []overview.OverviewOption{
		overview.WithClock(clk),
		overview.WithOverviewRuntime(a.rt),
		overview.WithOverviewLogger(a.log.With(logx.String("comp", "overview"))),
		overview.WithOverviewBus(a.bus),
	}
	if a.store != nil {
		opts = append(opts, overview.WithStore(a.store))
	}
	ov := overview.New(opts...)

	res := ov.Scan(func(o *overview.Overview) {
		for i := range cfg.Overview.Jobs {
			jc := cfg.Overview.Jobs[i]
			job := a.makeJob(jc)
			if jc.Spec != "" {
				if _, err := o.LoadSpec(jc.Name, jc.Spec, job); err != nil {
					a.log.Warn("job spec rejected", logx.String("name", jc.Name), logx.Err(err))
				}
				continue
			}
			o.Load(jc.Name, jc.At, job)
		}
	})

	summary := res.Conclude(wait, teardown)

	fmt.Fprintln(w, profile.TotalLog(a.env, 10, color))
	fmt.Fprintln(w)
	fmt.Fprintln(w, profile.OverviewLog(a.env, color))
	return summary, nil
}

// makeJob turns a declarative job entry into a runnable, instrumented job.
func (a *App) makeJob(jc config.JobConfig) overview.Job {
	sleep, _ := jc.SleepDuration()
	pm := a.env.Track(jc.Name)
	return func(ctx context.Context) (any, error) {
		stop := pm.Begin()
		if sleep > 0 {
			t := time.NewTimer(sleep)
			defer t.Stop()
			select {
			case <-ctx.Done():
				stop(ctx.Err())
				return nil, ctx.Err()
			case <-t.C:
			}
		}
		stop(nil)
		return jc.Name, nil
	}
}

// History writes the stored record history as a table.
func (a *App) History(ctx context.Context, w io.Writer, name string, limit int, color bool) error {
	if a.store == nil {
		return storage.ErrDisabled
	}
	entries, err := a.store.RecentRecords(ctx, name, limit)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Name,
			e.At.Format(time.RFC3339),
			fmt.Sprintf("%.3f", e.Scheduled),
			fmt.Sprintf("%.3f", e.Skew()),
			fmt.Sprintf("%.6f", e.Duration()),
			e.Value,
			e.Error,
		})
	}
	titles := []string{"Name", "At", "Scheduled", "Skew", "Duration", "Value", "Error"}
	fmt.Fprintln(w, profile.RenderTable(titles, rows, " | ", color))
	if len(entries) > 0 {
		fmt.Fprintln(w, strconv.Itoa(len(entries))+" record(s)")
	}
	return nil
}

// Close releases everything New brought up, joining stragglers briefly.
func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	a.pprof.Stop(ctx)
	a.rt.CleanupAll(2 * time.Second)
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.logs.Close()
}

// Log exposes the root logger for the CLI layer.
func (a *App) Log() logx.Logger { return a.log }
