// Package manager owns the live catalog and swaps it atomically on reload.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/gohye/catalogbot/catalogbot/aliases"
	"github.com/gohye/catalogbot/catalogbot/assets"
	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/config"
	"github.com/gohye/catalogbot/catalogbot/logger"
	"github.com/gohye/catalogbot/catalogbot/masters"
	"github.com/gohye/catalogbot/catalogbot/metrics"
	"github.com/gohye/catalogbot/catalogbot/registries"
)

var ErrNotLoaded = errors.New("catalog is not loaded yet")

// Catalog is one immutable generation of registries. Readers keep using the generation they
// obtained even after a reload replaces it.
type Catalog struct {
	*registries.Set
	Snapshots map[catalog.Server]*masters.Snapshot
	Servers   []catalog.Server
	LoadedAt  time.Time
}

type Options struct {
	Servers []catalog.Server
	// AliasesPath is re-read on every reload. Empty uses the embedded tables.
	AliasesPath string
	URLs        *assets.URLResolver
}

type Manager struct {
	source assets.Source
	opts   Options

	current  atomic.Pointer[Catalog]
	reloadMu sync.Mutex
	cron     *cron.Cron
}

func New(source assets.Source, opts Options) *Manager {
	return &Manager{
		source: source,
		opts:   opts,
	}
}

// Current returns the live catalog.
func (m *Manager) Current() (*Catalog, error) {
	c := m.current.Load()
	if c == nil {
		return nil, ErrNotLoaded
	}
	return c, nil
}

func (m *Manager) loadAliases() (*aliases.Tables, error) {
	if m.opts.AliasesPath == "" {
		return aliases.Default()
	}
	return aliases.Load(m.opts.AliasesPath)
}

func (m *Manager) loadSnapshots(ctx context.Context) (map[catalog.Server]*masters.Snapshot, error) {
	loaded := make([]*masters.Snapshot, len(m.opts.Servers))
	g, ctx := errgroup.WithContext(ctx)
	for i, server := range m.opts.Servers {
		g.Go(func() error {
			start := time.Now()
			snapshot, err := m.source.Load(ctx, server)
			if err != nil {
				return fmt.Errorf("failed to load %s from %s: %w", server, m.source.Name(), err)
			}
			slog.Debug("Server snapshot loaded",
				slog.String("type", "sys"),
				slog.String("server", string(server)),
				slog.Any("records", snapshot.Counts()),
				slog.Duration("took", time.Since(start)))
			loaded[i] = snapshot
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshots := make(map[catalog.Server]*masters.Snapshot, len(loaded))
	for i, server := range m.opts.Servers {
		snapshots[server] = loaded[i]
	}
	return snapshots, nil
}

// Reload builds a new catalog from the source and publishes it. On any failure the previous
// catalog stays live and the error is returned.
func (m *Manager) Reload(ctx context.Context) (*Catalog, error) {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	start := time.Now()
	c, err := m.build(ctx)
	metrics.ReloadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Reloads.WithLabelValues("failed").Inc()
		slog.Error("Catalog reload failed",
			slog.String("type", "sys"),
			slog.String("source", m.source.Name()),
			slog.Any("error", err),
			slog.Duration("took", time.Since(start)))
		return nil, err
	}

	m.current.Store(c)
	if m.opts.URLs != nil {
		m.opts.URLs.Purge()
	}
	metrics.Reloads.WithLabelValues("success").Inc()
	for _, r := range c.All() {
		for _, server := range c.Servers {
			metrics.Entities.WithLabelValues(r.Kind(), string(server)).Set(float64(r.Len(server)))
		}
	}

	logger.LogSystem("Catalog reloaded",
		slog.String("source", m.source.Name()),
		slog.Int("servers", len(c.Servers)),
		slog.Duration("took", time.Since(start)))
	return c, nil
}

func (m *Manager) build(ctx context.Context) (*Catalog, error) {
	if len(m.opts.Servers) == 0 {
		return nil, errors.New("no servers configured")
	}
	tables, err := m.loadAliases()
	if err != nil {
		return nil, fmt.Errorf("failed to load aliases: %w", err)
	}
	snapshots, err := m.loadSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	set, err := registries.Build(&registries.Env{
		Snapshots: snapshots,
		Aliases:   tables,
		URLs:      m.opts.URLs,
	})
	if err != nil {
		return nil, err
	}
	return &Catalog{
		Set:       set,
		Snapshots: snapshots,
		Servers:   append([]catalog.Server(nil), m.opts.Servers...),
		LoadedAt:  time.Now(),
	}, nil
}

// Schedule reloads the catalog on the cron expression until Stop is called.
func (m *Manager) Schedule(expr string, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	_, err := c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.ReloadTimeout)
		defer cancel()
		// Failures are logged by Reload; the old catalog keeps serving.
		_, _ = m.Reload(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid reload schedule %q: %w", expr, err)
	}
	m.cron = c
	c.Start()
	slog.Info("Catalog reload scheduled",
		slog.String("type", "sys"),
		slog.String("schedule", expr))
	return nil
}

// Stop halts scheduled reloads and waits for a running one to finish.
func (m *Manager) Stop() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
}
