package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/elocution/internal/assess"
	"github.com/MrWong99/elocution/internal/config"
	"github.com/MrWong99/elocution/internal/observe"
	"github.com/MrWong99/elocution/internal/server"
)

// reload is one event from the config watcher: either a new valid config or
// the error that kept the previous one in place.
type reload struct {
	old, new *config.Config
	err      error
}

// reloadQueue hands watcher events to the reload loop. Sends give up once
// the queue is closed, so the watcher never blocks on a loop that has exited.
type reloadQueue struct {
	events    chan reload
	closed    chan struct{}
	closeOnce sync.Once
}

func newReloadQueue() *reloadQueue {
	return &reloadQueue{
		events: make(chan reload, 1),
		closed: make(chan struct{}),
	}
}

// send delivers r and reports whether it was queued.
func (q *reloadQueue) send(ctx context.Context, r reload) bool {
	select {
	case q.events <- r:
		return true
	case <-ctx.Done():
	case <-q.closed:
	}
	return false
}

func (q *reloadQueue) close() {
	q.closeOnce.Do(func() { close(q.closed) })
}

func runServe(ctx context.Context, args []string, stderr io.Writer) int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to the YAML configuration file (built-in defaults when empty)")
	listenAddr := fs.String("listen", "", "override server.listen_addr")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	// ── Load configuration ────────────────────────────────────────────────────
	reloads := newReloadQueue()
	defer reloads.close()

	cfg := &config.Config{}
	if *configPath != "" {
		w, err := config.NewWatcher(*configPath,
			func(old, new *config.Config) { reloads.send(ctx, reload{old: old, new: new}) },
			config.WithErrorHandler(func(err error) { reloads.send(ctx, reload{err: err}) }),
		)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(stderr, "elocution: config file %q not found; copy configs/example.yaml to get started\n", *configPath)
			} else {
				fmt.Fprintf(stderr, "elocution: %v\n", err)
			}
			return 1
		}
		defer w.Stop()
		cfg = w.Current()
	}
	settings := cfg.WithDefaults()
	if *listenAddr != "" {
		settings.Server.ListenAddr = *listenAddr
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	level := new(slog.LevelVar)
	level.Set(slogLevel(settings.Server.LogLevel))
	slog.SetDefault(newLogger(stderr, level))

	slog.Info("elocution starting",
		"config", *configPath,
		"listen_addr", settings.Server.ListenAddr,
		"log_level", settings.Server.LogLevel,
	)

	// ── Telemetry ─────────────────────────────────────────────────────────────
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{Registerer: registry})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Engine and API ────────────────────────────────────────────────────────
	eng, err := config.NewEngine(cfg, assess.WithMetrics(metrics))
	if err != nil {
		slog.Error("failed to build assessment engine", "err", err)
		return 1
	}
	slog.Info("assessment engine ready", "languages", eng.Languages())

	srv := server.New(eng,
		server.WithMetrics(metrics),
		server.WithGatherer(registry),
		server.WithMaxBodyBytes(settings.Server.MaxBodyBytes),
		server.WithRateLimit(settings.Server.RateLimit, settings.Server.RateBurst),
	)
	httpSrv := &http.Server{
		Addr:              settings.Server.ListenAddr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ── Run ───────────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if tls := settings.Server.TLS; tls != nil {
			err = httpSrv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			err = httpSrv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		defer reloads.close()
		for {
			select {
			case <-gctx.Done():
				return nil
			case r := <-reloads.events:
				applyReload(gctx, r, srv, level, metrics)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, stopping…")
		srv.SetDraining()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.Server.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	slog.Info("server ready; press Ctrl+C to shut down", "addr", settings.Server.ListenAddr)

	if err := g.Wait(); err != nil {
		slog.Error("server error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// applyReload applies a hot-reloaded config: the log level is updated in
// place and the engine is rebuilt and swapped when its inputs changed.
// Server settings only take effect after a restart.
func applyReload(ctx context.Context, r reload, srv *server.Server, level *slog.LevelVar, metrics *observe.Metrics) {
	if r.err != nil {
		metrics.RecordConfigReload(ctx, observe.StatusError)
		slog.Error("config reload rejected; keeping previous config", "err", r.err)
		return
	}

	d := config.Diff(r.old, r.new)
	if d.LogLevelChanged {
		level.Set(slogLevel(d.NewLogLevel))
		slog.Info("log level changed", "level", level.Level())
	}
	for _, field := range d.RestartRequired {
		slog.Warn("config change takes effect after restart", "field", field)
	}
	if d.NeedsRebuild() {
		eng, err := config.NewEngine(r.new, assess.WithMetrics(metrics))
		if err != nil {
			metrics.RecordConfigReload(ctx, observe.StatusError)
			slog.Error("config reload failed to build engine; keeping previous engine", "err", err)
			return
		}
		srv.SetEngine(eng)
		slog.Info("assessment engine rebuilt",
			"engine_changed", d.EngineChanged,
			"languages_changed", len(d.LanguageChanges),
			"confusables_changed", d.ConfusablesChanged,
		)
	}
	metrics.RecordConfigReload(ctx, observe.StatusOK)
}
