package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spotchart/internal/api"
	"spotchart/internal/chart"
	"spotchart/internal/clientlog"
	"spotchart/internal/config"
	"spotchart/internal/datecode"
	"spotchart/internal/httpapi"
	"spotchart/internal/logging"
	"spotchart/internal/metrics"
	"spotchart/internal/render"
	"spotchart/internal/scheduler"
	"spotchart/internal/ws"
)

func main() {
	configPath := flag.String("config", "spotchart.yaml", "path to the YAML config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	webDir := flag.String("web-dir", "", "directory with the chart frontend (overrides config)")
	upstream := flag.String("upstream", "", "price backend base URL (overrides config)")
	date := flag.String("date", "", `initial chart date, "today" for the current day (overrides config)`)
	flag.Parse()

	_ = godotenv.Load(".env")

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	applyOverrides(cfg, overrides{addr: *addr, webDir: *webDir, upstream: *upstream, date: *date})

	logger := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

type overrides struct {
	addr, webDir, upstream, date string
}

// applyOverrides copies non-empty flag values over the loaded config.
func applyOverrides(cfg *config.Config, o overrides) {
	if o.addr != "" {
		cfg.Server.Addr = o.addr
	}
	if o.webDir != "" {
		cfg.Server.WebDir = o.webDir
	}
	if o.upstream != "" {
		cfg.Upstream.BaseURL = o.upstream
	}
	if o.date != "" {
		cfg.Chart.InitialDate = o.date
	}
}

// initialDate resolves the configured start date.
func initialDate(configured string) string {
	switch strings.ToLower(strings.TrimSpace(configured)) {
	case "":
		return datecode.Default
	case "today":
		return datecode.Today()
	default:
		return configured
	}
}

// app is the wired gateway.
type app struct {
	router    http.Handler
	orch      *chart.Orchestrator
	scheduler *scheduler.Scheduler
	sink      *clientlog.Sink
	hub       *ws.Hub
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	m := metrics.New(nil)

	hub := ws.NewHub(logger)
	bridge := ws.NewBridge(hub)
	snapshot := render.NewSnapshot()
	session := chart.NewSession(render.Multi{snapshot, bridge}, m, logger)

	sink := clientlog.NewSink(cfg.ClientLog.URL, cfg.ClientLog.RatePerSecond, cfg.ClientLog.Burst, logger)
	client := api.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, logger)

	orch := chart.NewOrchestrator(session, client, chart.Options{
		MovingAverageWindow: cfg.Chart.MovingAverageWindow,
		ShiftIntervals:      cfg.Chart.ShiftIntervals,
		ResizeDebounce:      cfg.Chart.ResizeDebounce,
		Diagnostics:         sink,
		Alerter:             bridge,
		Metrics:             m,
		Logger:              logger,
	})

	// A pipeline is a primary fetch followed by the overlay fetches
	pipelineTimeout := 2 * cfg.Upstream.Timeout

	sched := scheduler.NewScheduler(ctx, orch, pipelineTimeout, logger)
	if _, err := sched.Register(cfg.Schedule.ReloadCron); err != nil {
		return nil, err
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Chart:    orch,
		Viewport: snapshot,
		Metrics:  m,
		WS:       ws.NewHandler(ctx, hub, orch, pipelineTimeout),
		WebDir:   cfg.Server.WebDir,
		Logger:   logger,
	})

	return &app{router: router, orch: orch, scheduler: sched, sink: sink, hub: hub}, nil
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.sink.Wait()
	defer a.orch.Close()

	a.scheduler.Start()
	defer a.scheduler.Stop()

	date := initialDate(cfg.Chart.InitialDate)
	go func() {
		loadCtx, cancel := context.WithTimeout(ctx, 2*cfg.Upstream.Timeout)
		defer cancel()
		if err := a.orch.LoadPrimary(loadCtx, date); err != nil {
			logger.Warn("initial chart load failed", "date", date, "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Server.Addr, "upstream", cfg.Upstream.BaseURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening on %s: %w", cfg.Server.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
