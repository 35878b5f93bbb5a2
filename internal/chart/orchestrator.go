package chart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"spotchart/internal/api"
	"spotchart/internal/clientlog"
	"spotchart/internal/datecode"
	"spotchart/internal/ingest"
	"spotchart/internal/metrics"
	"spotchart/internal/model"
	"spotchart/internal/overlay"
	"spotchart/internal/render"
)

// rawPrefixLen is how much of a backend body goes into diagnostics.
const rawPrefixLen = 200

// Fetcher retrieves records from the price backend.
type Fetcher interface {
	Fetch(ctx context.Context, path, date string) (api.Result, error)
}

// Alerter shows a message to the user.
type Alerter interface {
	Alert(message string)
}

// Options configures an Orchestrator. Zero values get defaults.
type Options struct {
	MovingAverageWindow int
	ShiftIntervals      int
	ResizeDebounce      time.Duration

	Diagnostics clientlog.Logger
	Alerter     Alerter
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

func (o *Options) applyDefaults() {
	if o.MovingAverageWindow <= 0 {
		o.MovingAverageWindow = 9
	}
	if o.ShiftIntervals == 0 {
		o.ShiftIntervals = model.IntervalsPerDay
	}
	if o.ResizeDebounce <= 0 {
		o.ResizeDebounce = 120 * time.Millisecond
	}
	if o.Diagnostics == nil {
		o.Diagnostics = clientlog.Discard{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Orchestrator runs the primary load and the overlay pipelines against a
// Session.
type Orchestrator struct {
	session  *Session
	fetcher  Fetcher
	opts     Options
	logger   *slog.Logger
	debounce *render.Debouncer
}

func NewOrchestrator(session *Session, fetcher Fetcher, opts Options) *Orchestrator {
	opts.applyDefaults()
	return &Orchestrator{
		session:  session,
		fetcher:  fetcher,
		opts:     opts,
		logger:   opts.Logger.With("component", "orchestrator"),
		debounce: render.NewDebouncer(opts.ResizeDebounce),
	}
}

// Session returns the session the orchestrator drives.
func (o *Orchestrator) Session() *Session {
	return o.session
}

// LoadPrimary fetches the series for the date typed as raw and installs it.
// Enabled overlays are recomputed afterwards. Failures are returned as
// *AlertError after the user has been alerted.
func (o *Orchestrator) LoadPrimary(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	code := datecode.Normalize(raw)
	gen := o.session.BeginPrimary()
	log := o.logger.With("date", code)

	res, err := o.fetcher.Fetch(ctx, model.EndpointPrimary, code)
	o.opts.Metrics.Fetch(model.EndpointPrimary, api.Reason(err))
	records := res.Records
	switch {
	case errors.Is(err, api.ErrEmptyResult):
		log.Warn("backend returned no data, using demo series", "body", api.Prefix(res.Body, rawPrefixLen))
		o.opts.Diagnostics.Log(clientlog.LevelWarn, "API liefert keine Daten (leeres Array). Verwende Demo-Daten.")
		o.opts.Metrics.Fallback("primary", "empty")
		records = nil
	case err != nil:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if o.superseded(gen, log) {
			return nil
		}
		return o.fail(log, err)
	}

	schema := ingest.DetectSchema(records)
	if len(records) > 0 {
		keys := strings.Join(records[0].Keys(), ",")
		if schema.PriceField == "" {
			log.Warn("no obvious price field", "keys", keys)
		}
		if schema.PositionField == "" {
			log.Warn("no obvious position field", "keys", keys)
		}
	}

	series := ingest.Build(records, schema)
	if err := ingest.CheckSeries(records, series); err != nil {
		if o.superseded(gen, log) {
			return nil
		}
		return o.fail(log, err)
	}
	log.Debug("built series", "intervals", series.Len(), "finite", series.FiniteCount())

	installed, err := o.session.InstallPrimary(gen, series, datecode.ChartTitle(raw, code), code)
	if err != nil {
		log.Warn("drawing chart failed", "error", err)
	}
	if !installed {
		return nil
	}
	return o.refreshActive(ctx)
}

// Reload fetches the current primary date again.
func (o *Orchestrator) Reload(ctx context.Context) error {
	_, code, ok := o.session.Primary()
	if !ok {
		code = datecode.Default
	}
	return o.LoadPrimary(ctx, code)
}

// superseded reports whether a newer primary load has started since gen.
// Failures of superseded loads are dropped without alerting.
func (o *Orchestrator) superseded(gen uint64, log *slog.Logger) bool {
	if o.session.CurrentPrimary(gen) {
		return false
	}
	log.Info("discarding failed stale primary", "generation", gen)
	o.opts.Metrics.Stale("primary")
	return true
}

func (o *Orchestrator) fail(log *slog.Logger, err error) error {
	alert := alertFor(err)
	log.Error("loading primary series failed", "error", err)
	o.opts.Diagnostics.Log(clientlog.LevelError, "Fehler beim Laden der Daten: "+err.Error())
	if o.opts.Alerter != nil {
		o.opts.Alerter.Alert(alert.Message)
	}
	return alert
}

// ToggleOverlay enables or disables an overlay. Enabling waits for the
// primary series, then fetches the overlay or derives it locally when the
// backend fails. date is the overlay's own date input where it has one.
func (o *Orchestrator) ToggleOverlay(ctx context.Context, kind model.OverlayKind, enabled bool, date string) error {
	info, ok := model.LookupOverlay(kind)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOverlay, kind)
	}
	if !enabled {
		o.session.Deactivate(kind, info.Label)
		return nil
	}
	o.session.Activate(kind, date)
	return o.runOverlay(ctx, kind, info, date)
}

// ClearOverlays disables every overlay.
func (o *Orchestrator) ClearOverlays() {
	o.session.ClearOverlays()
}

// Resize schedules a debounced renderer resize.
func (o *Orchestrator) Resize(width, height int) {
	o.debounce.Trigger(func() {
		if err := o.session.Resize(width, height); err != nil {
			o.logger.Warn("resize failed", "error", err)
		}
	})
}

// Current returns the chart state and whether a primary is loaded.
func (o *Orchestrator) Current() (model.ChartData, bool) {
	_, _, ok := o.session.Primary()
	return o.session.ChartData(), ok
}

// Close stops a pending resize.
func (o *Orchestrator) Close() {
	o.debounce.Stop()
}

func (o *Orchestrator) refreshActive(ctx context.Context) error {
	active := o.session.Active()
	if len(active) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range model.OverlayOrder {
		date, on := active[kind]
		if !on {
			continue
		}
		info := model.OverlayCatalog[kind]
		g.Go(func() error {
			return o.runOverlay(gctx, kind, info, date)
		})
	}
	return g.Wait()
}

func (o *Orchestrator) runOverlay(ctx context.Context, kind model.OverlayKind, info model.OverlayInfo, ownDate string) error {
	if err := o.session.WaitReady(ctx); err != nil {
		return err
	}
	gen := o.session.BeginOverlay(kind)
	primary, primaryCode, _ := o.session.Primary()

	code := ""
	switch info.DateSource {
	case model.DateOwn:
		code = datecode.Normalize(ownDate)
	case model.DatePrimary:
		code = primaryCode
	}

	log := o.logger.With("overlay", kind, "date", code, "generation", gen)
	diag := o.opts.Diagnostics
	diag.Log(clientlog.LevelInfo, fmt.Sprintf("%s accessed", kind))
	if code != "" {
		diag.Log(clientlog.LevelInfo, code)
	}

	values, err := o.fetchOverlay(ctx, info, code)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		why := reason(err)
		log.Warn("overlay unavailable, deriving locally", "reason", why, "fallback", info.Fallback, "error", err)
		diag.Log(clientlog.LevelError, fmt.Sprintf("%s: %v", kind, err))
		o.opts.Metrics.Fallback(string(kind), why)
		values = o.derive(info.Fallback, primary)
	}

	committed, err := o.session.CommitOverlay(kind, gen, info.Label, values, info.Color)
	if err != nil {
		return fmt.Errorf("adding %s overlay: %w", kind, err)
	}
	if committed {
		log.Debug("overlay added", "points", len(values))
	}
	return nil
}

func (o *Orchestrator) fetchOverlay(ctx context.Context, info model.OverlayInfo, code string) ([]float64, error) {
	diag := o.opts.Diagnostics
	res, err := o.fetcher.Fetch(ctx, info.Endpoint, code)
	o.opts.Metrics.Fetch(info.Endpoint, api.Reason(err))
	if len(res.Body) > 0 {
		diag.Log(clientlog.LevelInfo, "Rohantwort erhalten: "+api.Prefix(res.Body, rawPrefixLen))
	}
	if err != nil {
		return nil, err
	}
	diag.Log(clientlog.LevelInfo, fmt.Sprintf("parse successful: %d records", len(res.Records)))

	values := ingest.OverlayValues(res.Records)
	if ingest.AllNaN(values) {
		return nil, ingest.NewSchemaError(res.Records)
	}
	return values, nil
}

func (o *Orchestrator) derive(kind model.FallbackKind, primary []float64) []float64 {
	switch kind {
	case model.FallbackShift:
		return overlay.CircularShift(primary, o.opts.ShiftIntervals)
	default:
		return overlay.MovingAverage(primary, o.opts.MovingAverageWindow)
	}
}
