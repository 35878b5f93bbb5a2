// Command chart-snapshot loads one day of spot prices with the requested
// overlays and writes the chart to a file.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"spotchart/internal/api"
	"spotchart/internal/chart"
	"spotchart/internal/config"
	"spotchart/internal/ingest"
	"spotchart/internal/logging"
	"spotchart/internal/model"
	"spotchart/internal/render"
)

func main() {
	configPath := flag.String("config", "spotchart.yaml", "path to the YAML config file")
	upstream := flag.String("upstream", "", "price backend base URL (overrides config)")
	input := flag.String("input", "", "read the primary series from this JSON file instead of the backend")
	date := flag.String("date", "", "chart date, e.g. 2025-10-01 or 20251001")
	overlaysFlag := flag.String("overlays", "", "comma-separated overlays, kind or kind=date (e.g. lastyear,comparison=2025-09-30)")
	out := flag.String("out", "chart.png", "output file; the extension selects png, html, xlsx or json")
	width := flag.Int("width", render.DefaultWidth, "image width")
	height := flag.Int("height", render.DefaultHeight, "image height")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	_ = godotenv.Load(".env")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Loading config: %v", err)
	}
	if *upstream != "" {
		cfg.Upstream.BaseURL = *upstream
	}

	format, err := formatFor(*out)
	if err != nil {
		log.Fatal(err)
	}
	requests, err := parseOverlays(*overlaysFlag)
	if err != nil {
		log.Fatalf("Invalid overlays %q: %v", *overlaysFlag, err)
	}

	logger := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	var fetcher chart.Fetcher = api.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, logger)
	if *input != "" {
		fetcher = &fileFetcher{path: *input, parser: &ingest.JSONParser{}}
	}

	snapshot := render.NewSnapshot()
	orch := chart.NewOrchestrator(chart.NewSession(snapshot, nil, logger), fetcher, chart.Options{
		MovingAverageWindow: cfg.Chart.MovingAverageWindow,
		ShiftIntervals:      cfg.Chart.ShiftIntervals,
		Logger:              logger,
	})
	defer orch.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	day := *date
	if day == "" {
		day = cfg.Chart.InitialDate
	}
	if err := orch.LoadPrimary(ctx, day); err != nil {
		log.Fatalf("Loading chart: %v", err)
	}
	for _, req := range requests {
		if err := orch.ToggleOverlay(ctx, req.kind, true, req.date); err != nil {
			log.Fatalf("Overlay %s: %v", req.kind, err)
		}
	}

	data, _ := orch.Current()
	var buf bytes.Buffer
	if err := write(&buf, format, data, *width, *height); err != nil {
		log.Fatalf("Rendering %s: %v", format, err)
	}
	if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
		log.Fatalf("Writing %s: %v", *out, err)
	}

	fmt.Printf("%s: %d datasets, %d intervals -> %s\n", data.Title, len(data.Datasets), len(data.Labels), *out)
}

type overlayRequest struct {
	kind model.OverlayKind
	date string
}

// parseOverlays splits "kind[=date],..." into requests in the given order.
func parseOverlays(s string) ([]overlayRequest, error) {
	var reqs []overlayRequest
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kind, date, _ := strings.Cut(part, "=")
		req := overlayRequest{kind: model.OverlayKind(strings.TrimSpace(kind)), date: strings.TrimSpace(date)}
		if _, ok := model.LookupOverlay(req.kind); !ok {
			return nil, fmt.Errorf("unknown overlay %q", kind)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func formatFor(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png", ".html", ".xlsx", ".json":
		return ext[1:], nil
	default:
		return "", fmt.Errorf("unsupported output extension %q", ext)
	}
}

func write(w io.Writer, format string, data model.ChartData, width, height int) error {
	switch format {
	case "png":
		return render.PNG(w, data, width, height)
	case "html":
		return render.HTML(w, data, width, height)
	case "xlsx":
		return render.XLSX(w, data)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// fileFetcher serves the primary series from a local JSON file. Overlay
// endpoints are unavailable, so overlays fall back to derived series.
type fileFetcher struct {
	path   string
	parser ingest.Parser
}

func (f *fileFetcher) Fetch(ctx context.Context, path, date string) (api.Result, error) {
	res := api.Result{URL: f.path}
	if path != model.EndpointPrimary {
		return res, &api.NetworkError{URL: path, Err: fmt.Errorf("no backend in file mode")}
	}

	file, err := os.Open(f.path)
	if err != nil {
		return res, &api.NetworkError{URL: f.path, Err: err}
	}
	defer file.Close()

	payload, err := f.parser.Parse(file)
	if err != nil {
		return res, &api.ParseError{URL: f.path, Err: err}
	}
	if payload.ErrorMessage != "" {
		return res, &api.BackendError{Message: payload.ErrorMessage}
	}
	if !payload.IsArray || len(payload.Records) == 0 {
		return res, fmt.Errorf("%s: %w", f.path, api.ErrEmptyResult)
	}
	res.Status = 200
	res.Records = payload.Records
	return res, nil
}
