package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/ditagen/internal/audit"
	"github.com/dgallion1/ditagen/internal/config"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

const outline = `# User Guide

1. [Introduction](intro.md)
2. Guide
    1. [Layers](guide/layers.md)
    2. [Gone](gone.md)
3. [Upstream](https://example.com/up)
`

// newCorpus writes a small corpus and returns a config pointing at it.
func newCorpus(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "md")
	files := map[string]string{
		"toc.md":          outline,
		"intro.md":        "# Introduction\n\nWelcome.\n",
		"guide/layers.md": "# Layers\n\nBack to [the start](../intro.html#top).\n",
	}
	for rel, body := range files {
		p := filepath.Join(src, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return config.Config{
		SourceDir:    src,
		OutputDir:    filepath.Join(root, "dita"),
		TOCFile:      "toc.md",
		MapFile:      "userguide.ditamap",
		Workers:      2,
		WriteReport:  true,
		WriteLog:     true,
		MaxQueueSize: 4,
		JobTTL:       time.Hour,
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestRun_WritesOutputs(t *testing.T) {
	cfg := newCorpus(t)
	r := &Runner{Config: cfg, Log: discard}

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Title != "User Guide" {
		t.Errorf("expected title %q, got %q", "User Guide", res.Title)
	}
	if res.Topics != 3 {
		t.Errorf("expected 3 topics, got %d", res.Topics)
	}
	if res.Placeholders != 1 {
		t.Errorf("expected 1 placeholder, got %d", res.Placeholders)
	}

	for _, name := range []string{"topic_1.dita", "topic_2.dita", "topic_3.dita", "userguide.ditamap", ReportFile, LogFile} {
		if _, err := os.Stat(filepath.Join(cfg.OutputDir, name)); err != nil {
			t.Errorf("expected %s to be written: %v", name, err)
		}
	}

	layers := readFile(t, filepath.Join(cfg.OutputDir, "topic_2.dita"))
	if !strings.Contains(layers, `<xref href="topic_1.dita" format="dita">`) {
		t.Errorf("expected link to intro to resolve, got:\n%s", layers)
	}
	gone := readFile(t, filepath.Join(cfg.OutputDir, "topic_3.dita"))
	if !strings.Contains(gone, "Missing file:") {
		t.Errorf("expected placeholder topic, got:\n%s", gone)
	}

	m := readFile(t, res.MapPath)
	for _, want := range []string{`<title>User Guide</title>`, `href="topic_1.dita"`, `navtitle="Guide"`, `href="topic_3.dita"`} {
		if !strings.Contains(m, want) {
			t.Errorf("expected map to contain %s, got:\n%s", want, m)
		}
	}
	if strings.Contains(m, "example.com") {
		t.Errorf("expected external entry to be left out of the map")
	}

	kinds := make([]audit.Kind, len(res.Events))
	for i, e := range res.Events {
		kinds[i] = e.Kind
	}
	if !slices.Contains(kinds, audit.SourceMissing) || !slices.Contains(kinds, audit.ExternalEntry) {
		t.Errorf("expected source_missing and external_entry events, got %v", kinds)
	}

	report := readFile(t, res.ReportPath)
	if !strings.Contains(report, "# Conversion Report") {
		t.Errorf("unexpected report:\n%s", report)
	}
	if log := readFile(t, filepath.Join(cfg.OutputDir, LogFile)); !strings.Contains(log, "starting conversion") {
		t.Errorf("expected run log to record the run, got:\n%s", log)
	}
}

func TestRun_RemovesStaleOutputs(t *testing.T) {
	cfg := newCorpus(t)
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"topic_9.dita", "old.ditamap", "diagram.png"} {
		if err := os.WriteFile(filepath.Join(cfg.OutputDir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := (&Runner{Config: cfg, Log: discard}).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"topic_9.dita", "old.ditamap"} {
		if _, err := os.Stat(filepath.Join(cfg.OutputDir, name)); !os.IsNotExist(err) {
			t.Errorf("expected stale %s to be removed", name)
		}
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "diagram.png")); err != nil {
		t.Errorf("expected unrelated file to be kept: %v", err)
	}
}

func TestRun_FatalInputsWriteNothing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"missing outline", func(c *config.Config) { c.TOCFile = "nope.md" }, config.ErrOutlineMissing},
		{"missing source", func(c *config.Config) { c.SourceDir = filepath.Join(c.SourceDir, "nope") }, config.ErrSourceMissing},
		{"bad workers", func(c *config.Config) { c.Workers = 0 }, config.ErrInvalidWorkers},
		{"bad site", func(c *config.Config) { c.SiteURL = "not a url" }, config.ErrInvalidSiteURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newCorpus(t)
			tt.mutate(&cfg)

			_, err := (&Runner{Config: cfg, Log: discard}).Run(context.Background())
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !config.IsFatal(err) {
				t.Errorf("expected fatal error, got %v", err)
			}
			if _, err := os.Stat(cfg.OutputDir); !os.IsNotExist(err) {
				t.Errorf("expected no output directory, stat returned %v", err)
			}
		})
	}
}

func TestRun_Hooks(t *testing.T) {
	cfg := newCorpus(t)
	cfg.WriteReport = false

	var mu sync.Mutex
	var stages []Stage
	maxWritten := 0
	r := &Runner{Config: cfg, Log: discard, Hooks: Hooks{
		Stage: func(s Stage) { stages = append(stages, s) },
		Topic: func(written, total int) {
			mu.Lock()
			defer mu.Unlock()
			if total != 3 {
				t.Errorf("expected total 3, got %d", total)
			}
			maxWritten = max(maxWritten, written)
		},
	}}
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Stage{StageValidate, StageOutline, StageIndex, StageTranslate, StageMap}
	if !slices.Equal(stages, want) {
		t.Errorf("expected stages %v, got %v", want, stages)
	}
	if maxWritten != 3 {
		t.Errorf("expected 3 topics written, got %d", maxWritten)
	}
}

type fakeRenderer struct {
	mapPath string
	err     error
}

func (f *fakeRenderer) Render(_ context.Context, mapPath string) (string, error) {
	f.mapPath = mapPath
	if f.err != nil {
		return "", f.err
	}
	return filepath.Join(filepath.Dir(mapPath), "guide.pdf"), nil
}

func TestRun_Render(t *testing.T) {
	cfg := newCorpus(t)
	cfg.RenderPDF = true
	fr := &fakeRenderer{}

	res, err := (&Runner{Config: cfg, Log: discard, Renderer: fr}).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fr.mapPath != cfg.MapPath() {
		t.Errorf("expected renderer to get %q, got %q", cfg.MapPath(), fr.mapPath)
	}
	if res.PDFPath != filepath.Join(cfg.OutputDir, "guide.pdf") {
		t.Errorf("unexpected pdf path %q", res.PDFPath)
	}
}

func TestRun_RenderFailureKeepsResult(t *testing.T) {
	cfg := newCorpus(t)
	cfg.RenderPDF = true
	boom := errors.New("fop failed")

	res, err := (&Runner{Config: cfg, Log: discard, Renderer: &fakeRenderer{err: boom}}).Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected render error, got %v", err)
	}
	if res == nil || res.MapPath == "" {
		t.Fatal("expected the result of the conversion alongside the render error")
	}
}

func TestRun_RenderWithoutRenderer(t *testing.T) {
	cfg := newCorpus(t)
	cfg.RenderPDF = true
	if _, err := (&Runner{Config: cfg, Log: discard}).Run(context.Background()); !errors.Is(err, ErrNoRenderer) {
		t.Fatalf("expected ErrNoRenderer, got %v", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	cfg := newCorpus(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Runner{Config: cfg, Log: discard}).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := os.Stat(cfg.MapPath()); !os.IsNotExist(err) {
		t.Error("expected no map after cancellation")
	}
}

func TestCleanOutputs_MissingDir(t *testing.T) {
	n, err := CleanOutputs(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected nothing removed, got %d", n)
	}
}

func TestTeeHandler(t *testing.T) {
	var a, b strings.Builder
	log := slog.New(newTeeHandler(
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)).With("run_id", "r1")

	log.Debug("detail")
	log.Warn("careful")

	if strings.Contains(a.String(), "detail") {
		t.Error("expected warn-level handler to skip debug records")
	}
	if !strings.Contains(a.String(), "careful") || !strings.Contains(b.String(), "detail") {
		t.Errorf("expected both handlers to receive their records, got %q and %q", a.String(), b.String())
	}
	if !strings.Contains(b.String(), "run_id=r1") {
		t.Errorf("expected attrs to reach every handler, got %q", b.String())
	}
}
