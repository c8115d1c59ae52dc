package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dgallion1/ditagen/internal/audit"
	"github.com/dgallion1/ditagen/internal/config"
	"github.com/dgallion1/ditagen/internal/corpus"
	"github.com/dgallion1/ditagen/internal/dita"
	"github.com/dgallion1/ditagen/internal/ditamap"
	"github.com/dgallion1/ditagen/internal/parser"
	"github.com/dgallion1/ditagen/internal/toc"
	"github.com/dgallion1/ditagen/internal/translate"
	"golang.org/x/sync/errgroup"
)

// Stage is one step of a conversion run. Stages run strictly in order.
type Stage string

const (
	StageValidate  Stage = "validating"
	StageOutline   Stage = "reading_outline"
	StageIndex     Stage = "indexing"
	StageTranslate Stage = "translating"
	StageMap       Stage = "writing_map"
	StageReport    Stage = "writing_report"
	StageRender    Stage = "rendering"
)

// Files written into the output directory next to the topics.
const (
	ReportFile = "conversion-report.md"
	LogFile    = "ditagen.log"
)

var ErrNoRenderer = errors.New("pdf rendering requested but no renderer is configured")

// Renderer produces a PDF from a written map.
type Renderer interface {
	Render(ctx context.Context, mapPath string) (string, error)
}

// Hooks observe a run. Topic may be called from several goroutines.
type Hooks struct {
	Stage func(Stage)
	Topic func(written, total int)
}

// Runner executes one conversion over the configured corpus.
type Runner struct {
	Config   config.Config
	Log      *slog.Logger
	Renderer Renderer // required when Config.RenderPDF is set
	Hooks    Hooks
}

// Result describes a finished run.
type Result struct {
	Title        string
	Format       toc.Format
	MapPath      string
	ReportPath   string
	PDFPath      string
	Topics       int
	Placeholders int
	Events       []audit.Event
	Started      time.Time
	Duration     time.Duration
}

// Run converts the corpus. Configuration errors abort before anything is
// written. Every other problem is recorded in the result's events.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	cfg := r.Config
	log := r.Log
	if log == nil {
		log = slog.Default()
	}

	r.stage(StageValidate)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ValidateInputs(); err != nil {
		return nil, err
	}
	if cfg.RenderPDF && r.Renderer == nil {
		return nil, ErrNoRenderer
	}
	resolver, err := corpus.NewResolver(cfg.SiteURL)
	if err != nil {
		return nil, err
	}

	r.stage(StageOutline)
	outline, format, err := toc.LoadFile(cfg.TOCPath())
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	removed, err := CleanOutputs(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	if cfg.WriteLog {
		f, err := os.Create(filepath.Join(cfg.OutputDir, LogFile))
		if err != nil {
			return nil, fmt.Errorf("create log file: %w", err)
		}
		defer f.Close()
		log = slog.New(newTeeHandler(log.Handler(), slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	log.Info("starting conversion",
		"source", cfg.SourceDir,
		"output", cfg.OutputDir,
		"outline", cfg.TOCPath(),
		"format", format.String(),
		"stale_removed", removed,
	)
	rec := audit.NewRecorder(log)
	title := ditamap.Title(cfg.Title, outline)
	log.Info("document title", "title", title)

	r.stage(StageIndex)
	idx := corpus.Build(outline, resolver, corpus.DirLocator{Root: cfg.SourceDir})
	log.Info("indexed corpus", "topics", idx.Len(), "entries", outline.Count())

	r.stage(StageTranslate)
	tr := &translate.Translator{
		Index:      idx,
		Resolver:   resolver,
		CorpusRoot: cfg.SourceDir,
		OutputDir:  cfg.OutputDir,
		Audit:      rec,
		Log:        log,
		Parsers:    parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
	}
	if err := r.translate(ctx, tr, idx.Records(), cfg.OutputDir); err != nil {
		return nil, err
	}

	r.stage(StageMap)
	m := ditamap.Build(outline, idx, resolver, title, rec, log)
	if err := writeFile(cfg.MapPath(), func(w io.Writer) error { return dita.WriteMap(w, m) }); err != nil {
		return nil, fmt.Errorf("write map: %w", err)
	}
	log.Info("wrote map", "path", cfg.MapPath())

	res := &Result{
		Title:        title,
		Format:       format,
		MapPath:      cfg.MapPath(),
		Topics:       idx.Len(),
		Placeholders: rec.Count(audit.SourceMissing),
		Events:       rec.Events(),
		Started:      started,
		Duration:     time.Since(started),
	}

	if cfg.WriteReport {
		r.stage(StageReport)
		res.ReportPath = filepath.Join(cfg.OutputDir, ReportFile)
		sum := audit.Summary{
			Title:        title,
			SourceDir:    cfg.SourceDir,
			OutputDir:    cfg.OutputDir,
			MapFile:      cfg.MapFile,
			Topics:       res.Topics,
			Placeholders: res.Placeholders,
			Started:      started,
			Duration:     res.Duration,
		}
		if err := writeFile(res.ReportPath, func(w io.Writer) error { return audit.WriteReport(w, sum, res.Events) }); err != nil {
			return res, fmt.Errorf("write report: %w", err)
		}
	}

	if cfg.RenderPDF {
		r.stage(StageRender)
		pdf, err := r.Renderer.Render(ctx, res.MapPath)
		if err != nil {
			return res, fmt.Errorf("render pdf: %w", err)
		}
		res.PDFPath = pdf
	}

	res.Duration = time.Since(started)
	log.Info("conversion complete",
		"topics", res.Topics,
		"placeholders", res.Placeholders,
		"warnings", len(res.Events),
		"duration", res.Duration,
	)
	return res, nil
}

// translate writes one topic file per record with bounded parallelism. A
// cancelled context stops scheduling; files already written stay.
func (r *Runner) translate(ctx context.Context, tr *translate.Translator, records []*corpus.TopicRecord, outDir string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Config.Workers)

	total := len(records)
	var written atomic.Int64
	for _, rec := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			topic := tr.Translate(rec)
			path := filepath.Join(outDir, rec.Filename)
			if err := writeFile(path, func(w io.Writer) error { return dita.WriteTopic(w, topic) }); err != nil {
				return fmt.Errorf("write %s: %w", rec.Filename, err)
			}
			if r.Hooks.Topic != nil {
				r.Hooks.Topic(int(written.Add(1)), total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (r *Runner) stage(s Stage) {
	if r.Hooks.Stage != nil {
		r.Hooks.Stage(s)
	}
}

// CleanOutputs removes topic and map files left by an earlier run. Other
// files in dir are kept.
func CleanOutputs(dir string) (int, error) {
	removed := 0
	for _, pattern := range []string{"*.dita", "*.ditamap"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return removed, fmt.Errorf("list stale outputs: %w", err)
		}
		for _, m := range matches {
			if err := os.Remove(m); err != nil {
				return removed, fmt.Errorf("remove stale output: %w", err)
			}
			removed++
		}
	}
	return removed, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
