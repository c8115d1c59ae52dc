package pipeline

import (
	"context"
	"log/slog"

	"github.com/dgallion1/ditagen/internal/config"
)

// Worker executes queued runs.
type Worker struct {
	cfg      config.Config
	renderer Renderer
	log      *slog.Logger
}

func NewWorker(cfg config.Config, renderer Renderer, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{cfg: cfg, renderer: renderer, log: log}
}

// Process runs the conversion for a job and records its outcome.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("run_id", job.ID)

	cfg := w.cfg
	if job.Title != "" {
		cfg.Title = job.Title
	}
	cfg.RenderPDF = job.Render

	runner := &Runner{
		Config:   cfg,
		Log:      log,
		Renderer: w.renderer,
		Hooks: Hooks{
			Stage: func(s Stage) { job.SetStatus(StatusRunning, string(s)) },
			Topic: job.SetTopics,
		},
	}

	job.SetStatus(StatusRunning, "starting")
	res, err := runner.Run(ctx)
	if res != nil {
		job.Finish(res)
	}
	if err != nil {
		log.Error("run failed", "error", err)
		job.Fail(err)
		return
	}

	if len(res.Events) > 0 {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("run finished", "topics", res.Topics, "warnings", len(res.Events))
}
