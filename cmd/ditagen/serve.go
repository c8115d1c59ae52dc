package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/ditagen/internal/api"
	"github.com/dgallion1/ditagen/internal/pipeline"
	"github.com/dgallion1/ditagen/internal/render"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an HTTP API that queues conversion runs",
		Long: `Serve starts an HTTP API. Authenticated clients (Authorization: Bearer
$DITAGEN_API_KEY) queue runs over the configured corpus and poll their status:

  POST /api/convert             {"title": "...", "render": false}
  GET  /api/runs/{id}/status
  GET  /api/runs/{id}/report    (Accept: text/markdown for the Markdown report)

Runs execute one at a time.`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("port", "p", "", "Listen port (default 8090)")
	cmd.Flags().StringP("source", "s", "", "Corpus root directory (default md)")
	cmd.Flags().StringP("out", "o", "", "Output directory (default dita)")
	cmd.Flags().String("site-url", "", "Published site URL whose absolute links are internal")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}
	log := setupLogger(cmd)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch := pipeline.NewOrchestrator(cfg, render.New(cfg.DitaCommand, cfg.PDFName, log), log)
	orch.Start(ctx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(orch, log, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting ditagen", "port", cfg.Port, "source", cfg.SourceDir, "output", cfg.OutputDir)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
