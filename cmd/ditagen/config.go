package main

import (
	"fmt"
	"log/slog"

	"github.com/dgallion1/ditagen/internal/config"
	"github.com/spf13/cobra"
)

// buildConfig layers the environment, the config file and the flags the
// command was given, in that order.
func buildConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Load()

	explicit, _ := cmd.Flags().GetString("config")
	if path := config.FindFile(explicit); path != "" {
		f, err := config.LoadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		f.Apply(&cfg)
	} else if explicit != "" {
		return cfg, fmt.Errorf("%w: %s", config.ErrConfigNotFound, explicit)
	}

	flags := cmd.Flags()
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	str("source", &cfg.SourceDir)
	str("out", &cfg.OutputDir)
	str("toc", &cfg.TOCFile)
	str("map", &cfg.MapFile)
	str("title", &cfg.Title)
	str("site-url", &cfg.SiteURL)
	str("pdf-name", &cfg.PDFName)
	str("dita-cmd", &cfg.DitaCommand)
	str("port", &cfg.Port)
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("pdf") {
		cfg.RenderPDF, _ = flags.GetBool("pdf")
	}
	if flags.Changed("no-report") {
		noReport, _ := flags.GetBool("no-report")
		cfg.WriteReport = !noReport
	}
	return cfg, nil
}

// setupLogger writes to the command's stderr; debug level under --verbose.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	asJSON, _ := cmd.Flags().GetBool("log-json")

	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	var h slog.Handler = slog.NewTextHandler(cmd.ErrOrStderr(), opts)
	if asJSON {
		h = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	}
	return slog.New(h)
}
