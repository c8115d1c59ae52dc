package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/ditagen/internal/pipeline"
	"github.com/dgallion1/ditagen/internal/render"
	"github.com/spf13/cobra"
)

// NewConvertCmd creates the convert command.
func NewConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert the corpus into DITA topics and a map",
		Long: `Convert reads the table of contents, gives every linked page a topic id,
translates each page into a topic file and writes the map.

The table of contents may be a nested list of links or a heading outline:

  # User Guide
  1. [Introduction](intro.md)
  2. Concepts
      1. [Layers](guide/layers.md)

Examples:
  # Convert md/ into dita/
  ditagen convert

  # Treat absolute links to the published site as internal
  ditagen convert --site-url https://docs.example.com/manual

  # Convert and render a PDF with DITA-OT
  ditagen convert --pdf --pdf-name "User Guide.pdf"`,
		Args: cobra.NoArgs,
		RunE: runConvertCmd,
	}

	cmd.Flags().StringP("source", "s", "", "Corpus root directory (default md)")
	cmd.Flags().StringP("out", "o", "", "Output directory (default dita)")
	cmd.Flags().String("toc", "", "Table of contents, relative to the corpus root (default toc.md)")
	cmd.Flags().String("map", "", "Map file name (default userguide.ditamap)")
	cmd.Flags().StringP("title", "t", "", "Document title (default: from the table of contents)")
	cmd.Flags().String("site-url", "", "Published site URL whose absolute links are internal")
	cmd.Flags().IntP("workers", "w", 0, "Pages translated in parallel (default 4)")
	cmd.Flags().Bool("no-report", false, "Skip the conversion report")
	cmd.Flags().Bool("pdf", false, "Render a PDF with DITA-OT after converting")
	cmd.Flags().String("pdf-name", "", "PDF file name (default userguide.pdf)")
	cmd.Flags().String("dita-cmd", "", "DITA-OT executable (default dita)")

	return cmd
}

func runConvertCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := &pipeline.Runner{Config: cfg, Log: logger}
	if cfg.RenderPDF {
		runner.Renderer = render.New(cfg.DitaCommand, cfg.PDFName, logger)
	}

	res, err := runner.Run(ctx)
	if res != nil {
		printSummary(cmd.OutOrStdout(), res)
	}
	return err
}
