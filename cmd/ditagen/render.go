package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/ditagen/internal/render"
	"github.com/spf13/cobra"
)

// NewRenderCmd creates the render command.
func NewRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a converted map to PDF with DITA-OT",
		Long: `Render runs DITA-OT on the map written by convert. A PDF customization
plugin is written next to the map first, and the produced PDF is moved to the
configured name.`,
		Args: cobra.NoArgs,
		RunE: runRenderCmd,
	}

	cmd.Flags().StringP("out", "o", "", "Directory holding the map (default dita)")
	cmd.Flags().String("map", "", "Map file name (default userguide.ditamap)")
	cmd.Flags().String("pdf-name", "", "PDF file name (default userguide.pdf)")
	cmd.Flags().String("dita-cmd", "", "DITA-OT executable (default dita)")

	return cmd
}

func runRenderCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pdf, err := render.New(cfg.DitaCommand, cfg.PDFName, logger).Render(ctx, cfg.MapPath())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("PDF written:"), pdf)
	return nil
}
