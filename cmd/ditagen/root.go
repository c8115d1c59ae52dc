package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ditagen",
		Short: "Convert a Markdown documentation corpus to DITA",
		Long: `ditagen turns a corpus of cross-linked documents, organized by a table of
contents, into one DITA topic per page plus a map that mirrors the table of
contents. Links between pages become topic references, images are placed
inline or as figures, and every degraded decision is written to a report.

Settings come from DITAGEN_* environment variables, then an optional
.ditagen.yaml file, then command-line flags.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .ditagen.yaml in current or home directory)")

	cmd.AddCommand(NewConvertCmd())
	cmd.AddCommand(NewRenderCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
