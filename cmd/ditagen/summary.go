package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/ditagen/internal/audit"
	"github.com/dgallion1/ditagen/internal/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)
)

// printSummary renders the outcome of a run.
func printSummary(w io.Writer, res *pipeline.Result) {
	counts := make(map[audit.Kind]int)
	for _, e := range res.Events {
		counts[e.Kind]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", titleStyle.Render(res.Title))
	fmt.Fprintf(&b, "%s %d  %s %s\n", dimStyle.Render("Topics:"), res.Topics,
		dimStyle.Render("Outline:"), res.Format)
	fmt.Fprintf(&b, "%s %s", dimStyle.Render("Map:"), res.MapPath)
	if res.ReportPath != "" {
		fmt.Fprintf(&b, "\n%s %s", dimStyle.Render("Report:"), res.ReportPath)
	}
	if res.PDFPath != "" {
		fmt.Fprintf(&b, "\n%s %s", dimStyle.Render("PDF:"), res.PDFPath)
	}

	if len(res.Events) == 0 {
		fmt.Fprintf(&b, "\n%s", successStyle.Render("No degraded decisions"))
	}
	for _, k := range audit.Kinds {
		if n := counts[k]; n > 0 {
			fmt.Fprintf(&b, "\n%s %d", warnStyle.Render(k.Title()+":"), n)
		}
	}
	fmt.Fprintf(&b, "\n%s %s", dimStyle.Render("Took:"), res.Duration.Round(time.Millisecond))

	fmt.Fprintln(w, boxStyle.Render(b.String()))
}
