package audit

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
)

// Summary describes a finished run for the report header.
type Summary struct {
	Title        string
	SourceDir    string
	OutputDir    string
	MapFile      string
	Topics       int
	Placeholders int
	Started      time.Time
	Duration     time.Duration
}

// WriteReport writes a Markdown audit report of the run.
func WriteReport(w io.Writer, sum Summary, events []Event) error {
	md := markdown.NewMarkdown(w)

	md.H1("Conversion Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Title", cell(sum.Title)},
			{"Source", "`" + cell(sum.SourceDir) + "`"},
			{"Output", "`" + cell(sum.OutputDir) + "`"},
			{"Map", "`" + cell(sum.MapFile) + "`"},
			{"Topics", strconv.Itoa(sum.Topics)},
			{"Placeholder topics", strconv.Itoa(sum.Placeholders)},
			{"Started", sum.Started.Format("2006-01-02 15:04:05 MST")},
			{"Duration", sum.Duration.Round(time.Millisecond).String()},
		},
	})
	md.PlainText("")

	md.H2("Degradations")
	md.PlainText("")

	byKind := make(map[Kind][]Event)
	for _, e := range events {
		byKind[e.Kind] = append(byKind[e.Kind], e)
	}

	rows := make([][]string, 0, len(Kinds))
	for _, k := range Kinds {
		rows = append(rows, []string{k.Title(), strconv.Itoa(len(byKind[k]))})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Condition", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(events) == 0 {
		md.Tip("No degraded decisions were recorded.")
		return md.Build()
	}
	if n := len(byKind[SourceMissing]); n > 0 {
		md.Warningf("%d topic(s) were generated from missing sources and contain only a placeholder.", n)
		md.PlainText("")
	}

	for _, k := range Kinds {
		list := byKind[k]
		if len(list) == 0 {
			continue
		}
		md.H3(k.Title())
		md.PlainText("")
		detail := make([][]string, 0, len(list))
		for _, e := range list {
			detail = append(detail, []string{cell(e.Topic), cell(e.Source), "`" + cell(e.Subject) + "`", cell(e.Detail)})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Topic", "Source", "Subject", "Detail"},
			Rows:   detail,
		})
		md.PlainText("")
	}

	return md.Build()
}

// cell keeps a value from breaking the table row it sits in.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "`", "'")
	return s
}
