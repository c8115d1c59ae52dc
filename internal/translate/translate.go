// Package translate turns parsed source documents into DITA topics. Links are
// resolved against the corpus index, images are classified and their paths
// rewritten relative to the output directory.
package translate

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dgallion1/ditagen/internal/audit"
	"github.com/dgallion1/ditagen/internal/corpus"
	"github.com/dgallion1/ditagen/internal/dita"
	"github.com/dgallion1/ditagen/internal/doctree"
	"github.com/dgallion1/ditagen/internal/parser"
)

// Translator converts one indexed page at a time. It only reads the index, so
// one Translator may serve many goroutines.
type Translator struct {
	Index      *corpus.Index
	Resolver   *corpus.Resolver
	CorpusRoot string
	OutputDir  string
	Audit      *audit.Recorder
	Log        *slog.Logger
	Parsers    parser.Options
}

// unhandled reports a node kind with no translation.
var unhandled = func(log *slog.Logger, k doctree.Kind) {
	log.Debug("skipping unhandled node", "kind", k)
}

// Translate builds the topic for rec. It never fails: an unreadable source
// yields a placeholder topic and a SourceMissing audit event.
func (t *Translator) Translate(rec *corpus.TopicRecord) *dita.Topic {
	log := t.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With("topic", rec.TopicID, "source", rec.SourcePath)

	topic := &dita.Topic{ID: rec.TopicID, Title: rec.Title}
	d := &document{
		Translator: t,
		rec:        rec,
		log:        log,
		dir:        filepath.Dir(rec.SourcePath),
		bases:      linkBases(rec.Key),
	}

	tree, err := t.parse(rec.SourcePath)
	if err != nil {
		d.record(audit.SourceMissing, rec.SourcePath, err.Error())
		topic.Body = []dita.Block{Placeholder(rec.SourcePath)}
		return topic
	}

	topic.Body = d.blocks(tree.Blocks, false)
	log.Debug("translated document", "blocks", len(topic.Body))
	return topic
}

// Placeholder is the body of a topic whose source could not be read.
func Placeholder(sourcePath string) dita.Block {
	return &dita.Paragraph{Content: []dita.Inline{
		&dita.Italic{Content: []dita.Inline{&dita.Text{Value: "Missing file: " + filepath.ToSlash(sourcePath)}}},
	}}
}

func (t *Translator) parse(sourcePath string) (*doctree.DocTree, error) {
	p, err := parser.ForFile(sourcePath, t.Parsers)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(sourcePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tree, err := p.Parse(f, filepath.Base(sourcePath))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(sourcePath), err)
	}
	return tree, nil
}

// linkBases lists the keys relative links of a page are resolved against:
// the page itself, addressed directory-style, then the directory it is in.
func linkBases(key string) []string {
	dir := path.Dir(key)
	if dir == "." {
		dir = ""
	}
	if dir == key {
		return []string{key}
	}
	return []string{key, dir}
}

// document is the state of one translation.
type document struct {
	*Translator
	rec   *corpus.TopicRecord
	log   *slog.Logger
	dir   string   // file-system directory of the source
	bases []string // link resolution bases
}

func (d *document) record(kind audit.Kind, subject, detail string) {
	d.Audit.Record(audit.Event{
		Kind:    kind,
		TopicID: d.rec.ID,
		Topic:   d.rec.TopicID,
		Source:  d.rec.SourcePath,
		Subject: subject,
		Detail:  detail,
	})
}

// blocks translates block content. nested is set inside list items and
// table entries, where sections and tables are not allowed.
func (d *document) blocks(nodes []*doctree.Node, nested bool) []dita.Block {
	var out []dita.Block
	var run []*doctree.Node
	flush := func() {
		if len(run) == 0 {
			return
		}
		if p := d.paragraph(doctree.New(doctree.KindParagraph, run...)); p != nil {
			out = append(out, p)
		}
		run = nil
	}

	for _, n := range nodes {
		if n.Kind.IsInline() {
			run = append(run, n)
			continue
		}
		flush()
		out = append(out, d.block(n, nested)...)
	}
	flush()
	return out
}

func (d *document) block(n *doctree.Node, nested bool) []dita.Block {
	switch n.Kind {
	case doctree.KindParagraph:
		if p := d.paragraph(n); p != nil {
			return []dita.Block{p}
		}
		return nil

	case doctree.KindHeading:
		if n.Level <= 1 {
			// the topic title already carries it
			return nil
		}
		title := d.inlines(n.Children, ImageContext{})
		if len(title) == 0 {
			return nil
		}
		if nested {
			return []dita.Block{&dita.Paragraph{Content: []dita.Inline{&dita.Bold{Content: title}}}}
		}
		return []dita.Block{&dita.Section{Title: title}}

	case doctree.KindList:
		return []dita.Block{d.list(n)}

	case doctree.KindCodeBlock:
		return []dita.Block{&dita.CodeBlock{Language: n.Language, Code: n.Value}}

	case doctree.KindTable:
		if nested {
			return d.flattenTable(n)
		}
		if t := d.table(n); t != nil {
			return []dita.Block{t}
		}
		return nil

	case doctree.KindDocument, doctree.KindListItem, doctree.KindTableSection,
		doctree.KindTableRow, doctree.KindTableCell:
		return d.blocks(n.Children, nested)

	case doctree.KindImage, doctree.KindLink, doctree.KindSpan, doctree.KindBold,
		doctree.KindItalic, doctree.KindCode, doctree.KindText, doctree.KindLineBreak:
		return d.blocks([]*doctree.Node{n}, nested)
	}

	unhandled(d.log, n.Kind)
	return d.blocks(n.Children, nested)
}

func (d *document) paragraph(n *doctree.Node) *dita.Paragraph {
	scope := ImageContext{Container: ContainerParagraph, SiblingText: hasText(n.Children)}
	content := d.inlines(n.Children, scope)
	if len(content) == 0 {
		return nil
	}
	return &dita.Paragraph{Content: content}
}

func (d *document) list(n *doctree.Node) *dita.List {
	l := &dita.List{Ordered: n.Ordered}
	for _, item := range n.Children {
		children := item.Children
		if item.Kind != doctree.KindListItem {
			children = []*doctree.Node{item}
		}
		l.Items = append(l.Items, &dita.ListItem{Content: d.mixed(children, ContainerListItem)})
	}
	return l
}

// mixed translates the content of a list item or table cell, which may hold
// inline nodes and blocks side by side.
func (d *document) mixed(children []*doctree.Node, container Container) []dita.Node {
	scope := ImageContext{Container: container, SiblingText: hasText(children)}
	var out []dita.Node
	for _, c := range children {
		if c.Kind.IsInline() {
			for _, in := range d.inline(c, scope) {
				out = append(out, in)
			}
			continue
		}
		for _, b := range d.block(c, true) {
			out = append(out, b)
		}
	}
	return out
}

// hasText reports whether the inline nodes among children carry any
// non-whitespace text. Nested blocks do not count.
func hasText(children []*doctree.Node) bool {
	for _, c := range children {
		if c.Kind.IsInline() && strings.TrimSpace(c.TextContent()) != "" {
			return true
		}
	}
	return false
}
