package parser

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dgallion1/ditagen/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

// markdown renders CommonMark plus GitHub tables. Raw HTML is passed through
// so inline spans and explicit tables survive into the document tree.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc, err := RenderHTML(src)
	if err != nil {
		return nil, err
	}

	tree := &doctree.DocTree{
		Title:  stem(filename),
		Blocks: Blocks(doc),
	}
	for _, b := range tree.Blocks {
		if b.Kind == doctree.KindHeading && b.Level == 1 {
			if t := b.TextContent(); t != "" {
				tree.Title = t
			}
			break
		}
	}
	return tree, nil
}

// RenderHTML converts Markdown source into a parsed HTML document.
func RenderHTML(src []byte) (*html.Node, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	doc, err := html.Parse(&buf)
	if err != nil {
		return nil, fmt.Errorf("parse rendered markdown: %w", err)
	}
	return doc, nil
}
