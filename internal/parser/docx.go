package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/ditagen/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Heading styles become headings, list
// paragraph styles become list items, everything else a paragraph.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "ditagen-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	tree := &doctree.DocTree{Title: stem(filename)}
	var list *doctree.Node

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}

		style := docxStyle(para)
		if ordered, ok := docxListStyle(style); ok {
			if list == nil || list.Ordered != ordered {
				list = &doctree.Node{Kind: doctree.KindList, Ordered: ordered}
				tree.Blocks = append(tree.Blocks, list)
			}
			list.Append(doctree.New(doctree.KindListItem, doctree.Text(text)))
			continue
		}
		list = nil

		if level := docxHeadingLevel(style); level > 0 {
			h := doctree.New(doctree.KindHeading, doctree.Text(text))
			h.Level = level
			tree.Blocks = append(tree.Blocks, h)
			if level == 1 && tree.Title == stem(filename) {
				tree.Title = text
			}
			continue
		}
		tree.Blocks = append(tree.Blocks, doctree.New(doctree.KindParagraph, doctree.Text(text)))
	}

	return tree, nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func docxHeadingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if rest, ok := strings.CutPrefix(s, "heading"); ok && len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
		return int(rest[0] - '0')
	}
	return 0
}

// docxListStyle recognises the built-in list paragraph styles.
func docxListStyle(style string) (ordered, ok bool) {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	switch {
	case strings.HasPrefix(s, "listnumber"):
		return true, true
	case strings.HasPrefix(s, "listbullet"), s == "listparagraph":
		return false, true
	}
	return false, false
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
