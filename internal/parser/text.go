package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/ditagen/internal/doctree"
)

// TextParser handles plain text files. Blank lines separate paragraphs.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	tree := &doctree.DocTree{Title: stem(filename)}

	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			tree.Blocks = append(tree.Blocks, doctree.New(doctree.KindParagraph, doctree.Text(current.String())))
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tree, nil
}
