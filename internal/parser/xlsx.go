package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/ditagen/internal/doctree"
	"github.com/xuri/excelize/v2"
)

// XLSXParser handles Excel workbooks. Each non-empty sheet becomes a heading
// followed by a table whose first row is the header.
type XLSXParser struct{}

func (p *XLSXParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	tree := &doctree.DocTree{Title: stem(filename)}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}

		h := doctree.New(doctree.KindHeading, doctree.Text(sheet))
		h.Level = 2
		tree.Blocks = append(tree.Blocks, h, sheetTable(rows))
	}
	return tree, nil
}

func sheetTable(rows [][]string) *doctree.Node {
	head := &doctree.Node{Kind: doctree.KindTableSection, Header: true}
	head.Append(csvRow(rows[0], true))
	table := doctree.New(doctree.KindTable, head)
	if len(rows) > 1 {
		body := doctree.New(doctree.KindTableSection)
		for _, row := range rows[1:] {
			body.Append(csvRow(row, false))
		}
		table.Append(body)
	}
	return table
}
