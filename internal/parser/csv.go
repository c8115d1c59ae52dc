package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/ditagen/internal/doctree"
)

// CSVParser handles CSV files. The first record becomes the header row of a
// single table.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	tree := &doctree.DocTree{Title: stem(filename)}
	if len(records) == 0 {
		return tree, nil
	}

	tree.Blocks = []*doctree.Node{sheetTable(records)}
	return tree, nil
}

func csvRow(fields []string, header bool) *doctree.Node {
	row := doctree.New(doctree.KindTableRow)
	for _, f := range fields {
		cell := doctree.New(doctree.KindTableCell)
		if f != "" {
			cell.Append(doctree.Text(f))
		}
		cell.Header = header
		row.Append(cell)
	}
	return row
}
