package translate

import (
	"slices"
	"strconv"

	"github.com/dgallion1/ditagen/internal/dita"
	"github.com/dgallion1/ditagen/internal/doctree"
)

func (d *document) table(n *doctree.Node) *dita.Table {
	head, body := splitRows(n)
	if len(head)+len(body) == 0 {
		return nil
	}

	// The first row fixes the column count; later rows that reach further
	// widen it so every namest/nameend names a declared column.
	headStarts, headWidth := layout(head)
	bodyStarts, bodyWidth := layout(body)

	return &dita.Table{
		Cols: max(headWidth, bodyWidth, 1),
		Head: d.rows(head, headStarts),
		Body: d.rows(body, bodyStarts),
	}
}

func (d *document) rows(rows []*doctree.Node, starts [][]int) []*dita.Row {
	var out []*dita.Row
	for i, r := range rows {
		row := &dita.Row{}
		for j, cell := range cells(r) {
			start := starts[i][j]
			cols, spanRows := cell.Span()
			e := &dita.Entry{Content: d.mixed(cell.Children, ContainerTableCell)}
			if cols > 1 {
				e.NameStart = colName(start)
				e.NameEnd = colName(start + cols - 1)
			}
			if spanRows > 1 {
				e.MoreRows = min(spanRows-1, len(rows)-1-i)
			}
			row.Entries = append(row.Entries, e)
		}
		if len(row.Entries) > 0 {
			out = append(out, row)
		}
	}
	return out
}

// flattenTable renders a table nested in a list item or entry as one
// paragraph per row.
func (d *document) flattenTable(n *doctree.Node) []dita.Block {
	head, body := splitRows(n)
	var out []dita.Block
	for _, r := range slices.Concat(head, body) {
		var content []dita.Inline
		for _, cell := range cells(r) {
			scope := ImageContext{Container: ContainerTableCell, SiblingText: hasText(cell.Children)}
			inl := d.inlines(cell.Children, scope)
			if len(inl) == 0 {
				continue
			}
			if len(content) > 0 {
				content = append(content, &dita.Text{Value: " | "})
			}
			content = append(content, inl...)
		}
		if len(content) > 0 {
			out = append(out, &dita.Paragraph{Content: content})
		}
	}
	return out
}

// splitRows separates header rows from body rows. Without a header section,
// a leading row made only of header cells is the header.
func splitRows(n *doctree.Node) (head, body []*doctree.Node) {
	for _, c := range n.Children {
		switch c.Kind {
		case doctree.KindTableSection:
			for _, r := range c.Children {
				if r.Kind != doctree.KindTableRow {
					continue
				}
				if c.Header {
					head = append(head, r)
				} else {
					body = append(body, r)
				}
			}
		case doctree.KindTableRow:
			body = append(body, c)
		}
	}
	if len(head) == 0 && len(body) > 0 && allHeaderCells(body[0]) {
		head, body = body[:1], body[1:]
	}
	return head, body
}

func allHeaderCells(row *doctree.Node) bool {
	cs := cells(row)
	if len(cs) == 0 {
		return false
	}
	for _, c := range cs {
		if !c.Header {
			return false
		}
	}
	return true
}

// layout places the cells of rows on a grid. A cell starts at the first
// column of its row not yet taken by a row span from above. It returns the
// zero-based start column of every cell and the number of columns used.
func layout(rows []*doctree.Node) (starts [][]int, width int) {
	starts = make([][]int, len(rows))
	var carry []int // rows each column stays occupied, counting the current one

	for i, r := range rows {
		col := 0
		for _, cell := range cells(r) {
			for col < len(carry) && carry[col] > 0 {
				col++
			}
			cols, spanRows := cell.Span()
			starts[i] = append(starts[i], col)
			for len(carry) < col+cols {
				carry = append(carry, 0)
			}
			for k := col; k < col+cols; k++ {
				carry[k] = spanRows
			}
			col += cols
		}
		for k := range carry {
			if carry[k] > 0 {
				width = max(width, k+1)
				carry[k]--
			}
		}
	}
	return starts, width
}

func cells(row *doctree.Node) []*doctree.Node {
	var out []*doctree.Node
	for _, c := range row.Children {
		if c.Kind == doctree.KindTableCell {
			out = append(out, c)
		}
	}
	return out
}

func colName(i int) string {
	return "c" + strconv.Itoa(i+1)
}
