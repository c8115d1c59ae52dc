package translate

import (
	"strings"
	"testing"

	"github.com/dgallion1/ditagen/internal/corpus"
	"github.com/dgallion1/ditagen/internal/dita"
	"github.com/dgallion1/ditagen/internal/doctree"
)

func newDocument(t *testing.T) *document {
	t.Helper()
	f := newFixture(t, "", nil)
	return &document{
		Translator: f.tr,
		rec:        &corpus.TopicRecord{ID: 1, TopicID: "topic_1"},
		log:        discard,
		dir:        f.src,
		bases:      []string{""},
	}
}

func td(text string) *doctree.Node {
	return doctree.New(doctree.KindTableCell, doctree.Text(text))
}

func th(text string) *doctree.Node {
	c := td(text)
	c.Header = true
	return c
}

func spanned(c *doctree.Node, cols, rows int) *doctree.Node {
	c.ColSpan, c.RowSpan = cols, rows
	return c
}

func tr(cells ...*doctree.Node) *doctree.Node {
	return doctree.New(doctree.KindTableRow, cells...)
}

func section(header bool, rows ...*doctree.Node) *doctree.Node {
	s := doctree.New(doctree.KindTableSection, rows...)
	s.Header = header
	return s
}

func entryText(e *dita.Entry) string {
	var sb strings.Builder
	for _, n := range e.Content {
		if txt, ok := n.(*dita.Text); ok {
			sb.WriteString(txt.Value)
		}
	}
	return sb.String()
}

func TestTable_RunningColumnSpans(t *testing.T) {
	d := newDocument(t)
	table := d.table(doctree.New(doctree.KindTable,
		section(true, tr(th("A"), th("B"), th("C"))),
		section(false,
			tr(spanned(td("x"), 1, 2), spanned(td("y"), 2, 1)),
			tr(spanned(td("z"), 2, 1)),
		),
	))

	if table.Cols != 3 {
		t.Fatalf("expected 3 columns, got %d", table.Cols)
	}
	if len(table.Head) != 1 || len(table.Body) != 2 {
		t.Fatalf("expected 1 head row and 2 body rows, got %d/%d", len(table.Head), len(table.Body))
	}

	first := table.Body[0].Entries
	if first[0].MoreRows != 1 || first[0].NameStart != "" {
		t.Errorf("expected x to span one more row, got %+v", first[0])
	}
	if first[1].NameStart != "c2" || first[1].NameEnd != "c3" {
		t.Errorf("expected y to span c2..c3, got %s..%s", first[1].NameStart, first[1].NameEnd)
	}

	// column 1 is still taken by x, so z starts at column 2
	second := table.Body[1].Entries
	if len(second) != 1 || entryText(second[0]) != "z" {
		t.Fatalf("expected single entry z, got %d entries", len(second))
	}
	if second[0].NameStart != "c2" || second[0].NameEnd != "c3" {
		t.Errorf("expected z to span c2..c3, got %s..%s", second[0].NameStart, second[0].NameEnd)
	}
}

func TestTable_MoreRowsClamped(t *testing.T) {
	d := newDocument(t)
	table := d.table(doctree.New(doctree.KindTable,
		section(false,
			tr(spanned(td("tall"), 1, 5), td("a")),
			tr(td("b")),
		),
	))
	if got := table.Body[0].Entries[0].MoreRows; got != 1 {
		t.Errorf("expected morerows clamped to 1, got %d", got)
	}

	single := d.table(doctree.New(doctree.KindTable, section(false, tr(spanned(td("only"), 1, 3)))))
	if got := single.Body[0].Entries[0].MoreRows; got != 0 {
		t.Errorf("expected no morerows on the last row, got %d", got)
	}
}

func TestTable_ColumnsFromFirstRowWidened(t *testing.T) {
	tests := []struct {
		name  string
		table *doctree.Node
		cols  int
	}{
		{
			"header row decides",
			doctree.New(doctree.KindTable,
				section(true, tr(th("A"), spanned(th("B"), 2, 1))),
				section(false, tr(td("1"), td("2"))),
			),
			3,
		},
		{
			"first body row without header",
			doctree.New(doctree.KindTable, section(false, tr(td("1"), td("2")), tr(td("3")))),
			2,
		},
		{
			"later row reaches further",
			doctree.New(doctree.KindTable,
				section(true, tr(th("A"))),
				section(false, tr(td("1"), td("2"), td("3"))),
			),
			3,
		},
		{
			"wide span in body",
			doctree.New(doctree.KindTable, section(false, tr(td("1")), tr(spanned(td("w"), 4, 1)))),
			4,
		},
		{
			"huge span is bounded",
			doctree.New(doctree.KindTable, section(false, tr(spanned(td("w"), 30000000, 1)))),
			doctree.MaxColSpan,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := newDocument(t).table(tt.table)
			if table.Cols != tt.cols {
				t.Errorf("expected %d columns, got %d", tt.cols, table.Cols)
			}
		})
	}
}

func TestTable_LeadingHeaderRowPromoted(t *testing.T) {
	d := newDocument(t)
	table := d.table(doctree.New(doctree.KindTable,
		tr(th("Name"), th("Size")),
		tr(td("a"), td("1")),
	))
	if len(table.Head) != 1 || len(table.Body) != 1 {
		t.Fatalf("expected 1 head and 1 body row, got %d/%d", len(table.Head), len(table.Body))
	}
	if got := entryText(table.Head[0].Entries[0]); got != "Name" {
		t.Errorf("expected Name in header, got %q", got)
	}

	mixed := d.table(doctree.New(doctree.KindTable, tr(th("Name"), td("a"))))
	if len(mixed.Head) != 0 {
		t.Errorf("expected a mixed row to stay in the body")
	}
}

func TestTable_Empty(t *testing.T) {
	if table := newDocument(t).table(doctree.New(doctree.KindTable)); table != nil {
		t.Errorf("expected no table, got %+v", table)
	}
}

func TestTable_NestedTableFlattened(t *testing.T) {
	d := newDocument(t)
	inner := doctree.New(doctree.KindTable,
		section(true, tr(th("k"), th("v"))),
		section(false, tr(td("a"), td("")), tr(td("b"), td("2"))),
	)
	list := doctree.New(doctree.KindList, doctree.New(doctree.KindListItem, doctree.Text("item"), inner))

	out := d.block(list, false)
	if len(out) != 1 {
		t.Fatalf("expected one list, got %d blocks", len(out))
	}
	content := out[0].(*dita.List).Items[0].Content
	var rows []string
	for _, n := range content {
		p, ok := n.(*dita.Paragraph)
		if !ok {
			continue
		}
		var sb strings.Builder
		for _, in := range p.Content {
			if txt, ok := in.(*dita.Text); ok {
				sb.WriteString(txt.Value)
			}
		}
		rows = append(rows, sb.String())
	}
	want := []string{"k | v", "a", "b | 2"}
	if len(rows) != len(want) {
		t.Fatalf("expected rows %q, got %q", want, rows)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d: expected %q, got %q", i, want[i], rows[i])
		}
	}
}

func TestTranslate_HTMLTableSpans(t *testing.T) {
	page := `<table>
<thead><tr><th>A</th><th>B</th><th>C</th></tr></thead>
<tbody>
<tr><td rowspan="2">x</td><td colspan="2">y</td></tr>
<tr><td colspan="2">z</td></tr>
</tbody>
</table>`
	f := newFixture(t, "", map[string]string{"t.html": page}, [2]string{"T", "t.html"})

	topic := f.translate(t, "t")
	if len(topic.Body) != 1 {
		t.Fatalf("expected one table, got %d blocks", len(topic.Body))
	}
	table, ok := topic.Body[0].(*dita.Table)
	if !ok {
		t.Fatalf("expected table, got %T", topic.Body[0])
	}
	if table.Cols != 3 {
		t.Errorf("expected 3 columns, got %d", table.Cols)
	}
	if e := table.Body[0].Entries[0]; e.MoreRows != 1 {
		t.Errorf("expected morerows 1, got %d", e.MoreRows)
	}
	for i, r := range table.Body {
		e := r.Entries[len(r.Entries)-1]
		if e.NameStart != "c2" || e.NameEnd != "c3" {
			t.Errorf("row %d: expected c2..c3, got %s..%s", i, e.NameStart, e.NameEnd)
		}
	}
}
