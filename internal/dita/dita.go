// Package dita models the subset of DITA topics and maps the converter emits
// and serializes them.
package dita

// Node is anything that can appear in topic content.
type Node interface {
	write(w *writer)
}

// Block content sits directly in a topic body.
type Block interface {
	Node
	block()
}

// Inline content sits inside paragraphs, titles, list items and entries.
type Inline interface {
	Node
	inline()
}

// Topic is one output topic file.
type Topic struct {
	ID    string
	Title string
	Body  []Block
}

type Paragraph struct {
	Content []Inline
}

// Section carries a heading. The heading's following content stays in the
// body rather than being nested under it.
type Section struct {
	Title []Inline
}

type List struct {
	Ordered bool
	Items   []*ListItem
}

// ListItem holds mixed content: inline nodes, paragraphs, code blocks,
// images, tables and nested lists.
type ListItem struct {
	Content []Node
}

type CodeBlock struct {
	Language string
	Code     string
}

type Table struct {
	Cols int
	Head []*Row
	Body []*Row
}

type Row struct {
	Entries []*Entry
}

// Entry is a table cell. NameStart and NameEnd are set for column spans,
// MoreRows for row spans.
type Entry struct {
	NameStart string
	NameEnd   string
	MoreRows  int
	Content   []Node
}

type Text struct {
	Value string
}

type Bold struct {
	Content []Inline
}

type Italic struct {
	Content []Inline
}

type Codeph struct {
	Value string
}

// XRef is a cross reference. Format is "dita" for topics in the same set and
// "html" with Scope "external" for other sites.
type XRef struct {
	Href    string
	Format  string
	Scope   string
	Content []Inline
}

// Placement values for images.
const (
	PlacementInline = "inline"
	PlacementBreak  = "break"
)

// Image is both inline and block content.
type Image struct {
	Href      string
	Placement string
	Align     string
	Alt       string
}

func (*Paragraph) block() {}
func (*Section) block()   {}
func (*List) block()      {}
func (*CodeBlock) block() {}
func (*Table) block()     {}
func (*Image) block()     {}

func (*Text) inline()   {}
func (*Bold) inline()   {}
func (*Italic) inline() {}
func (*Codeph) inline() {}
func (*XRef) inline()   {}
func (*Image) inline()  {}

// Map is the output map.
type Map struct {
	Title string
	Refs  []MapNode
}

// MapNode is a TopicRef or a TopicHead.
type MapNode interface {
	writeMap(w *writer)
}

// TopicRef references a topic file, with nested references as children.
type TopicRef struct {
	Href     string
	Children []MapNode
}

// TopicHead groups children under a title that has no topic of its own.
type TopicHead struct {
	NavTitle string
	Children []MapNode
}

// Hrefs returns every topic reference in the map, depth first.
func (m *Map) Hrefs() []string {
	var out []string
	var walk func([]MapNode)
	walk = func(nodes []MapNode) {
		for _, n := range nodes {
			switch n := n.(type) {
			case *TopicRef:
				out = append(out, n.Href)
				walk(n.Children)
			case *TopicHead:
				walk(n.Children)
			}
		}
	}
	walk(m.Refs)
	return out
}
