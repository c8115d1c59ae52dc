package doctree

import "strings"

// Kind identifies which variant a Node is.
type Kind int

const (
	KindDocument Kind = iota
	KindParagraph
	KindHeading
	KindList
	KindListItem
	KindCodeBlock
	KindTable
	KindTableSection
	KindTableRow
	KindTableCell
	KindImage
	KindLink
	KindSpan
	KindBold
	KindItalic
	KindCode
	KindText
	KindLineBreak
)

var kindNames = [...]string{
	KindDocument:     "document",
	KindParagraph:    "paragraph",
	KindHeading:      "heading",
	KindList:         "list",
	KindListItem:     "list_item",
	KindCodeBlock:    "code_block",
	KindTable:        "table",
	KindTableSection: "table_section",
	KindTableRow:     "table_row",
	KindTableCell:    "table_cell",
	KindImage:        "image",
	KindLink:         "link",
	KindSpan:         "span",
	KindBold:         "bold",
	KindItalic:       "italic",
	KindCode:         "code",
	KindText:         "text",
	KindLineBreak:    "line_break",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsInline reports whether nodes of this kind live inside block content.
func (k Kind) IsInline() bool {
	switch k {
	case KindImage, KindLink, KindSpan, KindBold, KindItalic, KindCode, KindText, KindLineBreak:
		return true
	}
	return false
}

// DocTree is the root of a parsed source document.
type DocTree struct {
	Title  string  // Document title (from metadata or filename)
	Blocks []*Node // Top-level blocks in source order
}

// Node is one element of a parsed source document. Which fields are
// meaningful depends on Kind.
type Node struct {
	Kind     Kind
	Children []*Node

	Level    int    // Heading: 1-6
	Ordered  bool   // List
	Language string // CodeBlock: fence info, may be empty
	Header   bool   // TableSection (thead), TableCell (th)
	ColSpan  int    // TableCell: 0 or 1 means no span
	RowSpan  int    // TableCell: 0 or 1 means no span
	Src      string // Image
	Alt      string // Image
	Href     string // Link
	Value    string // Text, Code, CodeBlock
}

// New builds a node of the given kind with children.
func New(kind Kind, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

// Text builds a text leaf.
func Text(s string) *Node {
	return &Node{Kind: KindText, Value: s}
}

// Append adds children, skipping nils.
func (n *Node) Append(children ...*Node) {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
}

// TextContent returns the concatenated visible text under n. Images
// contribute nothing; line breaks become a single space.
func (n *Node) TextContent() string {
	var sb strings.Builder
	n.writeText(&sb)
	return sb.String()
}

func (n *Node) writeText(sb *strings.Builder) {
	switch n.Kind {
	case KindText, KindCode, KindCodeBlock:
		sb.WriteString(n.Value)
		return
	case KindLineBreak:
		sb.WriteByte(' ')
		return
	case KindImage:
		return
	}
	for _, c := range n.Children {
		c.writeText(sb)
	}
}

// Largest spans a table cell may carry, as in HTML.
const (
	MaxColSpan = 1000
	MaxRowSpan = 65534
)

// Span returns the effective column and row span of a table cell, between 1
// and MaxColSpan / MaxRowSpan.
func (n *Node) Span() (cols, rows int) {
	cols = min(max(n.ColSpan, 1), MaxColSpan)
	rows = min(max(n.RowSpan, 1), MaxRowSpan)
	return cols, rows
}
