package doctree

// OutlineKind tells a linked outline entry from a plain container.
type OutlineKind int

const (
	OutlineLink OutlineKind = iota
	OutlineContainer
)

// OutlineNode is one entry of the canonical table of contents.
type OutlineNode struct {
	Kind     OutlineKind
	Title    string // link text, or the container label (may be empty)
	Target   string // link href; empty for containers
	Children []*OutlineNode
}

// Outline is the canonical, nested table of contents in document order.
type Outline struct {
	Title   string // from the first "# " heading, if any
	Entries []*OutlineNode
}

// FirstLinkTitle returns the text of the first link found under the first
// top-level entry, depth first.
func (o *Outline) FirstLinkTitle() string {
	if o == nil || len(o.Entries) == 0 {
		return ""
	}
	var find func(n *OutlineNode) string
	find = func(n *OutlineNode) string {
		if n.Kind == OutlineLink && n.Title != "" {
			return n.Title
		}
		for _, c := range n.Children {
			if t := find(c); t != "" {
				return t
			}
		}
		return ""
	}
	return find(o.Entries[0])
}

// Count returns the number of entries in the outline, at every depth.
func (o *Outline) Count() int {
	var count func([]*OutlineNode) int
	count = func(nodes []*OutlineNode) int {
		n := 0
		for _, c := range nodes {
			n += 1 + count(c.Children)
		}
		return n
	}
	return count(o.Entries)
}
