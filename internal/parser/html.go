package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/ditagen/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	tree := &doctree.DocTree{Title: stem(filename)}
	if title := findTitle(doc); title != "" {
		tree.Title = title
	}
	tree.Blocks = Blocks(doc)
	return tree, nil
}

// Blocks converts a parsed HTML document (or any subtree) into document
// blocks. Inline content found outside a block is wrapped in paragraphs.
func Blocks(n *html.Node) []*doctree.Node {
	if body := findBody(n); body != nil {
		n = body
	}
	return wrapInline(flow(n.FirstChild, false))
}

// flow converts a run of sibling nodes into a mixed list of block and inline
// nodes. pre disables whitespace collapsing.
func flow(first *html.Node, pre bool) []*doctree.Node {
	var out []*doctree.Node
	for c := first; c != nil; c = c.NextSibling {
		out = append(out, convert(c, pre)...)
	}
	return out
}

func convert(n *html.Node, pre bool) []*doctree.Node {
	switch n.Type {
	case html.TextNode:
		s := n.Data
		if !pre {
			s = collapseSpace(s)
		}
		if s == "" {
			return nil
		}
		return []*doctree.Node{doctree.Text(s)}
	case html.ElementNode:
	default:
		return nil
	}

	switch n.Data {
	case "script", "style", "noscript", "template", "head", "nav", "footer", "header", "input", "hr":
		return nil

	case "p", "dt", "dd", "figcaption", "caption":
		return one(paragraph(flow(n.FirstChild, pre)))

	case "h1", "h2", "h3", "h4", "h5", "h6":
		h := doctree.New(doctree.KindHeading, inlineOnly(flow(n.FirstChild, pre))...)
		h.Level = int(n.Data[1] - '0')
		h.Children = trimInline(h.Children)
		return []*doctree.Node{h}

	case "ul", "ol":
		list := &doctree.Node{Kind: doctree.KindList, Ordered: n.Data == "ol"}
		for li := n.FirstChild; li != nil; li = li.NextSibling {
			if li.Type != html.ElementNode || li.Data != "li" {
				continue
			}
			item := doctree.New(doctree.KindListItem, tidyFlow(flow(li.FirstChild, pre))...)
			list.Append(item)
		}
		return []*doctree.Node{list}

	case "pre":
		return []*doctree.Node{codeBlock(n)}

	case "table":
		return one(table(n))

	case "img":
		return []*doctree.Node{{Kind: doctree.KindImage, Src: attr(n, "src"), Alt: attr(n, "alt")}}

	case "br":
		return []*doctree.Node{{Kind: doctree.KindLineBreak}}

	case "a":
		children := flow(n.FirstChild, pre)
		href, ok := attrOK(n, "href")
		if !ok {
			return children
		}
		link := doctree.New(doctree.KindLink, inlineOnly(children)...)
		link.Href = href
		return []*doctree.Node{link}

	case "span":
		return []*doctree.Node{doctree.New(doctree.KindSpan, inlineOnly(flow(n.FirstChild, pre))...)}

	case "strong", "b":
		return []*doctree.Node{doctree.New(doctree.KindBold, inlineOnly(flow(n.FirstChild, pre))...)}

	case "em", "i":
		return []*doctree.Node{doctree.New(doctree.KindItalic, inlineOnly(flow(n.FirstChild, pre))...)}

	case "code", "kbd", "samp", "tt":
		return []*doctree.Node{{Kind: doctree.KindCode, Value: textContent(n, true)}}
	}

	// Transparent containers (div, section, blockquote, u, sup, ...) contribute
	// their content in place.
	return flow(n.FirstChild, pre)
}

func codeBlock(n *html.Node) *doctree.Node {
	block := &doctree.Node{Kind: doctree.KindCodeBlock}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "code" {
			block.Language = languageOf(attr(c, "class"))
			break
		}
	}
	block.Value = strings.TrimSuffix(textContent(n, true), "\n")
	return block
}

func languageOf(class string) string {
	for _, f := range strings.Fields(class) {
		if lang, ok := strings.CutPrefix(f, "language-"); ok {
			return lang
		}
	}
	return ""
}

func table(n *html.Node) *doctree.Node {
	t := doctree.New(doctree.KindTable)
	var loose *doctree.Node // rows placed directly under <table>

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead", "tbody", "tfoot":
				sec := &doctree.Node{Kind: doctree.KindTableSection, Header: c.Data == "thead"}
				for tr := c.FirstChild; tr != nil; tr = tr.NextSibling {
					if tr.Type == html.ElementNode && tr.Data == "tr" {
						sec.Append(row(tr))
					}
				}
				if len(sec.Children) > 0 {
					t.Append(sec)
				}
				loose = nil
			case "tr":
				if loose == nil {
					loose = &doctree.Node{Kind: doctree.KindTableSection}
					t.Append(loose)
				}
				loose.Append(row(c))
			case "table":
				// skipped
			default:
				walk(c)
			}
		}
	}
	walk(n)

	if len(t.Children) == 0 {
		return nil
	}
	return t
}

func row(tr *html.Node) *doctree.Node {
	r := doctree.New(doctree.KindTableRow)
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		cell := doctree.New(doctree.KindTableCell, tidyFlow(flow(c.FirstChild, false))...)
		cell.Header = c.Data == "th"
		cell.ColSpan = spanAttr(c, "colspan", doctree.MaxColSpan)
		cell.RowSpan = spanAttr(c, "rowspan", doctree.MaxRowSpan)
		r.Append(cell)
	}
	return r
}

func spanAttr(n *html.Node, key string, limit int) int {
	v, err := strconv.Atoi(strings.TrimSpace(attr(n, key)))
	if err != nil || v < 1 {
		return 1
	}
	return min(v, limit)
}

func paragraph(children []*doctree.Node) *doctree.Node {
	children = trimInline(inlineOnly(children))
	if len(children) == 0 {
		return nil
	}
	return doctree.New(doctree.KindParagraph, children...)
}

// wrapInline groups runs of inline nodes into paragraphs.
func wrapInline(nodes []*doctree.Node) []*doctree.Node {
	var out, run []*doctree.Node
	flush := func() {
		if p := paragraph(run); p != nil {
			out = append(out, p)
		}
		run = nil
	}
	for _, n := range nodes {
		if n.Kind.IsInline() {
			run = append(run, n)
			continue
		}
		flush()
		out = append(out, n)
	}
	flush()
	return out
}

// tidyFlow trims whitespace at the edges of each inline run in mixed content
// and drops runs that are only whitespace.
func tidyFlow(nodes []*doctree.Node) []*doctree.Node {
	var out, run []*doctree.Node
	flush := func() {
		out = append(out, trimInline(run)...)
		run = nil
	}
	for _, n := range nodes {
		if n.Kind.IsInline() {
			run = append(run, n)
			continue
		}
		flush()
		out = append(out, n)
	}
	flush()
	return out
}

// inlineOnly flattens any block nodes into their inline content.
func inlineOnly(nodes []*doctree.Node) []*doctree.Node {
	out := make([]*doctree.Node, 0, len(nodes))
	for _, n := range nodes {
		switch {
		case n.Kind.IsInline():
			out = append(out, n)
		case n.Kind == doctree.KindCodeBlock:
			out = append(out, &doctree.Node{Kind: doctree.KindCode, Value: n.Value})
		default:
			out = append(out, inlineOnly(n.Children)...)
		}
	}
	return out
}

// trimInline strips leading and trailing whitespace from a run of inline
// nodes.
func trimInline(nodes []*doctree.Node) []*doctree.Node {
	for len(nodes) > 0 && trimEdge(nodes[0], true) {
		nodes = nodes[1:]
	}
	for len(nodes) > 0 && trimEdge(nodes[len(nodes)-1], false) {
		nodes = nodes[:len(nodes)-1]
	}
	return nodes
}

// trimEdge trims the whitespace at one edge of n and reports whether n is
// left empty and can be dropped.
func trimEdge(n *doctree.Node, left bool) bool {
	switch n.Kind {
	case doctree.KindText:
		if left {
			n.Value = strings.TrimLeft(n.Value, " ")
		} else {
			n.Value = strings.TrimRight(n.Value, " ")
		}
		return n.Value == ""
	case doctree.KindLineBreak:
		return true
	case doctree.KindBold, doctree.KindItalic, doctree.KindSpan:
		for len(n.Children) > 0 {
			i := len(n.Children) - 1
			if left {
				i = 0
			}
			if !trimEdge(n.Children[i], left) {
				break
			}
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
		}
		return len(n.Children) == 0
	}
	return false
}

func collapseSpace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				sb.WriteByte(' ')
			}
			space = true
		default:
			sb.WriteRune(r)
			space = false
		}
	}
	return sb.String()
}

func one(n *doctree.Node) []*doctree.Node {
	if n == nil {
		return nil
	}
	return []*doctree.Node{n}
}

func attr(n *html.Node, key string) string {
	v, _ := attrOK(n, key)
	return v
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func textContent(n *html.Node, raw bool) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	if raw {
		return buf.String()
	}
	return strings.TrimSpace(collapseSpace(buf.String()))
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n, false)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
