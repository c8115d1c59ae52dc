// Package toc reads the table of contents that drives a conversion run. Both
// nested-list and heading-based outlines are accepted and reduced to one
// canonical outline.
package toc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/dgallion1/ditagen/internal/config"
	"github.com/dgallion1/ditagen/internal/doctree"
	"github.com/dgallion1/ditagen/internal/parser"
	"golang.org/x/net/html"
)

// LoadFile reads and parses the outline at path.
func LoadFile(path string) (*doctree.Outline, Format, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, FormatList, &config.InputError{Path: path, Err: config.ErrOutlineMissing}
		}
		return nil, FormatList, fmt.Errorf("read outline: %w", err)
	}
	return Parse(raw)
}

// Parse normalizes raw outline text and returns its entries in document
// order. Every top-level list of the canonical outline contributes entries.
func Parse(raw []byte) (*doctree.Outline, Format, error) {
	res := Normalize(string(raw))

	doc, err := parser.RenderHTML([]byte(res.Canonical))
	if err != nil {
		return nil, res.Format, fmt.Errorf("parse outline: %w", err)
	}

	out := &doctree.Outline{Title: res.Title}
	for _, list := range topLevelLists(doc) {
		out.Entries = append(out.Entries, entries(list)...)
	}
	return out, res.Format, nil
}

func topLevelLists(n *html.Node) []*html.Node {
	var lists []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if isList(c) {
				lists = append(lists, c)
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return lists
}

func entries(list *html.Node) []*doctree.OutlineNode {
	var out []*doctree.OutlineNode
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		out = append(out, outlineEntry(li))
	}
	return out
}

func outlineEntry(li *html.Node) *doctree.OutlineNode {
	node := &doctree.OutlineNode{Kind: doctree.OutlineContainer}
	if a := directLink(li); a != nil {
		node.Kind = doctree.OutlineLink
		node.Target = attr(a, "href")
		node.Title = text(a)
	} else {
		node.Title = label(li)
	}

	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if isList(c) {
			node.Children = append(node.Children, entries(c)...)
		}
	}
	return node
}

// directLink finds a link that is the item's own: a direct child, or a
// direct child of the item's paragraph in a loose list.
func directLink(li *html.Node) *html.Node {
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.Data == "a" && hasAttr(c, "href") {
			return c
		}
		if c.Data == "p" {
			for pc := c.FirstChild; pc != nil; pc = pc.NextSibling {
				if pc.Type == html.ElementNode && pc.Data == "a" && hasAttr(pc, "href") {
					return pc
				}
			}
		}
	}
	return nil
}

// label is the item's own text, ignoring nested lists.
func label(li *html.Node) string {
	var sb strings.Builder
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if isList(c) {
			continue
		}
		sb.WriteString(text(c))
		sb.WriteByte(' ')
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func isList(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.Data == "ul" || n.Data == "ol")
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
