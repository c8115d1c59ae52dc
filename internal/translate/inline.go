package translate

import (
	"github.com/dgallion1/ditagen/internal/audit"
	"github.com/dgallion1/ditagen/internal/corpus"
	"github.com/dgallion1/ditagen/internal/dita"
	"github.com/dgallion1/ditagen/internal/doctree"
)

func (d *document) inlines(nodes []*doctree.Node, scope ImageContext) []dita.Inline {
	var out []dita.Inline
	for _, n := range nodes {
		out = append(out, d.inline(n, scope)...)
	}
	return out
}

func (d *document) inline(n *doctree.Node, scope ImageContext) []dita.Inline {
	switch n.Kind {
	case doctree.KindText:
		if n.Value == "" {
			return nil
		}
		return []dita.Inline{&dita.Text{Value: n.Value}}

	case doctree.KindLineBreak:
		return []dita.Inline{&dita.Text{Value: " "}}

	case doctree.KindCode:
		return []dita.Inline{&dita.Codeph{Value: n.Value}}

	case doctree.KindBold:
		if content := d.inlines(n.Children, scope); len(content) > 0 {
			return []dita.Inline{&dita.Bold{Content: content}}
		}
		return nil

	case doctree.KindItalic:
		if content := d.inlines(n.Children, scope); len(content) > 0 {
			return []dita.Inline{&dita.Italic{Content: content}}
		}
		return nil

	case doctree.KindSpan:
		scope.InSpan = true
		return d.inlines(n.Children, scope)

	case doctree.KindLink:
		return d.link(n, scope)

	case doctree.KindImage:
		if img := d.image(n, scope); img != nil {
			return []dita.Inline{img}
		}
		return nil

	case doctree.KindCodeBlock:
		return []dita.Inline{&dita.Codeph{Value: n.Value}}

	case doctree.KindDocument, doctree.KindParagraph, doctree.KindHeading, doctree.KindList,
		doctree.KindListItem, doctree.KindTable, doctree.KindTableSection, doctree.KindTableRow,
		doctree.KindTableCell:
		return d.inlines(n.Children, scope)
	}

	unhandled(d.log, n.Kind)
	return d.inlines(n.Children, scope)
}

// link renders a cross reference to an indexed page or another site.
// Anything else keeps its text and loses the link.
func (d *document) link(n *doctree.Node, scope ImageContext) []dita.Inline {
	content := d.inlines(n.Children, scope)

	target, rec, err := d.resolve(n.Href)
	switch {
	case err != nil:
		d.record(audit.LinkUnresolved, n.Href, err.Error())
		return content
	case rec != nil:
		return []dita.Inline{&dita.XRef{Href: rec.Filename, Format: "dita", Content: content}}
	case target.Kind == corpus.TargetExternal:
		return []dita.Inline{&dita.XRef{Href: target.URL, Format: "html", Scope: "external", Content: content}}
	case target.Kind == corpus.TargetAnchor:
		d.log.Debug("dropping in-page link", "href", n.Href)
		return content
	}

	d.record(audit.LinkUnresolved, n.Href, "no topic for key "+target.Key)
	return content
}

// resolve looks href up in the index, trying each link base in turn and, for
// absolute on-site URLs, the bare URL path.
func (d *document) resolve(href string) (corpus.Target, *corpus.TopicRecord, error) {
	var first corpus.Target
	for i, base := range d.bases {
		target, err := d.Resolver.Resolve(href, base)
		if err != nil {
			return target, nil, err
		}
		if i == 0 {
			first = target
		}
		if target.Kind != corpus.TargetInternal {
			return target, nil, nil
		}
		if rec, ok := d.Index.Lookup(target.Key); ok {
			return target, rec, nil
		}
	}

	if p, ok := d.Resolver.SitePath(href); ok {
		if rec, ok := d.Index.Lookup(corpus.Key(p, "")); ok {
			return first, rec, nil
		}
	}
	return first, nil, nil
}
