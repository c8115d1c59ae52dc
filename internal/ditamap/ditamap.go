// Package ditamap builds the output map from the outline, mirroring its
// hierarchy with references to the indexed topics.
package ditamap

import (
	"log/slog"
	"strings"

	"github.com/dgallion1/ditagen/internal/audit"
	"github.com/dgallion1/ditagen/internal/corpus"
	"github.com/dgallion1/ditagen/internal/dita"
	"github.com/dgallion1/ditagen/internal/doctree"
)

// DefaultTitle is used when neither the caller nor the outline names the
// document.
const DefaultTitle = "Documentation"

// Title picks the map title: explicit, then the outline heading, then the
// first link of the outline, then DefaultTitle.
func Title(explicit string, outline *doctree.Outline) string {
	if t := strings.TrimSpace(explicit); t != "" {
		return t
	}
	if outline != nil {
		if outline.Title != "" {
			return outline.Title
		}
		if t := outline.FirstLinkTitle(); t != "" {
			return t
		}
	}
	return DefaultTitle
}

type builder struct {
	idx   *corpus.Index
	r     *corpus.Resolver
	audit *audit.Recorder
	log   *slog.Logger
}

// Build walks the outline a second time. Linked entries become topic
// references; labeled containers become topic heads. Entries without a topic
// (external links) and unlabeled containers are left out and their children
// take their place.
func Build(outline *doctree.Outline, idx *corpus.Index, r *corpus.Resolver, title string, rec *audit.Recorder, log *slog.Logger) *dita.Map {
	if log == nil {
		log = slog.Default()
	}
	b := &builder{idx: idx, r: r, audit: rec, log: log}

	m := &dita.Map{Title: title}
	if outline != nil {
		m.Refs = b.nodes(outline.Entries)
	}
	log.Debug("built map", "title", title, "refs", len(m.Hrefs()))
	return m
}

func (b *builder) nodes(entries []*doctree.OutlineNode) []dita.MapNode {
	var out []dita.MapNode
	for _, n := range entries {
		out = append(out, b.node(n)...)
	}
	return out
}

func (b *builder) node(n *doctree.OutlineNode) []dita.MapNode {
	children := b.nodes(n.Children)

	if n.Kind == doctree.OutlineLink {
		if rec := b.lookup(n.Target); rec != nil {
			return []dita.MapNode{&dita.TopicRef{Href: rec.Filename, Children: children}}
		}
		b.audit.Record(audit.Event{
			Kind:    audit.ExternalEntry,
			Subject: n.Target,
			Detail:  n.Title,
		})
		return children
	}

	if label := strings.TrimSpace(n.Title); label != "" {
		return []dita.MapNode{&dita.TopicHead{NavTitle: label, Children: children}}
	}
	return children
}

func (b *builder) lookup(target string) *corpus.TopicRecord {
	t, err := b.r.Resolve(target, "")
	if err != nil || t.Kind != corpus.TargetInternal {
		return nil
	}
	rec, _ := b.idx.Lookup(t.Key)
	return rec
}
