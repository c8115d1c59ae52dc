// Package corpus assigns stable topic identifiers to the pages an outline
// references and resolves hrefs to those pages.
package corpus

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/dgallion1/ditagen/internal/doctree"
	"github.com/dgallion1/ditagen/internal/parser"
)

// TopicRecord is the identity of one corpus page in the output.
type TopicRecord struct {
	ID         int
	TopicID    string // "topic_<ID>"
	Filename   string // "topic_<ID>.dita"
	Title      string
	Key        string
	SourcePath string
}

// Index maps keys to topic records. It is filled once by Build and only read
// afterwards, so it is safe to share between goroutines.
type Index struct {
	byKey   map[string]*TopicRecord
	records []*TopicRecord
}

// Lookup returns the record for key.
func (idx *Index) Lookup(key string) (*TopicRecord, bool) {
	if idx == nil {
		return nil, false
	}
	rec, ok := idx.byKey[key]
	return rec, ok
}

// Records returns all records in id order.
func (idx *Index) Records() []*TopicRecord {
	if idx == nil {
		return nil
	}
	out := make([]*TopicRecord, len(idx.records))
	copy(out, idx.records)
	return out
}

// Len returns the number of records.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.records)
}

// SourceLocator finds the source file of a key.
type SourceLocator interface {
	Locate(key string) string
}

// DirLocator looks for sources under Root. A key matches "<key><ext>" or
// "<key>/index<ext>" for each of parser.SourceExtensions, in that order.
// When nothing exists it returns "<key>.md" so the caller reports the miss.
type DirLocator struct {
	Root string
}

func (d DirLocator) Locate(key string) string {
	base := filepath.Join(d.Root, filepath.FromSlash(key))
	for _, stem := range []string{base, filepath.Join(base, "index")} {
		for _, ext := range parser.SourceExtensions {
			p := stem + ext
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p
			}
		}
	}
	return base + ".md"
}

// Build walks the outline depth first, left to right, and gives every new
// internal key the next id. The first title seen for a key wins. External
// entries are not indexed, but their children are.
func Build(outline *doctree.Outline, r *Resolver, sources SourceLocator) *Index {
	idx := &Index{byKey: make(map[string]*TopicRecord)}
	if outline == nil {
		return idx
	}

	var walk func([]*doctree.OutlineNode)
	walk = func(nodes []*doctree.OutlineNode) {
		for _, n := range nodes {
			if n.Kind == doctree.OutlineLink {
				if t, err := r.Resolve(n.Target, ""); err == nil && t.Kind == TargetInternal {
					idx.add(t.Key, n.Title, sources)
				}
			}
			walk(n.Children)
		}
	}
	walk(outline.Entries)
	return idx
}

func (idx *Index) add(key, title string, sources SourceLocator) {
	if _, ok := idx.byKey[key]; ok {
		return
	}
	if title == "" {
		title = path.Base(key)
	}
	id := len(idx.records) + 1
	rec := &TopicRecord{
		ID:       id,
		TopicID:  fmt.Sprintf("topic_%d", id),
		Filename: fmt.Sprintf("topic_%d.dita", id),
		Title:    title,
		Key:      key,
	}
	if sources != nil {
		rec.SourcePath = sources.Locate(key)
	}
	idx.byKey[key] = rec
	idx.records = append(idx.records, rec)
}
