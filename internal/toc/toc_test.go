package toc

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/ditagen/internal/config"
	"github.com/dgallion1/ditagen/internal/doctree"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Format
	}{
		{"nested list", "# Guide\n1. [A](a.md)\n    1. [B](b.md)\n", FormatList},
		{"flat list", "- [A](a.md)\n- [B](b.md)\n", FormatList},
		{"headings only", "# Guide\n## A\n### B\n", FormatHeadings},
		{"headings with flat items", "## Part\n- [A](a.md)\n", FormatHeadings},
		{"headings with indented items", "## Part\n  - [A](a.md)\n", FormatList},
		{"tab indented link", "## Part\n\t[A](a.md)\n", FormatList},
		{"empty", "", FormatList},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.raw); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"# User Guide\n1. [A](a.md)", "User Guide", true},
		{"intro\n  #   Spaced  \n", "Spaced", true},
		{"## Not a title\n", "", false},
		{"#NoSpace\n", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractTitle(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ExtractTitle(%q): expected (%q, %v), got (%q, %v)", tt.raw, tt.want, tt.wantOK, got, ok)
		}
	}
}

func TestHeadingsToList(t *testing.T) {
	raw := `# Guide

## 1. Getting Started
- [Install](install.md)
- [Configure](configure.md)

### 1.1 Advanced
1. [Tuning](tuning.md)

## Reference
`
	want := "1. Getting Started\n" +
		"    1. [Install](install.md)\n" +
		"    2. [Configure](configure.md)\n" +
		"    3. Advanced\n" +
		"        1. [Tuning](tuning.md)\n" +
		"2. Reference"

	if got := HeadingsToList(raw); got != want {
		t.Errorf("unexpected list:\n%s\nwant:\n%s", got, want)
	}
}

func TestHeadingsToList_SkippedLevelIsClamped(t *testing.T) {
	got := HeadingsToList("## A\n#### B\n## C\n")
	want := "1. A\n    1. B\n2. C"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSuppressBlankLines(t *testing.T) {
	raw := "1. A\n    1. B\n\n    2. C\n\n2. D\n"
	want := "1. A\n    1. B\n    2. C\n\n2. D\n"
	if got := SuppressBlankLines(raw); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestParse_ListOutline(t *testing.T) {
	raw := `# User Guide

1. [Introduction](intro.html)
    1. [Setup](setup/index.md)

    2. [First steps](https://docs.example.com/first.html)
2. Concepts
    1. [Topics](concepts/topics.md)
3. [GitHub](https://github.com/example)
`
	outline, format, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format != FormatList {
		t.Errorf("expected list format, got %s", format)
	}
	if outline.Title != "User Guide" {
		t.Errorf("expected title %q, got %q", "User Guide", outline.Title)
	}
	if len(outline.Entries) != 3 {
		t.Fatalf("expected 3 top-level entries, got %d", len(outline.Entries))
	}

	intro := outline.Entries[0]
	if intro.Kind != doctree.OutlineLink || intro.Target != "intro.html" || intro.Title != "Introduction" {
		t.Errorf("unexpected first entry %+v", intro)
	}
	if len(intro.Children) != 2 {
		t.Fatalf("expected blank line between children to be ignored, got %d children", len(intro.Children))
	}
	if intro.Children[1].Target != "https://docs.example.com/first.html" {
		t.Errorf("unexpected child target %q", intro.Children[1].Target)
	}

	concepts := outline.Entries[1]
	if concepts.Kind != doctree.OutlineContainer || concepts.Title != "Concepts" {
		t.Errorf("expected container %q, got %+v", "Concepts", concepts)
	}
	if len(concepts.Children) != 1 || concepts.Children[0].Title != "Topics" {
		t.Errorf("unexpected container children %+v", concepts.Children)
	}

	if outline.Count() != 6 {
		t.Errorf("expected 6 entries in total, got %d", outline.Count())
	}
}

func TestParse_HeadingOutline(t *testing.T) {
	raw := `# Handbook
## Basics
### [Install](install.md)
### [Upgrade](upgrade.md)
## [FAQ](faq.md)
`
	outline, format, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if format != FormatHeadings {
		t.Errorf("expected heading format, got %s", format)
	}
	if outline.Title != "Handbook" {
		t.Errorf("expected title %q, got %q", "Handbook", outline.Title)
	}
	if len(outline.Entries) != 2 {
		t.Fatalf("expected 2 top-level entries, got %d", len(outline.Entries))
	}

	basics := outline.Entries[0]
	if basics.Kind != doctree.OutlineContainer || basics.Title != "Basics" {
		t.Errorf("expected container %q, got %+v", "Basics", basics)
	}
	if len(basics.Children) != 2 {
		t.Fatalf("expected level-3 headings to nest one level deeper, got %d children", len(basics.Children))
	}
	if basics.Children[1].Target != "upgrade.md" {
		t.Errorf("unexpected target %q", basics.Children[1].Target)
	}
	if faq := outline.Entries[1]; faq.Kind != doctree.OutlineLink || faq.Target != "faq.md" {
		t.Errorf("unexpected last entry %+v", faq)
	}
}

func TestParse_SectionsWithNumberedLinks(t *testing.T) {
	raw := `# Title
## Section 1
1. [Link 1](url1)
2. [Link 2](url2)
### Subsection 1.1
1. [Link 3](url3)
## Section 2
1. [Link 4](url4)
`
	outline, _, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var shape func(nodes []*doctree.OutlineNode, depth int) []string
	shape = func(nodes []*doctree.OutlineNode, depth int) []string {
		var out []string
		for _, n := range nodes {
			line := strings.Repeat("  ", depth) + n.Title
			if n.Kind == doctree.OutlineLink {
				line += " -> " + n.Target
			}
			out = append(out, line)
			out = append(out, shape(n.Children, depth+1)...)
		}
		return out
	}

	want := []string{
		"Section 1",
		"  Link 1 -> url1",
		"  Link 2 -> url2",
		"  Subsection 1.1",
		"    Link 3 -> url3",
		"Section 2",
		"  Link 4 -> url4",
	}
	got := shape(outline.Entries, 0)
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("unexpected outline:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestParse_LooseList(t *testing.T) {
	raw := "- [A](a.md)\n\n- [B](b.md)\n"
	outline, _, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outline.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(outline.Entries))
	}
	for i, want := range []string{"a.md", "b.md"} {
		if outline.Entries[i].Target != want {
			t.Errorf("entry[%d]: expected %q, got %q", i, want, outline.Entries[i].Target)
		}
	}
}

func TestParse_Empty(t *testing.T) {
	outline, _, err := Parse(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outline.Entries) != 0 {
		t.Errorf("expected no entries, got %d", len(outline.Entries))
	}
	if got := outline.FirstLinkTitle(); got != "" {
		t.Errorf("expected no link title, got %q", got)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toc.md")
	_, _, err := LoadFile(path)
	if !errors.Is(err, config.ErrOutlineMissing) {
		t.Fatalf("expected ErrOutlineMissing, got %v", err)
	}
	var inputErr *config.InputError
	if !errors.As(err, &inputErr) || inputErr.Path != path {
		t.Errorf("expected input error naming %q, got %v", path, err)
	}
}
