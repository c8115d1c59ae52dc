package toc

import (
	"fmt"
	"regexp"
	"strings"
)

// Format is the notation an outline was written in.
type Format int

const (
	FormatList Format = iota
	FormatHeadings
)

func (f Format) String() string {
	if f == FormatHeadings {
		return "headings"
	}
	return "list"
}

// indent is the per-level indentation of generated entries. CommonMark needs
// at least the width of the "N. " marker to nest, four covers up to "99. ".
const indent = "    "

var (
	numberedItem  = regexp.MustCompile(`^\d+[.)]\s+(.*)$`)
	bulletItem    = regexp.MustCompile(`^[-*+]\s+(.*)$`)
	sectionNumber = regexp.MustCompile(`^[\d.]+\s+(.+)$`)
)

// Result is a normalized outline.
type Result struct {
	Canonical string // nested Markdown list
	Title     string // from the first "# " heading, empty if none
	Format    Format // notation the input was detected as
}

// Normalize reduces either outline notation to one nested Markdown list.
func Normalize(raw string) Result {
	res := Result{Format: DetectFormat(raw)}
	res.Title, _ = ExtractTitle(raw)

	text := raw
	if res.Format == FormatHeadings {
		text = HeadingsToList(raw)
	}
	res.Canonical = SuppressBlankLines(text)
	return res
}

// ExtractTitle returns the text of the first top-level heading line.
func ExtractTitle(raw string) (string, bool) {
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			title := strings.TrimSpace(trimmed[2:])
			return title, title != ""
		}
	}
	return "", false
}

// DetectFormat reports FormatHeadings when the outline has heading lines but
// no indented list lines.
func DetectFormat(raw string) Format {
	hasHeadings := false
	hasIndentedList := false
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			hasHeadings = true
		}
		if isIndented(line) && looksLikeListEntry(trimmed) {
			hasIndentedList = true
		}
	}
	if hasHeadings && !hasIndentedList {
		return FormatHeadings
	}
	return FormatList
}

// HeadingsToList converts a heading-based outline into a nested numbered list.
// A heading at level L becomes an entry at depth L-2 (level 1 is the title and
// is skipped). List lines under a heading become its children. Skipped heading
// levels are clamped so every entry is at most one level below its parent.
func HeadingsToList(raw string) string {
	var out []string
	var stack []int // open heading levels, outermost first
	counters := make(map[int]int)
	childDepth := 0

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, "#") {
			level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
			text := strings.TrimSpace(trimmed[level:])
			if level == 1 {
				continue
			}

			for len(stack) > 0 && stack[len(stack)-1] >= level {
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, level)

			depth := min(level-2, len(stack)-1)
			for d := range counters {
				if d > depth {
					delete(counters, d)
				}
			}
			counters[depth]++
			out = append(out, entry(depth, counters[depth], stripSectionNumber(text)))
			childDepth = depth + 1
			continue
		}

		content, ok := listItemContent(trimmed)
		if !ok {
			continue
		}
		counters[childDepth]++
		out = append(out, entry(childDepth, counters[childDepth], content))
	}

	return strings.Join(out, "\n")
}

// SuppressBlankLines drops blank lines sitting between two indented lines,
// which would otherwise split one nested list into two.
func SuppressBlankLines(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := make([]string, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" && i > 0 && i < len(lines)-1 {
			prev, next := lines[i-1], lines[i+1]
			if isIndentedContent(prev) && isIndentedContent(next) {
				continue
			}
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func entry(depth, n int, text string) string {
	return fmt.Sprintf("%s%d. %s", strings.Repeat(indent, depth), n, text)
}

func stripSectionNumber(text string) string {
	if m := sectionNumber.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

func listItemContent(trimmed string) (string, bool) {
	if m := numberedItem.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := bulletItem.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

func looksLikeListEntry(trimmed string) bool {
	if strings.HasPrefix(trimmed, "[") {
		return true
	}
	_, ok := listItemContent(trimmed)
	return ok
}

func isIndented(line string) bool {
	return strings.HasPrefix(line, "  ") || strings.HasPrefix(line, "\t")
}

func isIndentedContent(line string) bool {
	return strings.TrimSpace(line) != "" && isIndented(line)
}
