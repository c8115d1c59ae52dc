package dita

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	xmlHeader    = `<?xml version="1.0" encoding="UTF-8"?>`
	topicDoctype = `<!DOCTYPE topic PUBLIC "-//OASIS//DTD DITA Topic//EN" "topic.dtd">`
	mapDoctype   = `<!DOCTYPE map PUBLIC "-//OASIS//DTD DITA Map//EN" "map.dtd">`
)

// WriteTopic serializes t as a DITA topic document.
func WriteTopic(out io.Writer, t *Topic) error {
	w := newWriter(out)
	w.line(xmlHeader)
	w.line(topicDoctype)
	w.line(`<topic id="` + escapeAttr(t.ID) + `">`)
	w.depth++
	w.line("<title>" + escapeText(t.Title) + "</title>")
	if len(t.Body) == 0 {
		w.line("<body/>")
	} else {
		w.line("<body>")
		w.depth++
		for _, b := range t.Body {
			b.write(w)
		}
		w.depth--
		w.line("</body>")
	}
	w.depth--
	w.line("</topic>")
	return w.Flush()
}

// WriteMap serializes m as a DITA map document.
func WriteMap(out io.Writer, m *Map) error {
	w := newWriter(out)
	w.line(xmlHeader)
	w.line(mapDoctype)
	w.line("<map>")
	w.depth++
	w.line("<title>" + escapeText(m.Title) + "</title>")
	for _, n := range m.Refs {
		n.writeMap(w)
	}
	w.depth--
	w.line("</map>")
	return w.Flush()
}

// writer emits indented markup. While inline is set, blocks are written
// without indentation or line breaks so they can sit in mixed content.
type writer struct {
	*bufio.Writer
	depth  int
	inline bool
}

func newWriter(out io.Writer) *writer {
	return &writer{Writer: bufio.NewWriter(out)}
}

func (w *writer) line(s string) {
	w.startLine()
	w.WriteString(s)
	w.endLine()
}

func (w *writer) startLine() {
	if !w.inline {
		w.WriteString(strings.Repeat("  ", w.depth))
	}
}

func (w *writer) endLine() {
	if !w.inline {
		w.WriteByte('\n')
	}
}

func (w *writer) content(nodes []Node) {
	prev := w.inline
	w.inline = true
	for _, n := range nodes {
		n.write(w)
	}
	w.inline = prev
}

func (w *writer) inlines(nodes []Inline) {
	prev := w.inline
	w.inline = true
	for _, n := range nodes {
		n.write(w)
	}
	w.inline = prev
}

func (p *Paragraph) write(w *writer) {
	w.startLine()
	w.WriteString("<p>")
	w.inlines(p.Content)
	w.WriteString("</p>")
	w.endLine()
}

func (s *Section) write(w *writer) {
	w.startLine()
	w.WriteString("<section><title>")
	w.inlines(s.Title)
	w.WriteString("</title></section>")
	w.endLine()
}

func (l *List) write(w *writer) {
	tag := "ul"
	if l.Ordered {
		tag = "ol"
	}
	w.line("<" + tag + ">")
	w.depth++
	for _, item := range l.Items {
		w.startLine()
		w.WriteString("<li>")
		w.content(item.Content)
		w.WriteString("</li>")
		w.endLine()
	}
	w.depth--
	w.line("</" + tag + ">")
}

func (c *CodeBlock) write(w *writer) {
	w.startLine()
	if c.Language != "" {
		w.WriteString(`<codeblock outputclass="language-` + escapeAttr(c.Language) + `">`)
	} else {
		w.WriteString("<codeblock>")
	}
	w.WriteString(escapeText(c.Code))
	w.WriteString("</codeblock>")
	w.endLine()
}

func (t *Table) write(w *writer) {
	head, body := t.Head, t.Body
	if len(body) == 0 {
		head, body = nil, head
	}

	w.line("<table>")
	w.depth++
	w.line(`<tgroup cols="` + strconv.Itoa(t.Cols) + `">`)
	w.depth++
	for i := 1; i <= t.Cols; i++ {
		n := strconv.Itoa(i)
		w.line(`<colspec colname="c` + n + `" colnum="` + n + `"/>`)
	}
	if len(head) > 0 {
		writeRows(w, "thead", head)
	}
	writeRows(w, "tbody", body)
	w.depth--
	w.line("</tgroup>")
	w.depth--
	w.line("</table>")
}

func writeRows(w *writer, tag string, rows []*Row) {
	w.line("<" + tag + ">")
	w.depth++
	for _, r := range rows {
		w.line("<row>")
		w.depth++
		for _, e := range r.Entries {
			e.write(w)
		}
		w.depth--
		w.line("</row>")
	}
	w.depth--
	w.line("</" + tag + ">")
}

func (e *Entry) write(w *writer) {
	w.startLine()
	w.WriteString("<entry")
	if e.NameStart != "" && e.NameEnd != "" {
		w.WriteString(` namest="` + escapeAttr(e.NameStart) + `" nameend="` + escapeAttr(e.NameEnd) + `"`)
	}
	if e.MoreRows > 0 {
		w.WriteString(` morerows="` + strconv.Itoa(e.MoreRows) + `"`)
	}
	w.WriteString(">")
	w.content(e.Content)
	w.WriteString("</entry>")
	w.endLine()
}

func (t *Text) write(w *writer) {
	w.WriteString(escapeText(t.Value))
}

func (b *Bold) write(w *writer) {
	w.WriteString("<b>")
	w.inlines(b.Content)
	w.WriteString("</b>")
}

func (i *Italic) write(w *writer) {
	w.WriteString("<i>")
	w.inlines(i.Content)
	w.WriteString("</i>")
}

func (c *Codeph) write(w *writer) {
	w.WriteString("<codeph>" + escapeText(c.Value) + "</codeph>")
}

func (x *XRef) write(w *writer) {
	w.WriteString(`<xref href="` + escapeAttr(x.Href) + `"`)
	if x.Format != "" {
		w.WriteString(` format="` + escapeAttr(x.Format) + `"`)
	}
	if x.Scope != "" {
		w.WriteString(` scope="` + escapeAttr(x.Scope) + `"`)
	}
	w.WriteString(">")
	w.inlines(x.Content)
	w.WriteString("</xref>")
}

func (img *Image) write(w *writer) {
	w.startLine()
	w.WriteString(`<image href="` + escapeAttr(img.Href) + `"`)
	if img.Placement != "" {
		w.WriteString(` placement="` + escapeAttr(img.Placement) + `"`)
	}
	if img.Align != "" {
		w.WriteString(` align="` + escapeAttr(img.Align) + `"`)
	}
	if img.Alt == "" {
		w.WriteString("/>")
	} else {
		w.WriteString("><alt>" + escapeText(img.Alt) + "</alt></image>")
	}
	w.endLine()
}

func (r *TopicRef) writeMap(w *writer) {
	open := `<topicref href="` + escapeAttr(r.Href) + `"`
	if len(r.Children) == 0 {
		w.line(open + "/>")
		return
	}
	w.line(open + ">")
	w.depth++
	for _, c := range r.Children {
		c.writeMap(w)
	}
	w.depth--
	w.line("</topicref>")
}

func (h *TopicHead) writeMap(w *writer) {
	open := `<topichead navtitle="` + escapeAttr(h.NavTitle) + `"`
	if len(h.Children) == 0 {
		w.line(open + "/>")
		return
	}
	w.line(open + ">")
	w.depth++
	for _, c := range h.Children {
		c.writeMap(w)
	}
	w.depth--
	w.line("</topichead>")
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\n", "&#xA;", "\r", "&#xD;", "\t", "&#x9;")
)

func escapeText(s string) string {
	return textEscaper.Replace(validChars(s))
}

func escapeAttr(s string) string {
	return attrEscaper.Replace(validChars(s))
}

// validChars drops runes XML 1.0 does not allow.
func validChars(s string) string {
	ok := true
	for _, r := range s {
		if !isXMLChar(r) {
			ok = false
			break
		}
	}
	if ok {
		return s
	}
	var sb strings.Builder
	for _, r := range s {
		if isXMLChar(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func isXMLChar(r rune) bool {
	switch {
	case r == utf8.RuneError:
		return false
	case r == '\t', r == '\n', r == '\r':
		return true
	case r < 0x20:
		return false
	case r >= 0xD800 && r <= 0xDFFF, r == 0xFFFE, r == 0xFFFF:
		return false
	}
	return true
}
