package audit

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRecorder_EventsOrderedByTopic(t *testing.T) {
	r := NewRecorder(discard)
	r.Record(Event{Kind: LinkUnresolved, TopicID: 3, Subject: "a"})
	r.Record(Event{Kind: ExternalEntry, Subject: "outline"})
	r.Record(Event{Kind: SourceMissing, TopicID: 1, Subject: "b"})
	r.Record(Event{Kind: LinkUnresolved, TopicID: 3, Subject: "c"})

	got := r.Events()
	want := []string{"outline", "b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(got))
	}
	for i, e := range got {
		if e.Subject != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], e.Subject)
		}
	}
	if n := r.Count(LinkUnresolved); n != 2 {
		t.Errorf("expected 2 unresolved links, got %d", n)
	}
	if r.Len() != 4 {
		t.Errorf("expected 4 events, got %d", r.Len())
	}
}

func TestRecorder_Concurrent(t *testing.T) {
	r := NewRecorder(discard)
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Record(Event{Kind: AssetUnembeddable, TopicID: i + 1, Subject: "img"})
		}()
	}
	wg.Wait()
	if r.Len() != 20 {
		t.Fatalf("expected 20 events, got %d", r.Len())
	}
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	r.Record(Event{Kind: SourceMissing})
	if r.Len() != 0 || r.Count(SourceMissing) != 0 || r.Events() != nil {
		t.Error("expected nil recorder to discard events")
	}
}

func TestRecorder_LogsWarning(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(slog.New(slog.NewTextHandler(&buf, nil)))
	r.Record(Event{Kind: LinkUnresolved, Topic: "topic_2", Subject: "nowhere.html"})
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "nowhere.html") {
		t.Errorf("unexpected log output %q", out)
	}
}

func TestKindTitle(t *testing.T) {
	if SourceMissing.Title() != "Missing sources" {
		t.Errorf("unexpected title %q", SourceMissing.Title())
	}
	if Kind("other").Title() != "other" {
		t.Errorf("expected unknown kind to fall back to its name")
	}
}

func TestWriteReport(t *testing.T) {
	sum := Summary{
		Title:        "User Guide",
		SourceDir:    "md",
		OutputDir:    "dita",
		MapFile:      "userguide.ditamap",
		Topics:       3,
		Placeholders: 1,
		Started:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:     1500 * time.Millisecond,
	}
	events := []Event{
		{Kind: SourceMissing, TopicID: 2, Topic: "topic_2", Source: "gone.md", Subject: "gone.md"},
		{Kind: LinkUnresolved, TopicID: 1, Topic: "topic_1", Source: "intro.md", Subject: "a|b.html", Detail: "not in\noutline"},
	}

	var buf bytes.Buffer
	if err := WriteReport(&buf, sum, events); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"# Conversion Report",
		"User Guide",
		"1.5s",
		"## Degradations",
		"### Missing sources",
		"### Unresolved links",
		`a\|b.html`,
		"not in outline",
		"1 topic(s) were generated from missing sources",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected report to contain %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "### Dropped images") {
		t.Error("expected kinds without events to have no detail section")
	}
}

func TestWriteReport_Clean(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, Summary{Title: "Guide"}, nil); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	if !strings.Contains(buf.String(), "No degraded decisions were recorded.") {
		t.Errorf("expected clean-run tip:\n%s", buf.String())
	}
}
