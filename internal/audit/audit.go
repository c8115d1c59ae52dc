// Package audit records every degraded decision a conversion run makes so the
// run can be reviewed afterwards. Nothing recorded here aborts a run.
package audit

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"
)

// Kind classifies a recorded condition.
type Kind string

const (
	ConfigurationFatal    Kind = "configuration_fatal"
	SourceMissing         Kind = "source_missing"
	LinkUnresolved        Kind = "link_unresolved"
	AssetUnembeddable     Kind = "asset_unembeddable"
	AssetPathUnresolvable Kind = "asset_path_unresolvable"
	ExternalEntry         Kind = "external_entry"
)

// Kinds lists every kind in report order.
var Kinds = []Kind{
	ConfigurationFatal,
	SourceMissing,
	LinkUnresolved,
	AssetUnembeddable,
	AssetPathUnresolvable,
	ExternalEntry,
}

var kindTitles = map[Kind]string{
	ConfigurationFatal:    "Configuration errors",
	SourceMissing:         "Missing sources",
	LinkUnresolved:        "Unresolved links",
	AssetUnembeddable:     "Dropped images",
	AssetPathUnresolvable: "Unresolvable image paths",
	ExternalEntry:         "Outline entries omitted from the map",
}

// Title is the human-readable heading for a kind.
func (k Kind) Title() string {
	if t, ok := kindTitles[k]; ok {
		return t
	}
	return string(k)
}

// Event is one degraded decision.
type Event struct {
	Kind    Kind   `json:"kind"`
	TopicID int    `json:"topic_id,omitempty"` // 0 for run-level events
	Topic   string `json:"topic,omitempty"`
	Source  string `json:"source,omitempty"`
	Subject string `json:"subject"`
	Detail  string `json:"detail,omitempty"`
}

// Recorder collects events from concurrent translators. A nil Recorder
// discards everything.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	log    *slog.Logger
}

func NewRecorder(log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{log: log}
}

// Record stores e and logs it as a warning.
func (r *Recorder) Record(e Event) {
	if r == nil {
		return
	}
	r.log.Warn(string(e.Kind),
		"topic", e.Topic,
		"source", e.Source,
		"subject", e.Subject,
		"detail", e.Detail,
	)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns the recorded events ordered by topic id. Events of one topic
// keep the order they were recorded in.
func (r *Recorder) Events() []Event {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	r.mu.Unlock()

	slices.SortStableFunc(out, func(a, b Event) int {
		return cmp.Compare(a.TopicID, b.TopicID)
	})
	return out
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Len returns the total number of events.
func (r *Recorder) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
