package hooks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultPriority is assigned to entries that do not specify one. Lower
// values execute first; ties keep insertion order.
const DefaultPriority = 100

// Entry is the unit of configuration: one event binding with an ordered
// list of actions. Matcher must be present (possibly "*") for
// matcher-capable events and absent otherwise.
type Entry struct {
	Event       Event    `json:"-"`
	Matcher     string   `json:"matcher,omitempty"`
	Description string   `json:"description"`
	Priority    int      `json:"priority"`
	Enabled     bool     `json:"enabled"`
	Actions     []Action `json:"hooks"`
}

// identity is the collision key used by the validator and the merger:
// two entries of the same event collide when matcher and description
// both match.
func (e Entry) identity() string {
	return e.Matcher + "\x00" + e.Description
}

// sameContent reports whether two colliding entries are actually
// identical, in which case the merger treats the incoming entry as a
// no-op rather than a conflict.
func (e Entry) sameContent(other Entry) bool {
	if e.Priority != other.Priority || e.Enabled != other.Enabled || len(e.Actions) != len(other.Actions) {
		return false
	}
	for i := range e.Actions {
		if !e.Actions[i].equal(other.Actions[i]) {
			return false
		}
	}
	return true
}

// Document is the root persisted structure: a mapping from event name to
// an ordered sequence of entries.
type Document map[Event][]Entry

// NewDocument returns an empty configuration document.
func NewDocument() Document {
	return make(Document)
}

// ParseDocument decodes the persisted JSON shape and stamps each entry
// with the event it was keyed under.
func ParseDocument(data []byte) (Document, error) {
	var raw map[Event][]Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	doc := make(Document, len(raw))
	for event, entries := range raw {
		for i := range entries {
			entries[i].Event = event
		}
		doc[event] = entries
	}
	return doc, nil
}

// DecodeDocument parses a document in either the persisted JSON shape or
// its YAML equivalent (accepted for hand-written drafts). The persisted
// store itself is always JSON.
func DecodeDocument(data []byte) (Document, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return ParseDocument(data)
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parsing draft document: %w", err)
	}
	jsonBytes, err := json.Marshal(tree)
	if err != nil {
		return nil, err
	}
	return ParseDocument(jsonBytes)
}

// Marshal renders the document in its persisted JSON shape with a
// trailing newline. Map keys serialize in lexical order.
func (d Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(map[Event][]Entry(d), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// UnmarshalJSON applies the schema defaults for fields a hand-edited file
// may omit: priority 100 and enabled true.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var w struct {
		Matcher     string   `json:"matcher"`
		Description string   `json:"description"`
		Priority    *int     `json:"priority"`
		Enabled     *bool    `json:"enabled"`
		Actions     []Action `json:"hooks"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	e.Matcher = w.Matcher
	e.Description = w.Description
	e.Actions = w.Actions
	e.Priority = DefaultPriority
	if w.Priority != nil {
		e.Priority = *w.Priority
	}
	e.Enabled = true
	if w.Enabled != nil {
		e.Enabled = *w.Enabled
	}
	return nil
}

// Clone returns a deep copy. Merge never mutates its inputs.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for event, entries := range d {
		copied := make([]Entry, len(entries))
		copy(copied, entries)
		for i := range copied {
			actions := make([]Action, len(copied[i].Actions))
			copy(actions, copied[i].Actions)
			copied[i].Actions = actions
		}
		out[event] = copied
	}
	return out
}

// Events returns the events present in the document, in canonical order.
func (d Document) Events() []Event {
	var out []Event
	for _, event := range AllEvents() {
		if len(d[event]) > 0 {
			out = append(out, event)
		}
	}
	// Unrecognized keys can appear in hand-edited files; surface them
	// deterministically after the known ones so the validator sees them.
	var unknown []Event
	for event := range d {
		if !event.Recognized() && len(d[event]) > 0 {
			unknown = append(unknown, event)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return append(out, unknown...)
}

// EntryCount returns the total number of entries across all events.
func (d Document) EntryCount() int {
	n := 0
	for _, entries := range d {
		n += len(entries)
	}
	return n
}

// Add inserts an entry into its event's sequence, keeping the sequence
// sorted by priority ascending with stable ties (the new entry lands
// after existing entries of equal priority).
func (d Document) Add(entry Entry) {
	entries := d[entry.Event]
	idx := sort.Search(len(entries), func(i int) bool {
		return entries[i].Priority > entry.Priority
	})
	entries = append(entries, Entry{})
	copy(entries[idx+1:], entries[idx:])
	entries[idx] = entry
	d[entry.Event] = entries
}
