// Package hooks implements the hook configuration pipeline: generation of
// hook entries, validation of configuration documents, and conflict-aware
// merging into a persisted store.
package hooks

// Event is a trigger point in the agent lifecycle. The set of recognized
// events is closed; it is fixed by the configuration schema version.
type Event string

const (
	EventBeforeToolUse    Event = "before-tool-use"
	EventAfterToolUse     Event = "after-tool-use"
	EventUserPromptSubmit Event = "user-prompt-submit"
	EventNotification     Event = "notification"
	EventStop             Event = "stop"
	EventSubagentStop     Event = "subagent-stop"
	EventPreCompact       Event = "pre-compact"
	EventSessionStart     Event = "session-start"
)

// AllEvents returns the recognized events in canonical order. The order is
// stable and is used wherever deterministic event iteration is required.
func AllEvents() []Event {
	return []Event{
		EventBeforeToolUse,
		EventAfterToolUse,
		EventUserPromptSubmit,
		EventNotification,
		EventStop,
		EventSubagentStop,
		EventPreCompact,
		EventSessionStart,
	}
}

// matcherCapable holds the subset of events that support targeting via a
// matcher pattern. All other events are matcher-less.
var matcherCapable = map[Event]bool{
	EventBeforeToolUse: true,
	EventAfterToolUse:  true,
	EventPreCompact:    true,
	EventSessionStart:  true,
}

// Recognized reports whether e is one of the schema's events.
func (e Event) Recognized() bool {
	for _, known := range AllEvents() {
		if e == known {
			return true
		}
	}
	return false
}

// SupportsMatcher reports whether entries for e may (and must) carry a
// matcher pattern.
func (e Event) SupportsMatcher() bool {
	return matcherCapable[e]
}

func (e Event) String() string {
	return string(e)
}
