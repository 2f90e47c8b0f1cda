package hooks

import (
	"fmt"
	"strings"
)

// PathExistsFunc is the filesystem-lookup capability injected by the
// caller. The validator performs no direct I/O; tests supply a fake.
type PathExistsFunc func(path string) bool

// ValidateOptions configures a validation pass.
type ValidateOptions struct {
	// PathExists resolves script references in command payloads. When nil,
	// script existence checks are skipped entirely.
	PathExists PathExistsFunc
}

// Issue is one validation finding, addressed by event and entry index.
type Issue struct {
	Event  Event     `json:"event"`
	Index  int       `json:"index"`
	Kind   ErrorKind `json:"kind"`
	Detail string    `json:"detail"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s[%d]: %s: %s", i.Event, i.Index, i.Kind, i.Detail)
}

// Report aggregates findings from one validation pass. A document is
// valid for persistence iff Errors is empty; warnings never block
// validity but must be surfaced to the caller.
type Report struct {
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Valid reports whether the document may be persisted.
func (r *Report) Valid() bool {
	return len(r.Errors) == 0
}

func (r *Report) addError(event Event, index int, kind ErrorKind, format string, args ...interface{}) {
	r.Errors = append(r.Errors, Issue{Event: event, Index: index, Kind: kind, Detail: fmt.Sprintf(format, args...)})
}

func (r *Report) addWarning(event Event, index int, kind ErrorKind, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, Issue{Event: event, Index: index, Kind: kind, Detail: fmt.Sprintf(format, args...)})
}

// Validate checks every entry of the document against the hook schema
// rules and reports cross-entry duplicates as warnings.
func Validate(doc Document, opts ValidateOptions) *Report {
	report := &Report{}
	for _, event := range doc.Events() {
		seen := make(map[string]int)
		for i, entry := range doc[event] {
			validateEntry(report, event, i, entry, opts)
			key := entry.identity()
			if prev, dup := seen[key]; dup {
				report.addWarning(event, i, DuplicateEntry,
					"duplicates entry %d (matcher %q, description %q)", prev, entry.Matcher, entry.Description)
			} else {
				seen[key] = i
			}
		}
	}
	return report
}

// ValidateEntry checks a single entry, as produced by the generator,
// without cross-entry analysis.
func ValidateEntry(entry Entry, opts ValidateOptions) *Report {
	report := &Report{}
	validateEntry(report, entry.Event, 0, entry, opts)
	return report
}

func validateEntry(report *Report, event Event, index int, entry Entry, opts ValidateOptions) {
	if !event.Recognized() {
		report.addError(event, index, InvalidEvent, "unrecognized event %q", event)
		return
	}
	if event.SupportsMatcher() {
		if entry.Matcher == "" {
			report.addError(event, index, MatcherRequired, "event %q requires a matcher", event)
		} else if err := ValidateMatcher(entry.Matcher); err != nil {
			report.addError(event, index, InvalidMatcherPattern, "%v", err)
		}
	} else if entry.Matcher != "" {
		report.addError(event, index, MatcherNotAllowed, "event %q does not support matchers", event)
	}
	if len(entry.Actions) == 0 {
		report.addError(event, index, EmptyActions, "entry has no actions")
	}
	for ai, action := range entry.Actions {
		if action.Kind != ActionCommand && action.Kind != ActionPrompt {
			report.addError(event, index, InvalidActionKind, "action %d has unknown kind %q", ai, action.Kind)
			continue
		}
		if strings.TrimSpace(action.Payload) == "" {
			report.addError(event, index, EmptyPayload, "action %d has an empty payload", ai)
			continue
		}
		if action.TimeoutSeconds < 0 {
			report.addError(event, index, InvalidTimeout, "action %d has negative timeout %d", ai, action.TimeoutSeconds)
		}
		if action.Kind == ActionCommand && opts.PathExists != nil {
			if script, ok := scriptReference(action.Payload); ok && !opts.PathExists(script) {
				report.addError(event, index, ScriptNotFound, "action %d references missing script %q", ai, script)
			}
		}
	}
}

// scriptExtensions are payload suffixes treated as local script
// references even without an explicit path prefix.
var scriptExtensions = []string{".sh", ".bash", ".py", ".rb", ".js"}

// scriptReference extracts a local script path from a command payload.
// The first whitespace-separated token is treated as a script reference
// when it is an explicit relative or absolute path, or when it carries a
// script extension. Bare executable names resolve through PATH and are
// not checked.
func scriptReference(payload string) (string, bool) {
	fields := strings.Fields(payload)
	if len(fields) == 0 {
		return "", false
	}
	token := fields[0]
	if strings.HasPrefix(token, "./") || strings.HasPrefix(token, "../") || strings.HasPrefix(token, "/") {
		return token, true
	}
	for _, ext := range scriptExtensions {
		if strings.HasSuffix(token, ext) {
			return token, true
		}
	}
	return "", false
}
