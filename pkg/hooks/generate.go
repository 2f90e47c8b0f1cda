package hooks

import (
	"fmt"
	"sort"
	"strings"
)

// GenerateInput carries the typed inputs for building one hook entry.
// Zero values fall back to schema defaults: priority 100, enabled true,
// and the kind-specific action timeout.
type GenerateInput struct {
	Event       Event
	Matcher     string
	Kind        ActionKind
	Payload     string
	Timeout     int
	Description string
	Priority    int
	Disabled    bool
}

// Generate builds a fully-populated, schema-valid entry with a single
// action. It is a pure function: no filesystem access, no side effects,
// and the same input always yields the same entry.
func Generate(in GenerateInput) (*Entry, error) {
	if !in.Event.Recognized() {
		return nil, &GenerateError{Kind: InvalidEvent, Detail: fmt.Sprintf("unrecognized event %q", in.Event)}
	}
	matcher := strings.TrimSpace(in.Matcher)
	if in.Event.SupportsMatcher() {
		if matcher == "" {
			return nil, &GenerateError{Kind: MatcherRequired, Detail: fmt.Sprintf("event %q requires a matcher", in.Event)}
		}
		if err := ValidateMatcher(matcher); err != nil {
			return nil, &GenerateError{Kind: MatcherRequired, Detail: err.Error()}
		}
	} else if matcher != "" {
		return nil, &GenerateError{Kind: MatcherNotAllowed, Detail: fmt.Sprintf("event %q does not support matchers", in.Event)}
	}

	kind := in.Kind
	if kind == "" {
		kind = ActionCommand
	}
	if kind != ActionCommand && kind != ActionPrompt {
		return nil, &GenerateError{Kind: EmptyPayload, Detail: fmt.Sprintf("unknown action kind %q", kind)}
	}
	if strings.TrimSpace(in.Payload) == "" {
		return nil, &GenerateError{Kind: EmptyPayload, Detail: "action payload is empty"}
	}

	action := Action{Kind: kind, Payload: in.Payload, TimeoutSeconds: in.Timeout}
	action.normalize()

	priority := in.Priority
	if priority == 0 {
		priority = DefaultPriority
	}
	description := in.Description
	if description == "" {
		description = fmt.Sprintf("%s hook", in.Event)
	}

	return &Entry{
		Event:       in.Event,
		Matcher:     matcher,
		Description: description,
		Priority:    priority,
		Enabled:     !in.Disabled,
		Actions:     []Action{action},
	}, nil
}

// Template is a pre-filled generation input addressable by name.
type Template struct {
	Name    string
	Summary string
	Input   GenerateInput
}

// builtinTemplates maps template keys to ready-made (event, matcher,
// action) triples for the common hook recipes.
var builtinTemplates = map[string]Template{
	"auto-formatter": {
		Name:    "auto-formatter",
		Summary: "Format files after every write or edit",
		Input: GenerateInput{
			Event:       EventAfterToolUse,
			Matcher:     "Write|Edit",
			Kind:        ActionCommand,
			Payload:     "./scripts/format-changed.sh",
			Description: "format changed files",
			Priority:    50,
		},
	},
	"secret-detector": {
		Name:    "secret-detector",
		Summary: "Scan pending writes for credentials before they land",
		Input: GenerateInput{
			Event:       EventBeforeToolUse,
			Matcher:     "Write|Edit",
			Kind:        ActionCommand,
			Payload:     "./scripts/scan-secrets.sh",
			Description: "block credential leaks",
			Priority:    10,
		},
	},
	"session-logger": {
		Name:    "session-logger",
		Summary: "Record session starts to an audit log",
		Input: GenerateInput{
			Event:       EventSessionStart,
			Matcher:     MatchAll,
			Kind:        ActionCommand,
			Payload:     "./scripts/log-session.sh",
			Description: "append session audit record",
		},
	},
	"prompt-guard": {
		Name:    "prompt-guard",
		Summary: "Review each user prompt against usage policy",
		Input: GenerateInput{
			Event:       EventUserPromptSubmit,
			Kind:        ActionPrompt,
			Payload:     "Review the submitted prompt against the usage policy and flag violations.",
			Description: "policy review of user prompts",
		},
	},
}

// GenerateFromTemplate builds an entry from a named template. Unknown
// keys return UnknownTemplate.
func GenerateFromTemplate(key string) (*Entry, error) {
	tmpl, ok := builtinTemplates[key]
	if !ok {
		return nil, &GenerateError{Kind: UnknownTemplate, Detail: fmt.Sprintf("no template named %q", key)}
	}
	return Generate(tmpl.Input)
}

// Templates returns the built-in templates sorted by name.
func Templates() []Template {
	out := make([]Template, 0, len(builtinTemplates))
	for _, tmpl := range builtinTemplates {
		out = append(out, tmpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
