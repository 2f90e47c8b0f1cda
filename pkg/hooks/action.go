package hooks

import (
	"encoding/json"
	"fmt"
)

// ActionKind distinguishes the two executable action forms.
type ActionKind string

const (
	ActionCommand ActionKind = "command"
	ActionPrompt  ActionKind = "prompt"
)

// Default timeouts in seconds. Prompt actions always run with the fixed
// prompt timeout; an explicit timeout on a prompt action is ignored.
const (
	DefaultCommandTimeout = 60
	PromptTimeout         = 300
)

// Action is one executable unit of a hook entry.
type Action struct {
	Kind           ActionKind
	Payload        string
	TimeoutSeconds int
}

// actionWire is the persisted shape of an action: the payload field name
// depends on the kind ("command" or "prompt").
type actionWire struct {
	Type    string `json:"type"`
	Command string `json:"command,omitempty"`
	Prompt  string `json:"prompt,omitempty"`
	Timeout int    `json:"timeout,omitempty"`
}

// MarshalJSON writes the action in its persisted shape.
func (a Action) MarshalJSON() ([]byte, error) {
	w := actionWire{Type: string(a.Kind), Timeout: a.TimeoutSeconds}
	switch a.Kind {
	case ActionCommand:
		w.Command = a.Payload
	case ActionPrompt:
		w.Prompt = a.Payload
	default:
		return nil, fmt.Errorf("unknown action kind %q", a.Kind)
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the persisted shape back into an Action.
func (a *Action) UnmarshalJSON(data []byte) error {
	var w actionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	a.Kind = ActionKind(w.Type)
	a.TimeoutSeconds = w.Timeout
	switch a.Kind {
	case ActionPrompt:
		a.Payload = w.Prompt
	default:
		a.Payload = w.Command
	}
	return nil
}

// normalize fills in default timeouts. Prompt actions are pinned to the
// fixed prompt timeout regardless of input.
func (a *Action) normalize() {
	if a.Kind == ActionPrompt {
		a.TimeoutSeconds = PromptTimeout
		return
	}
	if a.TimeoutSeconds <= 0 {
		a.TimeoutSeconds = DefaultCommandTimeout
	}
}

func (a Action) equal(other Action) bool {
	return a.Kind == other.Kind && a.Payload == other.Payload && a.TimeoutSeconds == other.TimeoutSeconds
}
