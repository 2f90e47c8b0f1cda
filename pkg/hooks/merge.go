package hooks

import "fmt"

// Policy selects how a merge conflict is resolved.
type Policy string

const (
	// PolicyKeepExisting drops colliding incoming entries.
	PolicyKeepExisting Policy = "keep-existing"
	// PolicyReplace substitutes the colliding existing entry with the
	// incoming one, repositioning it only when the priority changed.
	PolicyReplace Policy = "replace"
	// PolicyKeepBoth appends the incoming entry as a distinct entry even
	// though it collides.
	PolicyKeepBoth Policy = "keep-both"
	// PolicyInteractive returns the conflict list without resolving;
	// the caller re-invokes with concrete decisions to complete the merge.
	PolicyInteractive Policy = "interactive"
)

// ParsePolicy validates a policy name from the CLI surface.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyKeepExisting, PolicyReplace, PolicyKeepBoth, PolicyInteractive:
		return Policy(s), nil
	}
	return "", fmt.Errorf("unknown merge policy %q (want keep-existing, replace, keep-both, or interactive)", s)
}

// Conflict is a detected record-level collision: an incoming and an
// existing entry sharing (event, matcher, description) but differing in
// content.
type Conflict struct {
	Event    Event `json:"event"`
	Incoming Entry `json:"incoming"`
	Existing Entry `json:"existing"`
}

// Key addresses a conflict in a per-conflict decision map.
func (c Conflict) Key() string {
	return fmt.Sprintf("%s/%s/%s", c.Event, c.Incoming.Matcher, c.Incoming.Description)
}

// AppliedConflict records which policy resolved a conflict.
type AppliedConflict struct {
	Conflict Conflict `json:"conflict"`
	Policy   Policy   `json:"policy"`
}

// MergeOptions drives conflict resolution. Decisions, keyed by
// Conflict.Key, override Policy for individual conflicts.
type MergeOptions struct {
	Policy    Policy
	Decisions map[string]Policy
}

// MergeResult is the outcome of a merge analysis or commit.
type MergeResult struct {
	// Document is the merged result; nil when the merge ran under the
	// interactive policy and unresolved conflicts remain.
	Document Document
	// Conflicts lists unresolved conflicts (interactive phase one).
	Conflicts []Conflict
	// Applied lists each resolved conflict with the policy that won.
	Applied []AppliedConflict
	// BackupPath references the backup taken before commit; set only by
	// the store layer.
	BackupPath string
}

// Merge folds incoming into existing under the given options. Neither
// input document is mutated. Non-colliding incoming entries are inserted
// in priority order, stable by arrival; identical colliding entries are
// skipped without raising a conflict.
func Merge(existing, incoming Document, opts MergeOptions) (*MergeResult, error) {
	if opts.Policy == "" {
		opts.Policy = PolicyInteractive
	}
	if _, err := ParsePolicy(string(opts.Policy)); err != nil {
		return nil, err
	}

	result := &MergeResult{}
	merged := existing.Clone()

	for _, event := range incoming.Events() {
		for _, entry := range incoming[event] {
			entry.Event = event
			idx := findCollision(merged[event], entry)
			if idx < 0 {
				merged.Add(entry)
				continue
			}
			current := merged[event][idx]
			// A collision with identical content is not a conflict: only
			// keep-both acts on it (a deliberate second copy), the other
			// policies reduce to a no-op.
			identical := current.sameContent(entry)
			policy := opts.Policy
			if !identical {
				conflict := Conflict{Event: event, Incoming: entry, Existing: current}
				if decided, ok := opts.Decisions[conflict.Key()]; ok {
					policy = decided
				}
				if policy == PolicyInteractive {
					result.Conflicts = append(result.Conflicts, conflict)
					continue
				}
				result.Applied = append(result.Applied, AppliedConflict{Conflict: conflict, Policy: policy})
			}
			switch policy {
			case PolicyReplace:
				if identical {
					break
				}
				if current.Priority == entry.Priority {
					merged[event][idx] = entry
				} else {
					merged[event] = append(merged[event][:idx], merged[event][idx+1:]...)
					merged.Add(entry)
				}
			case PolicyKeepBoth:
				merged.Add(entry)
			}
		}
	}

	if len(result.Conflicts) > 0 {
		return result, nil
	}
	result.Document = merged
	return result, nil
}

// findCollision returns the index of the first entry colliding with the
// candidate on (matcher, description), or -1.
func findCollision(entries []Entry, candidate Entry) int {
	key := candidate.identity()
	for i, entry := range entries {
		if entry.identity() == key {
			return i
		}
	}
	return -1
}
