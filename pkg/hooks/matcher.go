package hooks

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MatchAll is the wildcard matcher: the entry applies to every target of
// its event.
const MatchAll = "*"

// ValidateMatcher checks a matcher pattern for well-formedness. Accepted
// forms are an exact token ("Write"), an alternation of tokens
// ("Write|Edit"), the wildcard "*", and a glob-like namespace prefix
// ("mcp__github/*"). Glob forms are checked with a doublestar pattern
// compile so a malformed pattern is rejected before it reaches the store.
func ValidateMatcher(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("matcher pattern is empty")
	}
	if pattern == MatchAll {
		return nil
	}
	for _, alt := range strings.Split(pattern, "|") {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			return fmt.Errorf("matcher alternation contains an empty token")
		}
		if strings.ContainsAny(alt, "*?[") {
			if !doublestar.ValidatePattern(alt) {
				return fmt.Errorf("invalid glob pattern %q", alt)
			}
		}
	}
	return nil
}

// MatcherApplies reports whether a matcher pattern selects the given
// target (typically a tool name, possibly namespace-qualified). Exact
// tokens compare literally, alternations match any branch, and glob
// forms match with doublestar semantics.
func MatcherApplies(pattern, target string) bool {
	if pattern == MatchAll {
		return true
	}
	for _, alt := range strings.Split(pattern, "|") {
		alt = strings.TrimSpace(alt)
		if alt == target {
			return true
		}
		if strings.ContainsAny(alt, "*?[") {
			if ok, err := doublestar.Match(alt, target); err == nil && ok {
				return true
			}
		}
	}
	return false
}
