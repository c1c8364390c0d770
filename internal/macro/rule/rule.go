// Package rule provides the regex-level parsers for canonical access-vector
// and type-transition rule lines, used by internal/macro/search. See
// spec.md §4.7, §4.8.
package rule

import (
	"regexp"
	"strings"
)

// avPattern is the same "canonical regex" spec.md §4.7 defines for the
// canonicaliser (a separate copy of internal/macro/canon's avLine pattern),
// applied here per §4.8 ("the canonical regex must parse").
// target:class is captured as one group and split on its first ':',
// exactly as the search matcher does by hand in the spec prose.
var avPattern = regexp.MustCompile(`^(allow|dontaudit|auditallow|neverallow)\s+(\S+)\s+(\S+:\S+)\s+\{([^}]+)\}\s*;$`)

// transitionPattern matches a type_transition rule line, with optional
// class and quoted filename (spec.md §4.8).
var transitionPattern = regexp.MustCompile(`^type_transition\s+(\S+)\s+(\S+):(\S+)\s+(\S+)(?:\s+"([^"]*)")?\s*;$`)

// AV is a parsed access-vector rule line.
type AV struct {
	Kind   string
	Source string
	Target string
	Class  string
	Perms  []string
}

// ParseAV parses a canonical access-vector rule line, returning ok=false if
// line does not match the AV grammar.
func ParseAV(line string) (AV, bool) {
	m := avPattern.FindStringSubmatch(line)
	if m == nil {
		return AV{}, false
	}
	target, class, ok := strings.Cut(m[3], ":")
	if !ok {
		return AV{}, false
	}
	return AV{
		Kind:   m[1],
		Source: m[2],
		Target: target,
		Class:  class,
		Perms:  strings.Fields(m[4]),
	}, true
}

// HasPerms reports whether r grants every permission in want (spec.md
// §4.8: "the requested permission set must be a subset of the rule's
// permissions").
func (r AV) HasPerms(want []string) bool {
	have := make(map[string]bool, len(r.Perms))
	for _, p := range r.Perms {
		have[p] = true
	}
	for _, w := range want {
		if !have[w] {
			return false
		}
	}
	return true
}

// Transition is a parsed type_transition rule line.
type Transition struct {
	Source   string
	Parent   string
	Class    string
	NewType  string
	Filename string // empty when the optional quoted filename is absent
}

// ParseTransition parses a canonical type_transition rule line, returning
// ok=false if line does not match the grammar.
func ParseTransition(line string) (Transition, bool) {
	m := transitionPattern.FindStringSubmatch(line)
	if m == nil {
		return Transition{}, false
	}
	return Transition{
		Source:   m[1],
		Parent:   m[2],
		Class:    m[3],
		NewType:  m[4],
		Filename: m[5],
	}, true
}
