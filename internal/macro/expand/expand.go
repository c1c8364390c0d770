// Package expand implements the recursive expander: given an index, a
// macro name, and an argument list, it produces the bounded expansion
// tree described in spec.md §4.6.
package expand

import (
	"regexp"
	"strings"

	"github.com/pranlawate/semacro/internal/macro/call"
	"github.com/pranlawate/semacro/internal/macro/domain"
	"github.com/pranlawate/semacro/internal/macro/inline"
	"github.com/pranlawate/semacro/internal/macro/scan"
	"github.com/pranlawate/semacro/internal/macro/subst"
)

// DefaultMaxDepth is the recursion ceiling used when a caller does not
// specify one — spec.md §4.6.
const DefaultMaxDepth = 10

// sentinel is the leaf text inserted when the depth limit is reached.
const sentinel = "... (max depth reached)"

// admissionPrefixes are the statement keywords a leaf-admission check
// recognises (spec.md §4.6 "Leaf-admission rule"), in addition to any
// line ending in ';'.
var admissionPrefixes = []string{
	"allow", "dontaudit", "auditallow", "neverallow",
	"type_transition", "type_change", "type_member", "role_transition",
}

var genRequireStart = regexp.MustCompile("gen_require\\(\\s*`")

// Expand recursively expands name(args) against idx, bounded to maxDepth
// levels of recursion, and returns the resulting tree. maxDepth <= 0 uses
// DefaultMaxDepth. Never panics and never returns an error — degenerate
// input (unresolved calls, cycles, unknown macros) is represented as
// tree content, per spec.md §4.9 and §9.
func Expand(idx *domain.Index, name string, args []string, maxDepth int) *domain.ExpansionNode {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return expand(idx, name, args, 0, maxDepth)
}

func expand(idx *domain.Index, name string, args []string, depth, maxDepth int) *domain.ExpansionNode {
	label := domain.CallString(name, args)

	if depth > maxDepth {
		node := domain.Internal(label)
		node.AddChild(domain.Leaf(sentinel))
		return node
	}

	def, ok := idx.Lookup(name)
	if !ok {
		return domain.Leaf(label)
	}

	body := def.Body
	if len(args) > 0 {
		body = subst.Substitute(body, args)
	}
	body = stripGenRequire(body)

	node := domain.Internal(label)

	calls := call.Detect(body)
	if len(calls) == 0 {
		for _, line := range admittedLines(body) {
			node.AddChild(domain.Leaf(inline.FlattenBraces(inline.InlineDefines(line, idx))))
		}
		return node
	}

	cursor := 0
	for _, c := range calls {
		for _, line := range admittedLines(body[cursor:c.Start]) {
			node.AddChild(domain.Leaf(inline.FlattenBraces(inline.InlineDefines(line, idx))))
		}

		if _, known := idx.Lookup(c.Name); known {
			node.AddChild(expand(idx, c.Name, c.Args, depth+1, maxDepth))
		} else {
			node.AddChild(domain.Leaf(domain.CallString(c.Name, c.Args)))
		}

		cursor = c.End
	}
	for _, line := range admittedLines(body[cursor:]) {
		node.AddChild(domain.Leaf(inline.FlattenBraces(inline.InlineDefines(line, idx))))
	}

	return node
}

// admittedLines splits text into non-blank, non-comment lines and keeps
// only those eligible under spec.md §4.6's leaf-admission rule: the line
// must end in ';' or begin (after trimming) with one of the AV/transition
// statement keywords. Everything else — directive noise between nested
// calls — is discarded.
func admittedLines(text string) []string {
	var out []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !admitted(line) {
			continue
		}
		out = append(out, line)
	}
	return out
}

func admitted(line string) bool {
	if strings.HasSuffix(line, ";") {
		return true
	}
	for _, kw := range admissionPrefixes {
		if strings.HasPrefix(line, kw) {
			return true
		}
	}
	return false
}

// stripGenRequire removes every gen_require(`...') block from body — these
// declare symbols required by the macro processor and never yield policy
// rules (spec.md §4.6 step 5, §8 invariant 7).
func stripGenRequire(body string) string {
	for {
		loc := genRequireStart.FindStringIndex(body)
		if loc == nil {
			return body
		}
		bodyStart := loc[1]
		end := scan.FindBlockEnd(body, bodyStart)
		if end < 0 {
			// Unmatched block: drop the opening marker only so we make
			// forward progress and don't loop forever.
			body = body[:loc[0]] + body[loc[1]:]
			continue
		}
		// Consume the block's trailing ')' if present, mirroring the
		// scanner's "don't consume the outer call's closing paren"
		// discipline but here the whole gen_require(...) call is removed.
		closeParen := end + 1
		if closeParen < len(body) && body[closeParen] == ')' {
			closeParen++
		}
		body = body[:loc[0]] + body[closeParen:]
	}
}
