// Package call implements the call detector: given a macro body, it finds
// the ordered list of nested macro-call spans, skipping terminal policy
// statements and commented-out text. See spec.md §4.3.
package call

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pranlawate/semacro/internal/macro/scan"
)

// Terminal is the set of keywords treated as non-macro statements or
// non-expandable directives — a call whose name is in this set is never
// treated as a nested macro invocation.
var Terminal = map[string]bool{
	"allow": true, "dontaudit": true, "auditallow": true, "neverallow": true,
	"type_transition": true, "type_change": true, "type_member": true,
	"role_transition": true, "range_transition": true,
	"gen_require": true, "optional_policy": true, "tunable_policy": true,
	"require": true, "type": true, "role": true, "attribute": true,
	"bool": true, "ifdef": true, "ifndef": true, "refpolicywarn": true,
}

var callPattern = regexp.MustCompile(`\b(\w+)\(([^)]*)\)`)

// wrapperStart matches the opening of a backtick-quoted conditional body —
// the real policy convention for optional_policy/tunable_policy/ifdef/
// ifndef/gen_require, e.g. optional_policy(`\n\tinner($1)\n') — up to and
// including the opening backtick.
var wrapperStart = regexp.MustCompile(`\b(optional_policy|tunable_policy|ifdef|ifndef|gen_require)\(\s*` + "`")

// Call is one detected nested macro invocation.
type Call struct {
	Name  string
	Args  []string
	Start int
	End   int
}

// Detect returns every nested macro call in body, in source order,
// applying the terminal-keyword and comment-line filters of spec.md §4.3.
//
// A conditional/directive keyword that wraps its body in the quoted-block
// convention (backtick ... apostrophe) is not matched as a single call
// spanning to the first ')' — doing so would land inside a nested call's
// own argument list and silently swallow it. Instead the quoted interior
// is recursed into, so calls nested inside optional_policy/tunable_policy/
// ifdef/ifndef/gen_require bodies still surface as their own Call entries.
//
// Limitation (spec.md §9, intentional): outside of that quoted-block
// convention, arguments cannot themselves contain parentheses, since the
// plain-form detecting regex stops at the first ')'.
func Detect(body string) []Call {
	var calls []Call
	masked := []byte(body)

	// Walk wrapper matches left to right, skipping past each processed
	// block's end rather than collecting all matches up front: a wrapper
	// nested inside another wrapper (e.g. tunable_policy(`optional_policy(
	// `foo($1)')') must only be handled once, via the outer block's
	// recursive Detect(inner) call below — not a second time as its own
	// top-level match.
	pos := 0
	for pos < len(body) {
		loc := wrapperStart.FindStringSubmatchIndex(body[pos:])
		if loc == nil {
			break
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += pos
			}
		}

		quoteEnd := loc[1] // just after the opening backtick
		blockEnd := scan.FindBlockEnd(body, quoteEnd)
		if blockEnd < 0 {
			pos = loc[1]
			continue
		}
		end := skipToCloseParen(body, blockEnd+1)

		inner := body[quoteEnd:blockEnd]
		for _, c := range Detect(inner) {
			calls = append(calls, Call{
				Name:  c.Name,
				Args:  c.Args,
				Start: c.Start + quoteEnd,
				End:   c.End + quoteEnd,
			})
		}

		for i := loc[0]; i < end && i < len(masked); i++ {
			if masked[i] != '\n' {
				masked[i] = ' '
			}
		}

		pos = end
	}

	maskedBody := string(masked)
	for _, loc := range callPattern.FindAllStringSubmatchIndex(maskedBody, -1) {
		start, end := loc[0], loc[1]
		name := maskedBody[loc[2]:loc[3]]
		argGroup := maskedBody[loc[4]:loc[5]]

		if Terminal[name] {
			continue
		}
		if lineIsComment(body, start) {
			continue
		}

		calls = append(calls, Call{
			Name:  name,
			Args:  splitArgs(argGroup),
			Start: start,
			End:   end,
		})
	}

	sort.Slice(calls, func(i, j int) bool { return calls[i].Start < calls[j].Start })
	return calls
}

// skipToCloseParen returns the index just past the ')' that closes a
// wrapper call, starting the search at pos (just after the body's closing
// apostrophe) and tolerating intervening whitespace. If no ')' is found
// before other content, pos is returned unchanged.
func skipToCloseParen(body string, pos int) int {
	i := pos
	for i < len(body) && (body[i] == ' ' || body[i] == '\t' || body[i] == '\n') {
		i++
	}
	if i < len(body) && body[i] == ')' {
		return i + 1
	}
	return pos
}

// lineIsComment reports whether the text preceding pos on its current
// line, once trimmed, begins with '#' — meaning pos sits inside a
// comment.
func lineIsComment(body string, pos int) bool {
	lineStart := strings.LastIndexByte(body[:pos], '\n') + 1
	prefix := strings.TrimSpace(body[lineStart:pos])
	return strings.HasPrefix(prefix, "#")
}

// splitArgs splits a call's raw argument text on commas and trims each
// element; an empty or whitespace-only group yields no arguments.
func splitArgs(group string) []string {
	if strings.TrimSpace(group) == "" {
		return nil
	}
	parts := strings.Split(group, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}
