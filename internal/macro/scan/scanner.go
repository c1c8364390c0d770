// Package scan implements the quoted-block scanner: given the text of a
// policy source file, it yields every top-level interface/template/define
// definition as a (kind, name, body, line) tuple. See spec.md §4.1.
package scan

import (
	"regexp"
	"strings"
)

// Definition is one scanned macro header plus its raw (unprocessed) body.
type Definition struct {
	Kind       string // "interface", "template", or "define"
	Name       string
	Body       string
	LineNumber int // 1-based line of the definition keyword
}

// header matches the opening of a definition at the start of a line:
// kind(`name',` — the trailing backtick is the opening quote of the body.
var header = regexp.MustCompile(`(?m)^(interface|template|define)\(\s*` + "`" + `([^']+)'\s*,\s*` + "`")

// Scan extracts every definition from text. Unmatched blocks (a header
// whose body quote is never closed) are silently dropped, not fatal —
// spec.md §4.1, §4.9.
func Scan(text string) []Definition {
	var defs []Definition

	for _, loc := range header.FindAllStringSubmatchIndex(text, -1) {
		headerStart, _ := loc[0], loc[1]
		kind := text[loc[2]:loc[3]]
		name := text[loc[4]:loc[5]]
		bodyStart := loc[1] // just after the body's opening backtick

		bodyEnd := FindBlockEnd(text, bodyStart)
		if bodyEnd < 0 {
			continue
		}

		body := text[bodyStart:bodyEnd]
		body = strings.TrimPrefix(body, "\n")
		body = strings.TrimSuffix(body, "\n")

		defs = append(defs, Definition{
			Kind:       kind,
			Name:       name,
			Body:       body,
			LineNumber: strings.Count(text[:headerStart], "\n") + 1,
		})
	}

	return defs
}

// FindBlockEnd locates the closing apostrophe matching the backtick that
// opened the quoted block just before start, tracking nesting depth: a
// backtick increments depth, an apostrophe decrements it, and depth
// reaching zero marks the close. Returns -1 if the block is never closed.
//
// Per spec.md §9 "Open questions", this also decrements on any bare
// apostrophe (e.g. inside a comment or identifier) — real policy sources
// don't use those outside of quoting, so the simplification is safe in
// practice but would mis-scan adversarial input.
//
// Exported for reuse by internal/macro/expand, which needs the same
// depth-tracked scan to strip gen_require(`...') blocks out of a macro
// body before expansion.
func FindBlockEnd(text string, start int) int {
	depth := 1
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '`':
			depth++
		case '\'':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
