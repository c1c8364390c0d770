// Package inline implements define inlining and brace-set flattening,
// applied to each leaf line produced by the expander. See spec.md §4.5.
package inline

import (
	"regexp"
	"strings"

	"github.com/pranlawate/semacro/internal/macro/domain"
)

// maxIterations bounds the inliner's fixpoint loop. The cap is
// deliberate — it bounds transitive expansion and prevents runaway on
// pathological data (spec.md §4.5).
const maxIterations = 5

var identifier = regexp.MustCompile(`\b[A-Za-z_]\w*\b`)

// InlineDefines repeatedly replaces the first whole-word identifier in
// line that names a parameterless "define" with that define's trimmed
// body, until a fixpoint is reached or maxIterations is exhausted.
//
// A define is only eligible when its body contains no $ token — a
// define that references $N is parameterised and must go through the
// full expander instead.
func InlineDefines(line string, idx *domain.Index) string {
	for i := 0; i < maxIterations; i++ {
		next, changed := inlineOnce(line, idx)
		if !changed {
			return line
		}
		line = next
	}
	return line
}

func inlineOnce(line string, idx *domain.Index) (string, bool) {
	locs := identifier.FindAllStringIndex(line, -1)
	for _, loc := range locs {
		name := line[loc[0]:loc[1]]
		def, ok := idx.Lookup(name)
		if !ok || def.Kind != domain.KindDefine || def.HasArgs() {
			continue
		}
		replacement := strings.TrimSpace(def.Body)
		return line[:loc[0]] + replacement + line[loc[1]:], true
	}
	return line, false
}

// nestedBrace matches a brace set that itself contains a nested brace
// set: "{ X { Y } Z }" → captured as prefix/inner/suffix.
var nestedBrace = regexp.MustCompile(`\{([^{}]*)\{([^{}]*)\}([^{}]*)\}`)

var whitespaceRun = regexp.MustCompile(`\s{2,}`)

// FlattenBraces collapses nested permission brace sets — "{ X { Y } Z }"
// becomes "{ X Y Z }" — repeating until no nested set remains (flattening
// is confluent and terminating, spec.md §8 invariant 5), then collapses
// runs of 2-or-more whitespace characters to a single space.
func FlattenBraces(line string) string {
	for {
		next := nestedBrace.ReplaceAllString(line, "{$1 $2 $3}")
		if next == line {
			break
		}
		line = next
	}
	return whitespaceRun.ReplaceAllString(line, " ")
}
