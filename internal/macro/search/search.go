// Package search implements the `which` driver: given a target access or
// type transition, it trial-expands candidate macros with constructed
// arguments and matches the resulting rules. See spec.md §4.8.
package search

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pranlawate/semacro/internal/macro/canon"
	"github.com/pranlawate/semacro/internal/macro/domain"
	"github.com/pranlawate/semacro/internal/macro/expand"
	"github.com/pranlawate/semacro/internal/macro/rule"
)

// trialMaxDepth bounds trial expansions — shallower than the engine's
// default, since a macro that needs more than a handful of levels to
// reach a terminal rule is not worth the cost of searching through
// (spec.md §4.8: "expand (max depth 5)").
const trialMaxDepth = 5

// classGuesses are the object classes tried when a transition candidate's
// arity leaves the class implicit (spec.md §4.8 "C ∈ {file, dir,
// sock_file, lnk_file}").
var classGuesses = []string{"file", "dir", "sock_file", "lnk_file"}

var argToken = regexp.MustCompile(`\$(\d+)`)

// Result is one macro that, when trial-expanded, produced a rule matching
// the requested access or transition.
type Result struct {
	Name       string
	Signature  string // canonical call string of the winning trial
	SourceFile string
	LineNumber int
}

// WhichAV searches idx for macros that, when trial-called with (source,
// target, <some args>), expand to an allow/dontaudit/auditallow/neverallow
// rule granting every permission in perms against target:class (class
// filter optional — pass "" to accept any class).
func WhichAV(idx *domain.Index, source, target string, perms []string, class string) []Result {
	var out []Result

	for _, def := range candidates(idx, target) {
		arity := arityOf(def.Body)
		trials := [][]string{pad([]string{source, target, strings.Join(perms, " ")}, arity)}

		winner, rules := firstWinningTrial(idx, def.Name, trials)
		if winner == nil {
			continue
		}

		for _, line := range rules {
			av, ok := rule.ParseAV(line)
			if !ok || av.Source != source || av.Target != target {
				continue
			}
			if class != "" && av.Class != class {
				continue
			}
			if !av.HasPerms(perms) {
				continue
			}
			out = append(out, Result{
				Name:       def.Name,
				Signature:  domain.CallString(def.Name, winner),
				SourceFile: def.SourceFile,
				LineNumber: def.LineNumber,
			})
			break
		}
	}

	return dedupeSorted(out)
}

// WhichTransition searches idx for macros that, when trial-called, expand
// to a type_transition rule from source under parent to newType. class and
// filename are optional filters ("" accepts any).
func WhichTransition(idx *domain.Index, source, parent, newType, class, filename string) []Result {
	var out []Result

	for _, def := range candidates(idx, newType, parent) {
		arity := arityOf(def.Body)
		trials := transitionTrials(source, parent, newType, arity)

		winner, rules := firstWinningTrial(idx, def.Name, trials)
		if winner == nil {
			continue
		}

		for _, line := range rules {
			tr, ok := rule.ParseTransition(line)
			if !ok || tr.Source != source || tr.Parent != parent || tr.NewType != newType {
				continue
			}
			if class != "" && tr.Class != class {
				continue
			}
			if filename != "" && tr.Filename != filename {
				continue
			}
			out = append(out, Result{
				Name:       def.Name,
				Signature:  domain.CallString(def.Name, winner),
				SourceFile: def.SourceFile,
				LineNumber: def.LineNumber,
			})
			break
		}
	}

	return dedupeSorted(out)
}

// candidates returns every index entry eligible to be trial-expanded: not
// a parameterless define, and whose body or name contains every needle
// (spec.md §4.8 "cheap text filter that dominates performance").
func candidates(idx *domain.Index, needles ...string) []*domain.MacroDefinition {
	var out []*domain.MacroDefinition
	for _, def := range idx.All() {
		if def.Kind == domain.KindDefine && !def.HasArgs() {
			continue
		}
		matches := true
		for _, n := range needles {
			if n == "" {
				continue
			}
			if !strings.Contains(def.Body, n) && !strings.Contains(def.Name, n) {
				matches = false
				break
			}
		}
		if matches {
			out = append(out, def)
		}
	}
	return out
}

// arityOf returns the highest N appearing in any $N token in body, or 0
// if none (spec.md §4.8 "Arity estimate").
func arityOf(body string) int {
	max := 0
	for _, m := range argToken.FindAllStringSubmatch(body, -1) {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > max {
			max = n
		}
	}
	return max
}

// transitionTrials builds the argument-order permutations of spec.md
// §4.8's "Trial arguments" table for type-transition search.
func transitionTrials(source, parent, newType string, arity int) [][]string {
	switch {
	case arity <= 1:
		return [][]string{pad([]string{source}, arity)}
	case arity == 2:
		return [][]string{
			pad([]string{source, newType}, arity),
			pad([]string{source, parent}, arity),
		}
	case arity == 3:
		var trials [][]string
		for _, c := range classGuesses {
			trials = append(trials, pad([]string{source, newType, c}, arity))
		}
		trials = append(trials, pad([]string{source, parent, newType}, arity))
		return trials
	default:
		var trials [][]string
		for _, c := range classGuesses {
			trials = append(trials, pad([]string{source, newType, c}, arity))
		}
		for _, c := range classGuesses {
			trials = append(trials, pad([]string{source, parent, newType, c}, arity))
		}
		trials = append(trials, pad([]string{source, newType}, arity))
		trials = append(trials, pad([]string{source, parent, newType}, arity))
		return trials
	}
}

// pad truncates or right-pads args with empty strings to exactly arity
// elements.
func pad(args []string, arity int) []string {
	if len(args) > arity {
		return append([]string(nil), args[:arity]...)
	}
	out := make([]string, arity)
	copy(out, args)
	return out
}

// firstWinningTrial expands name with each trial in order, returning the
// first trial whose canonicalised rule list is non-empty, along with that
// rule list. Returns (nil, nil) if no trial produced anything.
func firstWinningTrial(idx *domain.Index, name string, trials [][]string) ([]string, []string) {
	for _, trial := range trials {
		tree := expand.Expand(idx, name, trial, trialMaxDepth)
		rules := canon.Canonicalise(tree)
		if len(rules) > 0 {
			return trial, rules
		}
	}
	return nil, nil
}

// dedupeSorted deduplicates results by macro name, keeping the first
// occurrence, and sorts the result by name (spec.md §4.8).
func dedupeSorted(in []Result) []Result {
	seen := make(map[string]bool, len(in))
	out := make([]Result, 0, len(in))
	for _, r := range in {
		if seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
