package semacro

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/pranlawate/semacro/internal/macro/call"
	"github.com/pranlawate/semacro/internal/macro/canon"
	"github.com/pranlawate/semacro/internal/macro/domain"
	"github.com/pranlawate/semacro/internal/macro/expand"
	"github.com/pranlawate/semacro/internal/macro/index"
	"github.com/pranlawate/semacro/internal/macro/search"
	"github.com/pranlawate/semacro/internal/macro/subst"
)

// Engine is the facade over the macro expansion engine's internal
// packages: an index plus the configuration used to query it. Built once
// per process via Build, then safe for concurrent read-only use (spec.md
// §5).
type Engine struct {
	idx  *domain.Index
	opts Options
}

// BuildResult is the outcome of Build: a usable Engine plus any non-fatal
// indexing errors, mirroring internal/macro/index.Result. RunID is a
// per-build opaque identifier with no semantic meaning to the engine —
// it exists purely so a caller can correlate this build's log lines and
// diagnostics across a session (spec.md §5 names no such handle; this is
// the one piece of process-wide state the facade adds on top).
type BuildResult struct {
	Engine      *Engine
	Errors      []index.Error
	FilesWalked int
	RunID       string
}

// Build walks root, indexes every .if/.spt file found, and returns an
// Engine ready to serve Show/Expand/Callers/Which queries.
func Build(ctx context.Context, root string, opts ...Option) (*BuildResult, error) {
	var o Options
	for _, apply := range opts {
		apply(&o)
	}
	applyDefaults(&o)

	result, err := index.Build(ctx, root, index.Options{
		SkipDirs:     o.SkipDirs,
		ExcludeGlobs: o.SkipPatterns,
		Workers:      o.Workers,
	})
	if err != nil {
		return nil, err
	}

	return &BuildResult{
		Engine:      &Engine{idx: result.Index, opts: o},
		Errors:      result.Errors,
		FilesWalked: result.FilesWalked,
		RunID:       uuid.NewString(),
	}, nil
}

// Index returns the underlying read-only index, for callers that need
// direct access (e.g. the CLI's `list` command).
func (e *Engine) Index() *domain.Index { return e.idx }

// Show returns the named macro's definition unmodified — spec.md §1
// "show a definition ... without argument substitution".
func (e *Engine) Show(name string) (*domain.MacroDefinition, bool) {
	return e.idx.Lookup(name)
}

// ShowSubstituted returns the named macro's body after positional
// argument substitution, without expanding any nested calls — spec.md §1
// "show a definition with ... argument substitution".
func (e *Engine) ShowSubstituted(name string, args []string) (string, bool) {
	def, ok := e.idx.Lookup(name)
	if !ok {
		return "", false
	}
	if len(args) == 0 {
		return def.Body, true
	}
	return subst.Substitute(def.Body, args), true
}

// Expand recursively expands name(args) into its bounded tree (spec.md
// §4.6), using the Engine's configured MaxDepth.
func (e *Engine) Expand(name string, args []string) *domain.ExpansionNode {
	return expand.Expand(e.idx, name, args, e.opts.MaxDepth)
}

// ExpandRules expands name(args) and canonicalises the result into a flat
// rule list (spec.md §4.7).
func (e *Engine) ExpandRules(name string, args []string) []string {
	return canon.Canonicalise(e.Expand(name, args))
}

// Callers returns every indexed macro whose body contains a direct call
// to name, sorted by name — spec.md §1 "find callers".
func (e *Engine) Callers(name string) []*domain.MacroDefinition {
	var out []*domain.MacroDefinition
	for _, def := range e.idx.All() {
		for _, c := range call.Detect(def.Body) {
			if c.Name == name {
				out = append(out, def)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// WhichAV searches for macros that grant every permission in perms from
// source to target:class (class == "" accepts any class) — spec.md §4.8.
func (e *Engine) WhichAV(source, target string, perms []string, class string) []search.Result {
	return search.WhichAV(e.idx, source, target, perms, class)
}

// WhichTransition searches for macros creating a type_transition from
// source under parent to newType, with optional class/filename filters —
// spec.md §4.8.
func (e *Engine) WhichTransition(source, parent, newType, class, filename string) []search.Result {
	return search.WhichTransition(e.idx, source, parent, newType, class, filename)
}

// Suggest returns up to n indexed names containing substr, for a "did you
// mean" hint on a not-found lookup (spec.md §7).
func (e *Engine) Suggest(substr string, n int) []string {
	return e.idx.Suggest(substr, n)
}

// IncompletePolicyWarning returns a non-empty diagnostic when the index
// lacks define entries or any kernel/ file, per spec.md §7 and the
// original tool's exact diagnostic shape (SPEC_FULL.md §11).
func (e *Engine) IncompletePolicyWarning() string {
	missingDefines := !e.idx.HasDefines()
	missingKernel := !e.idx.HasKernelFile()
	switch {
	case missingDefines && missingKernel:
		return "warning: policy tree looks incomplete — missing support/*.spt (defines) and kernel/*.if (core interfaces)"
	case missingDefines:
		return "warning: policy tree looks incomplete — missing support/*.spt (defines)"
	case missingKernel:
		return "warning: policy tree looks incomplete — missing kernel/*.if (core interfaces)"
	default:
		return ""
	}
}
