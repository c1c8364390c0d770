package domain

import (
	"sort"
	"strings"
	"sync"
)

// Index maps macro name to its (unique) definition. Built once while
// walking the include root, then treated as read-only for the remainder
// of the process — see spec.md §5 "Concurrency & Resource Model".
//
// The embedded mutex only matters during the build phase, where the
// indexer may insert concurrently from multiple file-parsing workers
// (internal/macro/index). Every read happens after Freeze and needs no
// further locking, but RLock is kept for safety against misuse.
type Index struct {
	mu      sync.RWMutex
	byName  map[string]*MacroDefinition
	frozen  bool
	hasKern bool // at least one definition came from a "kernel" path segment
}

// NewIndex returns an empty, writable Index.
func NewIndex() *Index {
	return &Index{byName: make(map[string]*MacroDefinition)}
}

// Insert adds or overwrites a definition by name. When two files define the
// same name, the last one inserted wins — spec.md §3 "Index" invariant.
// Insert panics if called after Freeze.
func (idx *Index) Insert(def *MacroDefinition) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.frozen {
		panic("domain: Insert called on a frozen Index")
	}
	idx.byName[def.Name] = def
	if pathHasKernelSegment(def.SourceFile) {
		idx.hasKern = true
	}
}

// Freeze marks the index as built; subsequent Insert calls panic.
func (idx *Index) Freeze() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.frozen = true
}

// Lookup returns the definition named name, if any.
func (idx *Index) Lookup(name string) (*MacroDefinition, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	d, ok := idx.byName[name]
	return d, ok
}

// Len returns the number of indexed definitions.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.byName)
}

// All returns every definition, sorted by name for deterministic iteration.
func (idx *Index) All() []*MacroDefinition {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]*MacroDefinition, 0, len(idx.byName))
	for _, d := range idx.byName {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// HasDefines reports whether any indexed definition is a parameterless or
// parameterised "define". Used by the startup incomplete-policy-tree
// warning (spec.md §7).
func (idx *Index) HasDefines() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	for _, d := range idx.byName {
		if d.Kind == KindDefine {
			return true
		}
	}
	return false
}

// HasKernelFile reports whether any definition was parsed from a file
// under a "kernel" path segment.
func (idx *Index) HasKernelFile() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.hasKern
}

// Suggest returns up to n names containing substr (case-insensitive),
// sorted, for the CLI's "did you mean" hint on a not-found lookup
// (spec.md §7).
func (idx *Index) Suggest(substr string, n int) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	lower := strings.ToLower(substr)
	var hits []string
	for name := range idx.byName {
		if strings.Contains(strings.ToLower(name), lower) {
			hits = append(hits, name)
		}
	}
	sort.Strings(hits)
	if len(hits) > n {
		hits = hits[:n]
	}
	return hits
}

func pathHasKernelSegment(relPath string) bool {
	for _, part := range strings.FieldsFunc(relPath, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == "kernel" {
			return true
		}
	}
	return false
}
