// Package index walks an include root, parses every policy-include and
// support file, and produces a name→definition map. See spec.md §4.2.
package index

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/pranlawate/semacro/internal/macro/domain"
	"github.com/pranlawate/semacro/internal/macro/scan"
)

// policyExtensions are the only file suffixes the indexer parses.
var policyExtensions = []string{".if", ".spt"}

// DefaultSkipDirs contains directory names skipped during the walk,
// mirroring the teacher's DefaultSkipPatterns (pkg/parser/scanner.go).
var DefaultSkipDirs = []string{".git", "vendor"}

// Result is the outcome of Build: a usable index plus any non-fatal
// errors encountered along the way — grounded on the teacher's
// ScanResult{Inventory; Errors; Stats} (pkg/parser/scanner.go).
type Result struct {
	Index       *domain.Index
	Errors      []Error
	FilesWalked int
}

// Error records a non-fatal failure attributable to a single file and
// build phase, mirroring the teacher's ScanError.
type Error struct {
	Err   error
	Path  string
	Phase string // "walk" or "read"
}

func (e Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Phase, e.Path, e.Err)
}

// Options configures Build.
type Options struct {
	// SkipDirs lists additional directory names to skip, combined with
	// DefaultSkipDirs.
	SkipDirs []string
	// ExcludeGlobs lists doublestar glob patterns (matched against the
	// path relative to root, slash-separated) excluding files from the
	// walk — mirrors the teacher's matchesAnyPattern (pkg/parser/scanner.go).
	ExcludeGlobs []string
	// Workers bounds concurrent file parsing. Zero or negative uses
	// runtime.GOMAXPROCS(0) — mirrors the teacher's ScanOptions.Workers.
	Workers int
}

// Build walks root, parses every .if/.spt file found, and returns the
// resulting Index frozen for read-only use. A file that fails to read
// contributes zero definitions and one Error; indexing proceeds regardless
// (spec.md §4.9). Unmatched blocks inside a readable file are dropped by
// the scanner without recording an Error.
func Build(ctx context.Context, root string, opts Options) (*Result, error) {
	files, walkErrs := discover(root, opts.SkipDirs, opts.ExcludeGlobs)

	result := &Result{
		Index:       domain.NewIndex(),
		FilesWalked: len(files),
	}
	for _, e := range walkErrs {
		result.Errors = append(result.Errors, e)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	sem := semaphore.NewWeighted(int64(workers))
	g, gCtx := errgroup.WithContext(ctx)

	var (
		mu        sync.Mutex
		scanErrs  []Error
		collected = make(map[string][]scan.Definition, len(files))
	)

	for _, relPath := range files {
		relPath := relPath
		absPath := filepath.Join(root, relPath)

		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			raw, err := os.ReadFile(absPath)
			if err != nil {
				mu.Lock()
				scanErrs = append(scanErrs, Error{Err: err, Path: relPath, Phase: "read"})
				mu.Unlock()
				return nil
			}

			text := strings.ToValidUTF8(string(raw), "�")
			defs := scan.Scan(text)

			mu.Lock()
			collected[relPath] = defs
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	result.Errors = append(result.Errors, scanErrs...)

	// Insert in sorted relative-path order for deterministic behaviour
	// under collisions within a single test run, even though spec.md §3
	// explicitly does not require a stable cross-platform winner.
	sortedPaths := make([]string, 0, len(collected))
	for p := range collected {
		sortedPaths = append(sortedPaths, p)
	}
	sort.Strings(sortedPaths)

	for _, relPath := range sortedPaths {
		for _, d := range collected[relPath] {
			result.Index.Insert(&domain.MacroDefinition{
				Name:       d.Name,
				Kind:       domain.Kind(d.Kind),
				Body:       d.Body,
				SourceFile: relPath,
				LineNumber: d.LineNumber,
			})
		}
	}

	result.Index.Freeze()
	return result, nil
}

// discover walks root and returns every regular file ending in .if or .spt,
// as paths relative to root. Non-fatal walk errors are returned alongside.
func discover(root string, extraSkip, excludeGlobs []string) ([]string, []Error) {
	skip := make(map[string]bool, len(DefaultSkipDirs)+len(extraSkip))
	for _, d := range DefaultSkipDirs {
		skip[d] = true
	}
	for _, d := range extraSkip {
		skip[d] = true
	}

	var (
		files []string
		errs  []Error
	)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, Error{Err: err, Path: path, Phase: "walk"})
			return nil
		}
		if d.IsDir() {
			if path != root && skip[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !hasPolicyExtension(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			errs = append(errs, Error{Err: err, Path: path, Phase: "walk"})
			return nil
		}
		if matchesAnyGlob(filepath.ToSlash(rel), excludeGlobs) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if walkErr != nil {
		errs = append(errs, Error{Err: walkErr, Phase: "walk"})
	}

	return files, errs
}

// matchesAnyGlob reports whether relPath (slash-separated) matches any of
// patterns, mirroring the teacher's matchesAnyPattern (pkg/parser/scanner.go).
// A malformed pattern is treated as a non-match rather than failing the walk.
func matchesAnyGlob(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, relPath)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func hasPolicyExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range policyExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// HasPolicyFiles reports whether root (or any subdirectory) contains at
// least one .if or .spt file. Used by the CLI's default include-path
// probe — grounded on the original tool's _has_policy_files
// (original_source/semacro.py) — so that a default path that merely
// exists but carries no policy sources is not mistaken for a usable one.
func HasPolicyFiles(root string) bool {
	found := false
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if found {
			return filepath.SkipAll
		}
		if err != nil || d.IsDir() {
			return nil
		}
		if hasPolicyExtension(path) {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}
