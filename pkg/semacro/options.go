// Package semacro wires the macro expansion engine's internal packages
// into a single facade: build an index once, then show/expand/find-callers/
// which against it. Configuration follows the teacher's functional-options
// idiom verbatim — see specvital-core's pkg/parser/options.go.
package semacro

// Defaults mirrored from the engine's own spec-mandated constants.
const (
	DefaultMaxDepth = 10
	DefaultWorkers  = 0 // 0 => runtime.GOMAXPROCS(0), resolved in internal/macro/index
)

// Options configures an Engine.
type Options struct {
	// MaxDepth bounds expansion recursion (spec.md §4.6). <= 0 uses
	// DefaultMaxDepth.
	MaxDepth int
	// Workers bounds concurrent file parsing during Build. <= 0 uses
	// runtime.GOMAXPROCS(0).
	Workers int
	// SkipDirs lists additional directory names to skip during the
	// include-root walk, combined with internal/macro/index.DefaultSkipDirs.
	SkipDirs []string
	// SkipPatterns lists doublestar glob patterns (relative to the
	// include root) excluded from the walk — e.g. "contrib/**".
	SkipPatterns []string
}

// Option is a functional option for configuring an Engine, following
// specvital-core's ScanOption idiom.
type Option func(*Options)

// WithMaxDepth sets the expansion recursion ceiling. Non-positive values
// are ignored.
func WithMaxDepth(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxDepth = n
		}
	}
}

// WithWorkers sets the number of concurrent file parsers used by Build.
// Negative values are ignored.
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.Workers = n
		}
	}
}

// WithSkipDirs adds directory names to skip during the include-root walk.
func WithSkipDirs(dirs []string) Option {
	return func(o *Options) {
		o.SkipDirs = dirs
	}
}

// WithSkipPatterns sets doublestar glob patterns excluded from the walk.
func WithSkipPatterns(patterns []string) Option {
	return func(o *Options) {
		o.SkipPatterns = patterns
	}
}

func applyDefaults(opts *Options) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
}
