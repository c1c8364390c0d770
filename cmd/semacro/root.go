// Command semacro explores and expands a macro-based SELinux-style policy
// reference: it loads a tree of policy source files, indexes every macro
// definition by name, and answers questions about them. See spec.md §1.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pranlawate/semacro/internal/macro/index"
	"github.com/pranlawate/semacro/internal/render"
	"github.com/pranlawate/semacro/pkg/semacro"
)

// defaultIncludePath is the last resort in the include-path discovery
// chain described in spec.md §6 and SPEC_FULL.md §11.
const defaultIncludePath = "/usr/share/selinux/devel/include"

var (
	includePath string
	noColor     bool
	jsonOutput  bool
	maxDepth    int

	colorCtx render.Context
)

var rootCmd = &cobra.Command{
	Use:   "semacro",
	Short: "Explore and expand SELinux-style policy macros, interfaces, and templates",
	Long: `semacro loads a tree of policy source files (.if interfaces/templates,
.spt support defines), indexes every macro definition by name, and answers
questions about them: show a definition with or without argument
substitution, recursively expand a call into the flat set of primitive
policy rules it produces, find callers, and search for macros that grant a
specific access or create a given type transition.

Policy path resolution (highest priority first):
  1. --include flag
  2. SEMACRO_INCLUDE_PATH environment variable
  3. /usr/share/selinux/devel/include (requires selinux-policy-devel)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&includePath, "include", "", "path to the policy include directory (overrides SEMACRO_INCLUDE_PATH and the default path)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON instead of text")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", semacro.DefaultMaxDepth, "maximum macro expansion recursion depth")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "semacro: %v\n", err)
		os.Exit(1)
	}
}

// resolveIncludePath implements spec.md §6's discovery precedence:
// explicit flag → SEMACRO_INCLUDE_PATH → the compiled-in default, the
// last of which is only accepted if it actually contains policy files
// (SPEC_FULL.md §11, grounded on the original's detect_include_path /
// _has_policy_files).
func resolveIncludePath() (string, error) {
	if includePath != "" {
		return includePath, nil
	}
	if env := os.Getenv("SEMACRO_INCLUDE_PATH"); env != "" {
		return env, nil
	}
	if index.HasPolicyFiles(defaultIncludePath) {
		return defaultIncludePath, nil
	}
	return "", fmt.Errorf(`cannot find SELinux policy include directory.
  Options:
    1. Install selinux-policy-devel (provides the default path)
    2. export SEMACRO_INCLUDE_PATH=/path/to/policy  (add to ~/.bashrc)
    3. semacro --include /path/to/policy ...`)
}

// buildEngine resolves the include path and builds the engine, printing
// any non-fatal indexing errors and the incomplete-policy-tree warning to
// stderr (spec.md §7).
func buildEngine(ctx context.Context) (*semacro.Engine, error) {
	root, err := resolveIncludePath()
	if err != nil {
		return nil, err
	}
	if st, statErr := os.Stat(root); statErr != nil || !st.IsDir() {
		return nil, fmt.Errorf("include path %q does not exist", root)
	}

	buildCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := semacro.Build(buildCtx, root, semacro.WithMaxDepth(maxDepth))
	if err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "semacro: %v\n", e)
	}
	if warning := result.Engine.IncompletePolicyWarning(); warning != "" {
		fmt.Fprintln(os.Stderr, warning)
	}

	colorCtx = render.NewContext(render.DetectColor(noColor))
	return result.Engine, nil
}

// notFoundError reports a macro lookup miss with a "did you mean" hint
// derived from a substring match (spec.md §7).
func notFoundError(eng *semacro.Engine, name string) error {
	msg := fmt.Sprintf("macro %q not found", name)
	if hints := eng.Suggest(name, 5); len(hints) > 0 {
		msg += fmt.Sprintf(" (did you mean: %v?)", hints)
	}
	return fmt.Errorf("%s", msg)
}
