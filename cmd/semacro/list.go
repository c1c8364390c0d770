package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// categoryDirs maps a --category value to the top-level directory name it
// selects, carried over verbatim from the original tool's _CATEGORY_DIRS
// (SPEC_FULL.md §11).
var categoryDirs = map[string]string{
	"kernel":   "kernel",
	"system":   "system",
	"admin":    "admin",
	"apps":     "apps",
	"roles":    "roles",
	"services": "services",
	"contrib":  "contrib",
	"support":  "support",
}

var (
	listCategory string
	listGlob     string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every indexed macro name",
	Long: `List prints every macro currently in the index, optionally
restricted to one policy category directory (--category) and/or a glob
over macro names (--glob), per the original tool's list command
(SPEC_FULL.md §11).

Valid categories: kernel, system, admin, apps, roles, services, contrib,
support, all.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "all", "restrict to one policy category directory")
	listCmd.Flags().StringVar(&listGlob, "glob", "", "restrict to names matching this glob pattern")
}

func runList(cmd *cobra.Command, args []string) error {
	if listCategory != "all" {
		if _, ok := categoryDirs[listCategory]; !ok {
			return fmt.Errorf("unknown category %q (valid: kernel, system, admin, apps, roles, services, contrib, support, all)", listCategory)
		}
	}

	eng, err := buildEngine(cmd.Context())
	if err != nil {
		return err
	}

	type entry struct {
		Name       string `json:"name"`
		Kind       string `json:"kind"`
		SourceFile string `json:"source_file"`
	}
	var out []entry
	for _, def := range eng.Index().All() {
		if listCategory != "all" && !inCategory(def.SourceFile, categoryDirs[listCategory]) {
			continue
		}
		if listGlob != "" {
			matched, err := doublestar.Match(listGlob, def.Name)
			if err != nil || !matched {
				continue
			}
		}
		out = append(out, entry{def.Name, string(def.Kind), def.SourceFile})
	}

	if len(out) == 0 {
		return fmt.Errorf("no macros match the given filters")
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(out)
	}
	for _, e := range out {
		kind := e.Kind
		if colorCtx.Color {
			kind = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Render(kind)
		}
		fmt.Printf("%s  %s  (%s)\n", kind, e.Name, e.SourceFile)
	}
	return nil
}

// inCategory reports whether sourceFile's first path segment matches dir.
func inCategory(sourceFile, dir string) bool {
	first := strings.SplitN(filepath.ToSlash(sourceFile), "/", 2)[0]
	return first == dir
}
