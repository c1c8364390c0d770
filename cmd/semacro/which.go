package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pranlawate/semacro/internal/macro/search"
)

var (
	whichTransition bool
	whichClass      string
	whichFilename   string
)

var whichCmd = &cobra.Command{
	Use:   "which <source> <target> <perm...>",
	Short: "Find macros that grant a specific access or type transition",
	Long: `Which trial-expands candidate macros with constructed arguments and
matches the result against a target rule (spec.md §4.8).

By default it searches for an AV rule granting every perm from source to
target. With --transition it instead searches for a type_transition:

  semacro which --transition <source> <parent> <new_type>`,
	Args: cobra.MinimumNArgs(2),
	RunE: runWhich,
}

func init() {
	rootCmd.AddCommand(whichCmd)
	whichCmd.Flags().BoolVar(&whichTransition, "transition", false, "search for a type_transition instead of an AV rule")
	whichCmd.Flags().StringVar(&whichClass, "class", "", "restrict to this object class (optional)")
	whichCmd.Flags().StringVar(&whichFilename, "filename", "", "restrict to this transition filename (optional, implies --transition)")
}

func runWhich(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine(cmd.Context())
	if err != nil {
		return err
	}

	var results []search.Result
	if whichTransition || whichFilename != "" {
		if len(args) < 3 {
			return fmt.Errorf("which --transition requires <source> <parent> <new_type>")
		}
		source, parent, newType := args[0], args[1], args[2]
		results = eng.WhichTransition(source, parent, newType, whichClass, whichFilename)
	} else {
		if len(args) < 3 {
			return fmt.Errorf("which requires <source> <target> <perm...>")
		}
		source, target, perms := args[0], args[1], args[2:]
		results = eng.WhichAV(source, target, perms, whichClass)
	}

	if len(results) == 0 {
		return fmt.Errorf("no matching macro found")
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(results)
	}
	for _, r := range results {
		name := r.Signature
		source := fmt.Sprintf("%s:%d", r.SourceFile, r.LineNumber)
		if colorCtx.Color {
			name = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("87")).Render(name)
			source = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(source)
		}
		fmt.Printf("  %s  %s\n", name, source)
	}
	return nil
}
