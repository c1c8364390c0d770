package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var callersCmd = &cobra.Command{
	Use:   "callers <name>",
	Short: "List every macro that directly calls the named macro",
	Long: `Callers scans every indexed definition for a direct nested call to
name, per spec.md §1 "find callers".`,
	Args: cobra.ExactArgs(1),
	RunE: runCallers,
}

func init() {
	rootCmd.AddCommand(callersCmd)
}

func runCallers(cmd *cobra.Command, args []string) error {
	name := args[0]

	eng, err := buildEngine(cmd.Context())
	if err != nil {
		return err
	}
	if _, ok := eng.Show(name); !ok {
		return notFoundError(eng, name)
	}

	callers := eng.Callers(name)

	if len(callers) == 0 {
		return fmt.Errorf("no callers of %q found", name)
	}

	if jsonOutput {
		type entry struct {
			Name       string `json:"name"`
			SourceFile string `json:"source_file"`
			LineNumber int    `json:"line_number"`
		}
		out := make([]entry, 0, len(callers))
		for _, c := range callers {
			out = append(out, entry{c.Name, c.SourceFile, c.LineNumber})
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}
	for _, c := range callers {
		label := c.Name
		source := fmt.Sprintf("%s:%d", c.SourceFile, c.LineNumber)
		if colorCtx.Color {
			label = lipgloss.NewStyle().Bold(true).Render(label)
			source = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(source)
		}
		fmt.Printf("  %s  %s\n", label, source)
	}
	return nil
}
