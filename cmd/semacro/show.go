package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pranlawate/semacro/internal/macro/domain"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:     "show <name> [args...]",
	Aliases: []string{"lookup"},
	Short:   "Show a macro's definition, with or without argument substitution",
	Long: `Show prints the raw quoted-block body of a macro definition. When
called with no arguments beyond the name, positional parameters ($1, $2,
...) are left verbatim. When called with additional arguments, those are
substituted in before printing — spec.md §1, §4.4.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVar(&showFormat, "format", "text", "output format: text, json, or yaml")
}

type showOutput struct {
	Name       string `json:"name" yaml:"name"`
	Kind       string `json:"kind" yaml:"kind"`
	SourceFile string `json:"source_file" yaml:"source_file"`
	LineNumber int    `json:"line_number" yaml:"line_number"`
	Body       string `json:"body" yaml:"body"`
}

func runShow(cmd *cobra.Command, args []string) error {
	name, callArgs := args[0], args[1:]

	eng, err := buildEngine(cmd.Context())
	if err != nil {
		return err
	}

	def, ok := eng.Show(name)
	if !ok {
		return notFoundError(eng, name)
	}

	body := def.Body
	if len(callArgs) > 0 {
		body, _ = eng.ShowSubstituted(name, callArgs)
	}

	out := showOutput{
		Name:       def.Name,
		Kind:       string(def.Kind),
		SourceFile: def.SourceFile,
		LineNumber: def.LineNumber,
		Body:       body,
	}

	switch {
	case showFormat == "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(out)
	case jsonOutput || showFormat == "json":
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	printShowText(def, body)
	return nil
}

func printShowText(def *domain.MacroDefinition, body string) {
	header := string(def.Kind) + " " + def.Name
	source := fmt.Sprintf("# %s:%d", def.SourceFile, def.LineNumber)
	if colorCtx.Color {
		header = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Render(string(def.Kind)) +
			" " + lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("87")).Render(def.Name)
		source = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(source)
	}
	fmt.Printf("%s  %s\n", header, source)
	fmt.Printf("%s(`%s',`\n%s\n')\n", def.Kind, def.Name, body)
}
