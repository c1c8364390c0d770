package main

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find <regex>",
	Short: "Search indexed macro names by regular expression",
	Long: `Find is a plain regex search over macro names — no expansion engine
involved. Unlike which, it never trial-expands anything; it only matches
against names already in the index (SPEC_FULL.md §11, grounded on the
original lookup tool's find command).`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	re, err := regexp.Compile(args[0])
	if err != nil {
		return fmt.Errorf("invalid regex %q: %w", args[0], err)
	}

	eng, err := buildEngine(cmd.Context())
	if err != nil {
		return err
	}

	var matches []string
	for _, def := range eng.Index().All() {
		if re.MatchString(def.Name) {
			matches = append(matches, def.Name)
		}
	}

	if len(matches) == 0 {
		return fmt.Errorf("no macro names match %q", args[0])
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(matches)
	}
	for _, name := range matches {
		if colorCtx.Color {
			name = lipgloss.NewStyle().Bold(true).Render(name)
		}
		fmt.Println(name)
	}
	return nil
}
