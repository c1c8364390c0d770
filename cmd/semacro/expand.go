package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var expandCmd = &cobra.Command{
	Use:   "expand <name> [args...]",
	Short: "Recursively expand a macro call into its flat, canonical rule set",
	Long: `Expand recursively expands name(args) — following nested macro
calls up to --max-depth levels — then deduplicates and unions the
resulting leaves into a flat list of canonical policy rules (spec.md §4.6,
§4.7).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExpand,
}

func init() {
	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	name, callArgs := args[0], args[1:]

	eng, err := buildEngine(cmd.Context())
	if err != nil {
		return err
	}
	if _, ok := eng.Show(name); !ok {
		return notFoundError(eng, name)
	}

	rules := eng.ExpandRules(name, callArgs)

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(rules)
	}
	for _, r := range rules {
		fmt.Println(r)
	}
	return nil
}
