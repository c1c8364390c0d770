package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pranlawate/semacro/internal/render"
)

var treeCmd = &cobra.Command{
	Use:   "tree <name> [args...]",
	Short: "Render a macro call's expansion as a box-drawing tree",
	Long: `Tree expands name(args) the same way expand does, but renders the
unflattened tree: internal nodes are nested macro calls, leaves are the
terminal policy-rule lines they bottom out in (spec.md §6).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	name, callArgs := args[0], args[1:]

	eng, err := buildEngine(cmd.Context())
	if err != nil {
		return err
	}
	if _, ok := eng.Show(name); !ok {
		return notFoundError(eng, name)
	}

	node := eng.Expand(name, callArgs)
	fmt.Println(render.Tree(node, colorCtx))
	return nil
}
