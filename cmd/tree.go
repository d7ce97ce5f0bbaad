package cmd

import (
	"fmt"
	"os"

	"github.com/flytaly/mdtree/pkg/render"
	"github.com/spf13/cobra"
)

// treeCmd prints the parsed node structure instead of rendered text.
var treeCmd = &cobra.Command{
	Use:   "tree [file]",
	Short: "Print the parsed node tree of a Markdown file",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := getConfig(cmd)
		src, name, err := readSource(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		nodes, err := newParser(cfg).Parse(src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %s\n", name, err)
			os.Exit(1)
		}
		fmt.Print(render.NewTreeDump().Dump(nodes...))
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}
