package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/flytaly/mdtree/cmd/viewer"
	"github.com/spf13/cobra"
)

// watchCmd re-renders the file whenever it changes on disk.
var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Render a Markdown file and re-render it on every change",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := getConfig(cmd)
		cfg.Path = args[0]
		cfg.Interval, _ = cmd.Flags().GetDuration("interval")
		p := viewer.NewProgram(cfg)
		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationP("interval", "i", 500*time.Millisecond, "poll interval duration (e.g. 1s, 500ms...)")
}
