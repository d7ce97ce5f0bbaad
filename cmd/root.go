package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/flytaly/mdtree/cmd/viewer"
	"github.com/flytaly/mdtree/pkg/parser"
	"github.com/flytaly/mdtree/pkg/render"
	"github.com/spf13/cobra"
)

const configName = ".mdtree.toml"

// fileConfig is the optional per-directory config file. Flags that were
// set explicitly take precedence over values from the file.
type fileConfig struct {
	Width      int  `toml:"width"`
	NoColor    bool `toml:"no_color"`
	MaxNesting int  `toml:"max_nesting"`
}

func loadFileConfig() fileConfig {
	var cfg fileConfig
	_, err := toml.DecodeFile(configName, &cfg)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: can't read %s: %s\n", configName, err)
	}
	return cfg
}

func getConfig(cmd *cobra.Command) viewer.ProgramCfg {
	cfg := loadFileConfig()

	logPath, _ := cmd.Flags().GetString("log")
	if cmd.Flags().Changed("width") || cfg.Width == 0 {
		cfg.Width, _ = cmd.Flags().GetInt("width")
	}
	if cmd.Flags().Changed("no-color") {
		cfg.NoColor, _ = cmd.Flags().GetBool("no-color")
	}
	if cmd.Flags().Changed("max-nesting") || cfg.MaxNesting == 0 {
		cfg.MaxNesting, _ = cmd.Flags().GetInt("max-nesting")
	}

	return viewer.ProgramCfg{
		LogPath:    logPath,
		Width:      cfg.Width,
		NoColor:    cfg.NoColor,
		MaxNesting: cfg.MaxNesting,
	}
}

func newParser(cfg viewer.ProgramCfg) *parser.Parser {
	return parser.New(parser.WithMaxNesting(cfg.MaxNesting))
}

func newRenderer(cfg viewer.ProgramCfg) *render.Terminal {
	opts := []render.TerminalOption{render.WithWidth(cfg.Width)}
	if cfg.NoColor {
		opts = append(opts, render.WithoutColor())
	}
	return render.NewTerminal(opts...)
}

// readSource reads the file named by args, or stdin when no name is given.
func readSource(args []string) ([]byte, string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		return data, "stdin", err
	}
	data, err := os.ReadFile(args[0])
	return data, args[0], err
}

var rootCmd = &cobra.Command{
	Use:   "mdtree [file]",
	Short: "Render Markdown in the terminal",
	Long: `Render Markdown in the terminal

Reads the given file (or stdin) and pretty-prints it with ANSI styling.
Use 'tree' to inspect the parsed structure and 'watch' to re-render the
file whenever it changes.
`,
	Args: cobra.MaximumNArgs(1),
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
		fmt.Print(newRenderer(cfg).Render(nodes...))
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute(version string) {
	rootCmd.Version = version
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("log", "l", "", "path to the log file")
	rootCmd.PersistentFlags().IntP("width", "w", 80, "output width")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable ANSI styling")
	rootCmd.PersistentFlags().Int("max-nesting", 16, "maximum block nesting depth")
}
