// Package commands defines the drawmark CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/drawmark/drawmark/cmd/drawmark/ui"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "drawmark",
	Short: "Convert PDF documents with technical drawings to markdown",
	Long: `drawmark converts PDF documents into markdown. Pages are classified with a
vision model; technical drawings are rendered as images and analyzed for
drawing type, key dimensions and tables, while text pages are extracted
directly. The result is a single markdown file with image references and an
analysis report alongside it.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.Init(noColor, verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
