// Command specviz serves the spec editor and offers offline helpers over the
// same registry: listing, exporting, rendering, terminal filling and checks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	logMode    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "specviz",
		Short: "View and edit YAML/JSON spec documents through generated forms",
		Long: `specviz turns registered spec documents into editable forms with a live
YAML/JSON preview. Drafts are saved as you type and can be exported at any time.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to specviz.yaml (default: ./specviz.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&flags.logMode, "log-mode", "", "logger preset: development or production (overrides config)")

	rootCmd.AddCommand(
		newServeCmd(flags),
		newListCmd(flags),
		newExportCmd(flags),
		newRenderCmd(flags),
		newFillCmd(flags),
		newCheckCmd(flags),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
