// Package commands wires up the yousync CLI.
package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command for yousync.
var rootCmd = &cobra.Command{
	Use:   "yousync",
	Short: "One-way synchronization of GitHub issues into YouTrack",
	Long: `yousync imports the issues of a GitHub repository into a YouTrack
project and keeps them in sync: the first run creates a YouTrack issue for
every GitHub issue, later runs propagate title, description, state and label
changes to the matching YouTrack issues. Nothing is ever written to GitHub.`,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}
