package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "toolagent",
	Short: "A tool-calling agent",
	Long: `toolagent asks a language model which registered tools to call for a query,
runs them and has the model answer from their results.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default: ./config.yaml or the user config dir)")
	rootCmd.PersistentFlags().String("log-level", "", "Override logging.level (trace, debug, info, warn, error)")
}
