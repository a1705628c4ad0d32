package main

import (
	"fmt"

	"github.com/ZanzyTHEbar/toolagent/toolagent/harness"
	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the tool manifest shown to the model",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		manifest, err := harness.NewPromptBuilder(a.registry).Manifest()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), manifest)
		return err
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
