package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	internal "github.com/ZanzyTHEbar/toolagent/toolagent"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var askCmd = &cobra.Command{
	Use:   "ask [query...]",
	Short: "Answer a query using the registered tools",
	Long: `Runs one decide, execute, synthesize cycle for the query and prints the answer.
Without arguments the query defaults to "` + internal.DefaultQuery + `".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			query = internal.DefaultQuery
		}

		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			a.cfg.Agent.Verbose = true
		}

		orchestrator, err := a.orchestrator()
		if err != nil {
			return err
		}

		resp, err := orchestrator.Run(cmd.Context(), query)
		if err != nil {
			return err
		}

		raw, _ := cmd.Flags().GetBool("raw")
		return printAnswer(cmd.OutOrStdout(), resp.Answer, raw)
	},
}

// printAnswer renders markdown with glamour when out is a terminal.
func printAnswer(out io.Writer, answer string, raw bool) error {
	if f, ok := out.(*os.File); ok && !raw && term.IsTerminal(int(f.Fd())) {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err == nil {
			if rendered, err := r.Render(answer); err == nil {
				_, err = fmt.Fprint(out, rendered)
				return err
			}
		}
	}
	_, err := fmt.Fprintln(out, answer)
	return err
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolP("verbose", "v", false, "Log tool decisions and tool results")
	askCmd.Flags().Bool("raw", false, "Print the answer without markdown rendering")
}
