package main

import (
	"fmt"

	"github.com/ZanzyTHEbar/toolagent/toolagent/memory"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Load documents into the retriever's store",
	Long: `Chunks and embeds text files under each path and stores them for the retriever tool.
Files matched by the ignore file (default .ragignore) at a directory root are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, appOptions{needStore: true})
		if err != nil {
			return err
		}
		defer a.Close()

		ic := a.cfg.Ingest
		chunker, err := memory.NewChunker(ic.ChunkSize, ic.ChunkOverlap)
		if err != nil {
			return err
		}

		ingestor := memory.NewIngestor(a.embedder, a.store, chunker, a.logger,
			memory.WithConcurrency(ic.Concurrency),
			memory.WithIgnoreFile(ic.IgnoreFile),
		)

		stats, err := ingestor.IngestPaths(cmd.Context(), args...)
		if err != nil {
			return err
		}

		total, err := a.store.Count(cmd.Context())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d files (%d chunks, %d skipped); store holds %d chunks\n",
			stats.Files, stats.Chunks, stats.Skipped, total)
		return err
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
