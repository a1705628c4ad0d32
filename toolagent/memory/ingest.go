package memory

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/sourcegraph/conc/pool"
)

// documentNamespace seeds deterministic chunk IDs so re-ingesting a file
// replaces its rows instead of duplicating them.
var documentNamespace = uuid.MustParse("5b0f7c5e-8d0e-4b83-9a55-3a4d2c1f8e21")

var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".markdown": true, ".rst": true,
	".csv": true, ".json": true, ".yaml": true, ".yml": true,
	".html": true, ".htm": true, ".xml": true,
}

// IngestStats summarizes an ingestion pass.
type IngestStats struct {
	Files   int
	Chunks  int
	Skipped int
}

// Ingestor chunks text files, embeds the chunks and writes them to a Store.
type Ingestor struct {
	embedder    ports.Embedder
	store       *Store
	chunker     Chunker
	concurrency int
	ignoreFile  string
	batchSize   int
	logger      zerolog.Logger
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithConcurrency bounds the number of embedding requests in flight.
func WithConcurrency(n int) IngestorOption {
	return func(i *Ingestor) {
		if n > 0 {
			i.concurrency = n
		}
	}
}

// WithIgnoreFile sets the name of the per-root ignore file.
func WithIgnoreFile(name string) IngestorOption {
	return func(i *Ingestor) { i.ignoreFile = name }
}

// WithBatchSize sets how many chunks go into one embedding request.
func WithBatchSize(n int) IngestorOption {
	return func(i *Ingestor) {
		if n > 0 {
			i.batchSize = n
		}
	}
}

func NewIngestor(embedder ports.Embedder, store *Store, chunker Chunker, logger zerolog.Logger, opts ...IngestorOption) *Ingestor {
	ing := &Ingestor{
		embedder:    embedder,
		store:       store,
		chunker:     chunker,
		concurrency: 4,
		ignoreFile:  ".ragignore",
		batchSize:   32,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// IngestPaths ingests every text file under each path. A path may name a
// single file or a directory tree.
func (i *Ingestor) IngestPaths(ctx context.Context, paths ...string) (IngestStats, error) {
	var stats IngestStats
	for _, root := range paths {
		files, skipped, err := i.collect(root)
		if err != nil {
			return stats, err
		}
		stats.Skipped += skipped

		for _, file := range files {
			n, err := i.IngestFile(ctx, file)
			if err != nil {
				return stats, err
			}
			if n == 0 {
				stats.Skipped++
				continue
			}
			stats.Files++
			stats.Chunks += n
		}
	}

	i.logger.Info().
		Int("files", stats.Files).
		Int("chunks", stats.Chunks).
		Int("skipped", stats.Skipped).
		Msg("Ingestion complete")
	return stats, nil
}

// collect walks root and returns the text files to ingest, honoring the
// ignore file at root and skipping hidden directories.
func (i *Ingestor) collect(root string) ([]string, int, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, 0, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		if !isTextFile(root) {
			return nil, 1, nil
		}
		return []string{root}, 0, nil
	}

	var matcher *ignore.GitIgnore
	if i.ignoreFile != "" {
		ignorePath := filepath.Join(root, i.ignoreFile)
		if _, err := os.Stat(ignorePath); err == nil {
			matcher, err = ignore.CompileIgnoreFile(ignorePath)
			if err != nil {
				return nil, 0, fmt.Errorf("parse %s: %w", ignorePath, err)
			}
		}
	}

	var (
		files   []string
		skipped int
	)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || (matcher != nil && matcher.MatchesPath(rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Name() == i.ignoreFile {
			return nil
		}
		if (matcher != nil && matcher.MatchesPath(rel)) || !isTextFile(path) {
			skipped++
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, skipped, nil
}

// IngestFile replaces the stored chunks of path and returns how many chunks
// were written.
func (i *Ingestor) IngestFile(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	chunks := i.chunker.Split(string(raw))
	if len(chunks) == 0 {
		return 0, nil
	}

	embeddings, err := i.embedChunks(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embed %s: %w", path, err)
	}

	source := filepath.ToSlash(path)
	docs := make([]ports.Document, len(chunks))
	for idx, chunk := range chunks {
		docs[idx] = ports.Document{
			ID:         uuid.NewSHA1(documentNamespace, fmt.Appendf(nil, "%s#%d", source, idx)).String(),
			Source:     source,
			ChunkIndex: idx,
			Content:    chunk,
			Embedding:  embeddings[idx],
			Metadata:   map[string]string{"path": source, "ext": strings.ToLower(filepath.Ext(path))},
		}
	}

	if _, err := i.store.DeleteSource(ctx, source); err != nil {
		return 0, err
	}
	if err := i.store.Upsert(ctx, docs...); err != nil {
		return 0, err
	}

	i.logger.Debug().Str("source", source).Int("chunks", len(docs)).Msg("Ingested file")
	return len(docs), nil
}

// embedChunks embeds chunks in batches, running up to concurrency batches at
// once. The first failure cancels the remaining batches.
func (i *Ingestor) embedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	out := make([][]float32, len(chunks))
	p := pool.New().WithContext(ctx).WithMaxGoroutines(i.concurrency).WithCancelOnError()
	for start := 0; start < len(chunks); start += i.batchSize {
		end := min(start+i.batchSize, len(chunks))
		p.Go(func(ctx context.Context) error {
			vecs, err := i.embedder.Embed(ctx, chunks[start:end])
			if err != nil {
				return err
			}
			if len(vecs) != end-start {
				return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vecs), end-start)
			}
			copy(out[start:end], vecs)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	for idx, vec := range out {
		if len(vec) == 0 {
			return nil, fmt.Errorf("missing embedding for chunk %d", idx)
		}
	}
	return out, nil
}

func isTextFile(path string) bool {
	return textExtensions[strings.ToLower(filepath.Ext(path))]
}
