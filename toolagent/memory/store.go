// Package memory stores embedded document chunks in libsql and serves the
// retriever tool's similarity search.
package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
	"gonum.org/v1/gonum/floats"
)

// Store implements DocumentStore over the embeddings_collection_data table
// using brute-force cosine similarity.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open, migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Upsert inserts documents or replaces those with the same ID.
func (s *Store) Upsert(ctx context.Context, docs ...ports.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO embeddings_collection_data (id, source, chunk_index, content, embedding, dims, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			chunk_index = excluded.chunk_index,
			content = excluded.content,
			embedding = excluded.embedding,
			dims = excluded.dims,
			metadata = excluded.metadata
	`

	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("document %s has no embedding", doc.ID)
		}

		vectorBlob, err := json.Marshal(doc.Embedding)
		if err != nil {
			return fmt.Errorf("failed to encode vector: %w", err)
		}

		meta := doc.Metadata
		if meta == nil {
			meta = map[string]string{}
		}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query,
			doc.ID, doc.Source, doc.ChunkIndex, doc.Content, vectorBlob, len(doc.Embedding), string(metaJSON),
		); err != nil {
			return fmt.Errorf("failed to upsert document %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// DeleteSource removes every chunk that came from source.
func (s *Store) DeleteSource(ctx context.Context, source string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM embeddings_collection_data WHERE source = ?`, source)
	if err != nil {
		return 0, fmt.Errorf("failed to delete source %s: %w", source, err)
	}
	return res.RowsAffected()
}

// Search returns the k documents most similar to embedding, best first.
// Rows whose dimension differs from the query are skipped.
func (s *Store) Search(ctx context.Context, embedding []float32, k int) ([]ports.ScoredDocument, error) {
	if k <= 0 || len(embedding) == 0 {
		return nil, nil
	}

	query := toFloat64(embedding)
	queryNorm := floats.Norm(query, 2)
	if queryNorm == 0 {
		return nil, fmt.Errorf("query embedding has zero norm")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, chunk_index, content, embedding, metadata
		FROM embeddings_collection_data
		WHERE dims = ?
	`, len(embedding))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vectors: %w", err)
	}
	defer rows.Close()

	var candidates []ports.ScoredDocument
	for rows.Next() {
		var (
			doc          ports.Document
			embeddingRaw []byte
			metaRaw      string
		)
		if err := rows.Scan(&doc.ID, &doc.Source, &doc.ChunkIndex, &doc.Content, &embeddingRaw, &metaRaw); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if err := json.Unmarshal(embeddingRaw, &doc.Embedding); err != nil {
			continue // Skip invalid vectors
		}
		if len(doc.Embedding) != len(embedding) {
			continue
		}
		_ = json.Unmarshal([]byte(metaRaw), &doc.Metadata)

		vec := toFloat64(doc.Embedding)
		norm := floats.Norm(vec, 2)
		if norm == 0 {
			continue
		}

		candidates = append(candidates, ports.ScoredDocument{
			Document: doc,
			Score:    floats.Dot(query, vec) / (queryNorm * norm),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// Count reports the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings_collection_data`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

var _ ports.DocumentStore = (*Store)(nil)
