package harnessports

import "context"

// Document is one embedded chunk of a source file.
type Document struct {
	ID         string
	Source     string
	ChunkIndex int
	Content    string
	Embedding  []float32
	Metadata   map[string]string
}

// ScoredDocument is a search hit; higher Score means more similar.
type ScoredDocument struct {
	Document
	Score float64
}

// DocumentStore persists embedded documents and answers similarity queries.
type DocumentStore interface {
	Upsert(ctx context.Context, docs ...Document) error
	Search(ctx context.Context, embedding []float32, k int) ([]ScoredDocument, error)
	Count(ctx context.Context) (int, error)
}
