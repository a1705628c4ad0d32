package adapters

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
)

// maxEmbeddingBatch is the largest input list sent in one request.
const maxEmbeddingBatch = 100

// OpenAIEmbedder implements Embedder against an OpenAI-compatible /embeddings
// endpoint.
type OpenAIEmbedder struct {
	api   *OpenAIProvider
	model string
}

// NewOpenAIEmbedder creates an embedder for model.
func NewOpenAIEmbedder(cfg OpenAIConfig, model string) *OpenAIEmbedder {
	return &OpenAIEmbedder{api: NewOpenAIProvider(cfg), model: model}
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// Embed returns one vector per text, in input order.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts provided")
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxEmbeddingBatch {
		end := min(start+maxEmbeddingBatch, len(texts))
		batch, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	req := map[string]any{
		"model": e.model,
		"input": texts,
	}

	var resp embeddingResponse
	if err := postJSON(ctx, e.api.httpClient, e.api.baseURL+"/embeddings", e.api.apiKey, req, &resp); err != nil {
		return nil, err
	}

	embeddings := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(embeddings) {
			return nil, fmt.Errorf("invalid embedding index: %d", item.Index)
		}
		embeddings[item.Index] = item.Embedding
	}
	for i, emb := range embeddings {
		if emb == nil {
			return nil, fmt.Errorf("missing embedding for input %d", i)
		}
	}
	return embeddings, nil
}

// CachedEmbedder memoizes embeddings in a Cache keyed by model and text hash.
type CachedEmbedder struct {
	next  ports.Embedder
	cache ports.Cache
	model string
}

// NewCachedEmbedder wraps next with cache.
func NewCachedEmbedder(next ports.Embedder, cache ports.Cache, model string) *CachedEmbedder {
	return &CachedEmbedder{next: next, cache: cache, model: model}
}

// Embed serves cached vectors and forwards only the misses.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		if raw, ok := c.cache.Get(ctx, c.key(text)); ok {
			var vec []float32
			if err := json.Unmarshal(raw, &vec); err == nil {
				results[i] = vec
				continue
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return results, nil
	}

	fresh, err := c.next.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(fresh), len(missTexts))
	}

	for j, idx := range missIdx {
		results[idx] = fresh[j]
		if raw, err := json.Marshal(fresh[j]); err == nil {
			_ = c.cache.Set(ctx, c.key(missTexts[j]), raw, 0)
		}
	}
	return results, nil
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embedding:" + strings.ToLower(c.model) + ":" + hex.EncodeToString(sum[:])
}

var (
	_ ports.Embedder = (*OpenAIEmbedder)(nil)
	_ ports.Embedder = (*CachedEmbedder)(nil)
)
