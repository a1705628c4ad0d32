package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
)

const retrievalTemplate = `Use the following context to answer the question at the end.
If the answer is not directly stated, try your best based on the context.
Only say you don't know if the information is completely unavailable.

{{.Context}}

Question: {{.Question}}`

var retrievalTmpl = template.Must(template.New("retrieval").Parse(retrievalTemplate))

// RetrieverConfig configures the retrieval tool.
type RetrieverConfig struct {
	TopK             int
	MaxContextTokens int
	Options          ports.Options // secondary model settings
}

// RetrieverTool answers a question from the document store: it embeds the
// question, stuffs the closest chunks into a prompt and asks a secondary
// model.
type RetrieverTool struct {
	embedder  ports.Embedder
	store     ports.DocumentStore
	provider  ports.Provider
	assembler *ContextAssembler
	cfg       RetrieverConfig
}

// NewRetrieverTool creates the tool. TopK defaults to 10.
func NewRetrieverTool(embedder ports.Embedder, store ports.DocumentStore, provider ports.Provider, cfg RetrieverConfig) *RetrieverTool {
	if cfg.TopK <= 0 {
		cfg.TopK = 10
	}
	if cfg.MaxContextTokens <= 0 {
		cfg.MaxContextTokens = 6000
	}
	return &RetrieverTool{
		embedder:  embedder,
		store:     store,
		provider:  provider,
		assembler: NewContextAssembler(Budget{MaxContextTokens: cfg.MaxContextTokens, MaxSnippets: cfg.TopK}, nil),
		cfg:       cfg,
	}
}

func (t *RetrieverTool) Spec() ports.ToolSpec {
	return ports.ToolSpec{
		Name:        "retriever",
		Description: "Retrieves an answer using RAG from the ingested document collection.",
		Parameters: map[string]string{
			"question": "string - The question you want to ask based on the document context.",
		},
	}
}

// Invoke returns {"answer": {"query": question, "result": text}}.
func (t *RetrieverTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	question, err := stringArg(args, "question")
	if err != nil {
		return nil, err
	}

	vecs, err := t.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vecs) != 1 {
		return nil, errors.New("embedder returned no vector for the question")
	}

	hits, err := t.store.Search(ctx, vecs[0], t.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}

	packed := t.assembler.Pack(SnippetsFromHits(hits), nil)

	var prompt bytes.Buffer
	if err := retrievalTmpl.Execute(&prompt, struct{ Context, Question string }{
		Context:  strings.Join(packed, "\n\n"),
		Question: question,
	}); err != nil {
		return nil, fmt.Errorf("render retrieval prompt: %w", err)
	}

	completion, err := t.provider.Complete(ctx, ports.PromptInput{
		Messages: []ports.PromptMessage{{Role: ports.RoleUser, Content: prompt.String()}},
		Meta:     map[string]string{"phase": "retrieval"},
	}, t.cfg.Options)
	if err != nil {
		return nil, fmt.Errorf("retrieval model call: %w", err)
	}

	return map[string]any{
		"answer": map[string]any{
			"query":  question,
			"result": completion.Text,
		},
	}, nil
}

var _ ports.Tool = (*RetrieverTool)(nil)
