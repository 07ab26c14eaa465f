package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"mindcare-be/pkg/embedding"
)

const DefaultTopK = 2

var ErrEmptyQuery = errors.New("query is empty")

// Retriever embeds the corpus once and serves nearest-passage lookups.
type Retriever struct {
	embedder embedding.Provider
	store    VectorStore
	corpus   []string
	topK     int

	mu    sync.Mutex
	built bool
}

func NewRetriever(embedder embedding.Provider, store VectorStore, corpus []string, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		embedder: embedder,
		store:    store,
		corpus:   append([]string(nil), corpus...),
		topK:     topK,
	}
}

// Corpus returns the passages in index order.
func (r *Retriever) Corpus() []Passage {
	out := make([]Passage, len(r.corpus))
	for i, text := range r.corpus {
		out[i] = Passage{ID: i, Text: text}
	}
	return out
}

// Build embeds every passage and loads the store. A store that already holds
// the whole corpus, such as a seeded pgvector table, is left untouched.
func (r *Retriever) Build(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buildLocked(ctx)
}

func (r *Retriever) buildLocked(ctx context.Context) error {
	if r.built {
		return nil
	}

	count, err := r.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count knowledge store: %w", err)
	}
	if count == len(r.corpus) && count > 0 {
		r.built = true
		return nil
	}

	passages := r.Corpus()
	vectors := make([][]float32, len(passages))
	for i, p := range passages {
		resp, err := r.embedder.Generate(ctx, p.Text, embedding.TaskRetrievalDocument)
		if err != nil {
			return fmt.Errorf("embed passage %d: %w", i, err)
		}
		vectors[i] = resp.Embedding.Values
	}

	if err := r.store.Replace(ctx, passages, vectors); err != nil {
		return fmt.Errorf("load knowledge store: %w", err)
	}
	r.built = true
	return nil
}

// Retrieve returns the min(topK, corpus size) passages nearest to query.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Hit, error) {
	return r.Search(ctx, query, r.topK)
}

// Search is Retrieve with an explicit k, clamped to the corpus size.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if k > len(r.corpus) {
		k = len(r.corpus)
	}
	if k <= 0 {
		return []Hit{}, nil
	}

	if err := r.Build(ctx); err != nil {
		return nil, err
	}

	resp, err := r.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	return r.store.Search(ctx, resp.Embedding.Values, k)
}

// Context joins hit texts with a single space, nearest first.
func Context(hits []Hit) string {
	return strings.Join(Texts(hits), " ")
}

// Texts lists the hit texts, nearest first.
func Texts(hits []Hit) []string {
	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Text
	}
	return texts
}

// Ready reports whether the store has been loaded.
func (r *Retriever) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.built
}
