// Package rag retrieves knowledge passages relevant to a user message.
package rag

import "context"

// Passage is one knowledge sentence. ID is its position in the corpus.
type Passage struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Hit is a retrieved passage and its squared L2 distance to the query.
type Hit struct {
	Passage
	Distance float32 `json:"distance"`
}

// VectorStore holds passage embeddings and answers nearest-neighbour queries.
type VectorStore interface {
	// Replace swaps the stored corpus for passages. vectors[i] embeds passages[i].
	Replace(ctx context.Context, passages []Passage, vectors [][]float32) error
	// Search returns up to k hits, nearest first.
	Search(ctx context.Context, query []float32, k int) ([]Hit, error)
	Count(ctx context.Context) (int, error)
}
