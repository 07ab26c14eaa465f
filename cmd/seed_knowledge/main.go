package main

import (
	"context"
	"flag"
	"os"
	"time"

	"mindcare-be/internal/config"
	"mindcare-be/internal/repository/implementation"
	"mindcare-be/pkg/database"
	embeddingFactory "mindcare-be/pkg/embedding/factory"
	"mindcare-be/pkg/knowledge"
	"mindcare-be/pkg/rag"

	"github.com/fatih/color"
)

func main() {
	force := flag.Bool("force", false, "re-embed even when the table already holds the corpus")
	flag.Parse()

	cfg := config.Load()
	color.Cyan("🌱 Seeding knowledge base into pgvector\n")

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.DefaultOptions())
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	corpus, err := knowledge.Load(cfg.Rag.KnowledgePath)
	if err != nil {
		color.Red("Failed to load corpus: %v", err)
		os.Exit(1)
	}
	color.Yellow("Corpus: %d passages", len(corpus))

	embedder, err := embeddingFactory.NewEmbeddingProvider(embeddingFactory.Options{
		Provider: cfg.Ai.EmbeddingProvider,
		Model:    cfg.Ai.EmbeddingModel,
		BaseURL:  cfg.EmbeddingBaseURL(),
		APIKey:   cfg.EmbeddingAPIKey(),
	})
	if err != nil {
		color.Red("Failed to create embedding provider: %v", err)
		os.Exit(1)
	}
	color.Yellow("Embedding with %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store := implementation.NewPgVectorStore(implementation.NewKnowledgeRepository(db))
	if *force {
		// An empty replace clears the table so Build re-embeds everything.
		if err := store.Replace(ctx, nil, nil); err != nil {
			color.Red("Failed to clear knowledge table: %v", err)
			os.Exit(1)
		}
	}

	retriever := rag.NewRetriever(embedder, store, corpus, cfg.Rag.TopK)
	if err := retriever.Build(ctx); err != nil {
		color.Red("Failed to seed knowledge: %v", err)
		os.Exit(1)
	}

	count, err := store.Count(ctx)
	if err != nil {
		color.Red("Failed to count knowledge rows: %v", err)
		os.Exit(1)
	}

	hits, err := retriever.Retrieve(ctx, "I feel anxious and can't sleep")
	if err != nil {
		color.Red("Sanity query failed: %v", err)
		os.Exit(1)
	}
	color.Green("✅ %d passages stored", count)
	for _, h := range hits {
		color.White("  %.4f  %s", h.Distance, h.Text)
	}
}
