package main

import (
	"context"
	"flag"
	"log"

	"dermo-chatbot-platform/internal/ai"
	"dermo-chatbot-platform/internal/config"
	"dermo-chatbot-platform/internal/corpus"
	"dermo-chatbot-platform/internal/index"
	"dermo-chatbot-platform/internal/logger"
)

// Rebuilds the product corpus from the brand workbooks and replaces the
// vector index. Run after a catalog update; the chat keeps serving from the
// old index until the swap.
func main() {
	skipBuild := flag.Bool("skip-build", false, "reuse the existing corpus files instead of re-reading the workbooks")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	var docs []corpus.Document
	if *skipBuild {
		docs, err = corpus.ReadDocuments(cfg.CorpusDir)
	} else {
		builder := &corpus.Builder{SourceDir: cfg.WorkbookDir, OutDir: cfg.CorpusDir}
		docs, err = builder.Build()
	}
	if err != nil {
		log.Fatal("Failed to build corpus:", err)
	}
	logger.Info("corpus ready", "documents", len(docs))

	ctx := context.Background()
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	embedder, err := ai.NewEmbedder(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to init embedder:", err)
	}
	defer embedder.Close()

	store := index.NewStore(mongoClient, cfg)
	if err := store.Rebuild(ctx, docs, embedder); err != nil {
		log.Fatal("Failed to rebuild index:", err)
	}

	n, err := store.Count(ctx)
	if err != nil {
		log.Fatal("Failed to count index entries:", err)
	}
	logger.Info("index rebuilt", "entries", n)
}
