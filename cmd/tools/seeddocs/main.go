// seeddocs ingests a directory of 45Q regulation documents into the
// persistent knowledge base so the API starts with a populated vector store.
//
// Usage:
//
//	seeddocs -dir ./documents -persist ./vector_db
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"carboncredit/pkg/core/guidance"
)

func main() {
	godotenv.Load()

	dir := flag.String("dir", "documents", "directory of documents to ingest (.txt, .md, .html)")
	persist := flag.String("persist", "./vector_db", "vector store persistence path")
	flag.Parse()

	if _, err := os.Stat(*dir); os.IsNotExist(err) {
		fmt.Printf("[SEED] Documents directory not found: %s\n", *dir)
		os.Exit(1)
	}
	if err := os.MkdirAll(*persist, 0o755); err != nil {
		fmt.Printf("[SEED] Failed to create %s: %v\n", *persist, err)
		os.Exit(1)
	}

	ctx := context.Background()

	embedder, err := guidance.NewGeminiEmbedder(ctx, "")
	if err != nil {
		fmt.Printf("[SEED] Embedder init failed: %v\n", err)
		os.Exit(1)
	}
	defer embedder.Close()

	vs, err := guidance.NewVectorStore(guidance.StoreConfig{
		PersistPath: *persist,
		Collection:  "regulations",
	}, embedder)
	if err != nil {
		fmt.Printf("[SEED] Vector store init failed: %v\n", err)
		os.Exit(1)
	}

	svc := guidance.NewService(vs, nil)
	result, err := svc.IngestDirectory(ctx, *dir)
	if err != nil {
		fmt.Printf("[SEED] Ingestion failed: %v\n", err)
		os.Exit(1)
	}

	stats := svc.Stats()
	fmt.Printf("[SEED] Processed %d documents into %d chunks\n", result.DocumentsProcessed, result.TotalChunks)
	fmt.Printf("[SEED] Collection %q now holds %d chunks\n", stats.CollectionName, stats.TotalDocuments)
}
