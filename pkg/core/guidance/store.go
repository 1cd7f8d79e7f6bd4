package guidance

import (
	"context"
	"fmt"
	"path/filepath"

	chromem "github.com/philippgille/chromem-go"
)

// StoreConfig holds vector store configuration
type StoreConfig struct {
	PersistPath string // Directory to persist data; empty for in-memory
	Collection  string // Collection name
}

// Document is a chunk of regulation text held in the vector store
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// SearchResult pairs a matched document with its cosine similarity
type SearchResult struct {
	Document   Document
	Similarity float32 // 0.0 to 1.0
}

// StoreStats describes the current state of the vector store
type StoreStats struct {
	TotalDocuments int    `json:"total_documents"`
	CollectionName string `json:"collection_name"`
}

// VectorStore manages embeddings and similarity search over regulation text
type VectorStore interface {
	Add(ctx context.Context, docs []Document) error
	SearchByText(ctx context.Context, query string, topK int, minSimilarity float32) ([]SearchResult, error)
	Stats() StoreStats
}

// chromemStore implements VectorStore using chromem-go
type chromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	config     StoreConfig
}

// NewVectorStore creates a vector store, persisted under config.PersistPath
// when one is given
func NewVectorStore(config StoreConfig, embedder Embedder) (VectorStore, error) {
	if config.Collection == "" {
		config.Collection = "regulations"
	}

	var db *chromem.DB
	var err error

	if config.PersistPath != "" {
		persistFile := filepath.Join(config.PersistPath, "chromem.gob")
		db, err = chromem.NewPersistentDB(persistFile, false)
		if err != nil {
			return nil, fmt.Errorf("VECTOR_STORE_ERROR: create persistent DB: %v", err)
		}
	} else {
		db = chromem.NewDB()
	}

	embeddingFunc := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	}

	collection, err := db.GetOrCreateCollection(config.Collection, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("VECTOR_STORE_ERROR: create collection: %v", err)
	}

	return &chromemStore{
		db:         db,
		collection: collection,
		config:     config,
	}, nil
}

func (s *chromemStore) Add(ctx context.Context, docs []Document) error {
	for _, doc := range docs {
		err := s.collection.AddDocument(ctx, chromem.Document{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: doc.Metadata,
		})
		if err != nil {
			return fmt.Errorf("VECTOR_STORE_ERROR: add document %s: %v", doc.ID, err)
		}
	}
	return nil
}

func (s *chromemStore) SearchByText(ctx context.Context, query string, topK int, minSimilarity float32) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	// chromem errors when asked for more results than stored documents
	if count := s.collection.Count(); count < topK {
		topK = count
	}
	if topK == 0 {
		return nil, nil
	}

	results, err := s.collection.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("VECTOR_STORE_ERROR: query collection: %v", err)
	}

	var searchResults []SearchResult
	for _, r := range results {
		if r.Similarity < minSimilarity {
			continue
		}
		searchResults = append(searchResults, SearchResult{
			Document: Document{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: r.Metadata,
			},
			Similarity: r.Similarity,
		})
	}
	return searchResults, nil
}

func (s *chromemStore) Stats() StoreStats {
	return StoreStats{
		TotalDocuments: s.collection.Count(),
		CollectionName: s.config.Collection,
	}
}
