// Package index maintains the product vector index in MongoDB and answers
// similarity queries against it.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"dermo-chatbot-platform/internal/ai"
	"dermo-chatbot-platform/internal/config"
	"dermo-chatbot-platform/internal/corpus"
	"dermo-chatbot-platform/internal/logger"
)

const embedBatchSize = 100

// Entry is one indexed product document.
type Entry struct {
	Brand  string    `bson:"marca"`
	EAN    string    `bson:"ean"`
	Text   string    `bson:"texto"`
	Vector []float32 `bson:"vector"`
}

// Hit is one similarity search result, best first.
type Hit struct {
	Brand string
	EAN   string
	Text  string
	Score float64
}

type Store struct {
	collection *mongo.Collection
	cfg        *config.Config
}

func NewStore(client *mongo.Client, cfg *config.Config) *Store {
	return &Store{
		collection: client.Database(cfg.DBName).Collection("products"),
		cfg:        cfg,
	}
}

// Rebuild replaces the whole index with freshly embedded corpus documents.
// The index is rebuilt wholesale because brand catalogs arrive as full
// spreadsheet exports, not deltas.
func (s *Store) Rebuild(ctx context.Context, docs []corpus.Document, embedder ai.Embedder) error {
	if len(docs) == 0 {
		return fmt.Errorf("refusing to rebuild index from an empty corpus")
	}

	entries := make([]interface{}, 0, len(docs))
	for start := 0; start < len(docs); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for i, d := range batch {
			texts[i] = d.Text
		}
		vectors, err := embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch at %d: %w", start, err)
		}
		for i, d := range batch {
			entries = append(entries, Entry{Brand: d.Brand, EAN: d.EAN, Text: d.Text, Vector: vectors[i]})
		}
		logger.Info("Embedded corpus batch", "from", start, "to", end, "total", len(docs))
	}

	if err := s.collection.Drop(ctx); err != nil {
		return fmt.Errorf("drop products collection: %w", err)
	}
	if _, err := s.collection.InsertMany(ctx, entries); err != nil {
		return fmt.Errorf("insert index entries: %w", err)
	}
	logger.Info("Vector index rebuilt", "entries", len(entries))
	return nil
}

// Search returns the k nearest entries for the query vector. With Atlas
// vector search enabled it runs a $vectorSearch aggregation; otherwise it
// scans the collection and ranks by cosine similarity, which is fine at
// dermo-catalog scale.
func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]Hit, error) {
	if s.cfg.VectorSearchEnabled {
		return s.atlasSearch(ctx, vector, k)
	}
	entries, err := s.allEntries(ctx)
	if err != nil {
		return nil, err
	}
	return rank(entries, vector, k), nil
}

// Count reports how many products are indexed.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.collection.CountDocuments(ctx, bson.M{})
}

func (s *Store) atlasSearch(ctx context.Context, vector []float32, k int) ([]Hit, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.M{
			"index":         s.cfg.VectorIndexName,
			"path":          "vector",
			"queryVector":   vector,
			"numCandidates": k * 10,
			"limit":         k,
		}}},
		{{Key: "$project", Value: bson.M{
			"marca": 1,
			"ean":   1,
			"texto": 1,
			"score": bson.M{"$meta": "vectorSearchScore"},
		}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("vector search aggregate: %w", err)
	}
	defer cursor.Close(ctx)

	var hits []Hit
	for cursor.Next(ctx) {
		var doc struct {
			Brand string  `bson:"marca"`
			EAN   string  `bson:"ean"`
			Text  string  `bson:"texto"`
			Score float64 `bson:"score"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		hits = append(hits, Hit{Brand: doc.Brand, EAN: doc.EAN, Text: doc.Text, Score: doc.Score})
	}
	return hits, cursor.Err()
}

func (s *Store) allEntries(ctx context.Context) ([]Entry, error) {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("load index entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// rank scores every entry against the query vector and keeps the top k.
func rank(entries []Entry, vector []float32, k int) []Hit {
	hits := make([]Hit, 0, len(entries))
	for _, e := range entries {
		hits = append(hits, Hit{
			Brand: e.Brand,
			EAN:   e.EAN,
			Text:  e.Text,
			Score: cosineSimilarity(e.Vector, vector),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
