package index

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRankOrdersByScoreAndTruncates(t *testing.T) {
	entries := []Entry{
		{EAN: "1", Vector: []float32{1, 0}},
		{EAN: "2", Vector: []float32{0.9, 0.1}},
		{EAN: "3", Vector: []float32{0, 1}},
		{EAN: "4", Vector: []float32{-1, 0}},
	}

	hits := rank(entries, []float32{1, 0}, 2)
	if len(hits) != 2 {
		t.Fatalf("want 2 hits, got %d", len(hits))
	}
	if hits[0].EAN != "1" || hits[1].EAN != "2" {
		t.Errorf("hit order = [%s, %s], want [1, 2]", hits[0].EAN, hits[1].EAN)
	}
	if hits[0].Score < hits[1].Score {
		t.Errorf("scores not descending: %v then %v", hits[0].Score, hits[1].Score)
	}
}

func TestRankFewerEntriesThanK(t *testing.T) {
	entries := []Entry{{EAN: "1", Vector: []float32{1, 0}}}
	hits := rank(entries, []float32{1, 0}, 30)
	if len(hits) != 1 {
		t.Fatalf("want 1 hit, got %d", len(hits))
	}
}
