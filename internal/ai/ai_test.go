package ai

import (
	"context"
	"errors"
	"math"
	"testing"
)

type mapEmbedder map[string][]float64

func (m mapEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	vec, ok := m[text]
	if !ok {
		return nil, errors.New("unknown text")
	}
	return vec, nil
}

func (m mapEmbedder) Model() string { return "map" }

func TestCosine(t *testing.T) {
	tests := []struct {
		name   string
		a, b   []float64
		expect float64
	}{
		{"parallel", []float64{1, 2}, []float64{2, 4}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
		{"length mismatch", []float64{1}, []float64{1, 1}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.expect) > 1e-9 {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := map[float64]float64{-0.2: 0, 1.7: 1, 0.4: 0.4}
	for in, expect := range tests {
		if got := Clamp(in); got != expect {
			t.Fatalf("Clamp(%v) = %v, expected %v", in, got, expect)
		}
	}
	if got := Clamp(math.NaN()); got != 0 {
		t.Fatalf("Clamp(NaN) = %v, expected 0", got)
	}
}

func TestEmbeddingScorer(t *testing.T) {
	scorer := NewEmbeddingScorer(mapEmbedder{
		"profile":  {1, 0},
		"close":    {1, 1},
		"opposite": {-1, 0},
	})
	if scorer.Name() != "embedding:map" {
		t.Fatalf("unexpected name %q", scorer.Name())
	}

	near, err := scorer.Score(context.Background(), "profile", "close")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(near.Score-math.Sqrt2/2) > 1e-9 {
		t.Fatalf("unexpected score %v", near.Score)
	}

	opposite, err := scorer.Score(context.Background(), "profile", "opposite")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opposite.Score != 0 {
		t.Fatalf("negative similarity must clamp to 0, got %v", opposite.Score)
	}

	if _, err := scorer.Score(context.Background(), "profile", "missing"); err == nil {
		t.Fatalf("expected embedder error")
	}
}
