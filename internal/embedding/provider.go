// Package embedding turns text into fixed-length vectors. Providers are
// interchangeable; the scorer only needs Embed.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Provider defines the interface for embedding backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Embed encodes text into a vector
	Embed(ctx context.Context, text string) ([]float32, error)

	// Close releases resources
	Close() error
}

// ErrEmptyText is returned when asked to embed an empty string
var ErrEmptyText = errors.New("empty text")

// CosineSimilarity returns the cosine of the angle between a and b in [-1, 1].
// Mismatched lengths and zero vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	denominator := math.Sqrt(normA) * math.Sqrt(normB)
	if denominator == 0 {
		return 0
	}
	return dot / denominator
}

func checkDimensions(vec []float32, want int) error {
	if want > 0 && len(vec) != want {
		return fmt.Errorf("unexpected embedding dimensions: got %d, want %d", len(vec), want)
	}
	if len(vec) == 0 {
		return fmt.Errorf("provider returned an empty embedding")
	}
	return nil
}
