package score

import (
	"context"
	"fmt"

	"github.com/ppiankov/paperscout/internal/embedding"
	"github.com/ppiankov/paperscout/internal/model"
)

// DefaultThreshold is the similarity a paper must exceed to match
const DefaultThreshold = 0.4

// Encoder turns text into a vector comparable with the reference embedding
type Encoder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Result is the outcome of scoring one paper
type Result struct {
	Matched     bool
	Similarity  float64 // 0 unless Matched
	AuthorDelta *model.AuthorTally
}

// Scorer compares paper text against a reference embedding
type Scorer struct {
	encoder Encoder
}

// NewScorer creates a new scorer
func NewScorer(encoder Encoder) *Scorer {
	return &Scorer{encoder: encoder}
}

// Reference encodes the run query. It is computed once per run.
func (s *Scorer) Reference(ctx context.Context, query string) ([]float32, error) {
	vec, err := s.encoder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrNoReference, err)
	}
	return vec, nil
}

// Score classifies text as a match when its cosine similarity to reference
// exceeds threshold. Non-matches report a similarity of 0 and an empty delta.
// An encoder error or a vector whose length differs from reference is
// returned alongside a non-matching result.
func (s *Scorer) Score(ctx context.Context, text string, reference []float32, authors []string, threshold float64) (Result, error) {
	result := Result{AuthorDelta: model.NewAuthorTally()}
	if text == "" {
		return result, nil
	}

	vec, err := s.encoder.Embed(ctx, text)
	if err != nil {
		return result, fmt.Errorf("encode paper text: %w", err)
	}
	if len(vec) != len(reference) {
		return result, fmt.Errorf("embedding dimensions %d do not match reference %d", len(vec), len(reference))
	}

	similarity := embedding.CosineSimilarity(vec, reference)
	if similarity <= threshold {
		return result, nil
	}

	result.Matched = true
	result.Similarity = similarity
	result.AuthorDelta.AddAuthors(authors)
	return result, nil
}
