package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/url"
	"strings"

	"github.com/ppiankov/paperscout/internal/extract"
	"github.com/ppiankov/paperscout/internal/model"
	"github.com/ppiankov/paperscout/internal/score"
)

// PairResult is what one (venue, year) pair contributes to a run
type PairResult struct {
	All      []model.Paper
	Filtered []model.Paper
	Tally    *model.AuthorTally
}

func emptyPair() PairResult {
	return PairResult{Tally: model.NewAuthorTally()}
}

// VenueYearFetcher queries the bibliographic index for one (venue, year)
// pair and enriches and scores every citation it lists
type VenueYearFetcher struct {
	fetcher   *Fetcher
	retriever *AbstractRetriever
	scorer    *score.Scorer
	baseURL   string
	threshold float64
	log       io.Writer
}

// NewVenueYearFetcher creates a fetcher against the index at baseURL
func NewVenueYearFetcher(fetcher *Fetcher, retriever *AbstractRetriever, scorer *score.Scorer, baseURL string, threshold float64, log io.Writer) *VenueYearFetcher {
	if log == nil {
		log = io.Discard
	}
	return &VenueYearFetcher{
		fetcher:   fetcher,
		retriever: retriever,
		scorer:    scorer,
		baseURL:   baseURL,
		threshold: threshold,
		log:       log,
	}
}

// IndexQueryURL builds the single listing request for a pair
func IndexQueryURL(baseURL, venue string, year int) string {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("streamid:conf/%s:year:%d:", model.IndexKey(venue), year))
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return baseURL + sep + q.Encode()
}

// Fetch returns the pair's papers, the matching subset and its author tally.
// On any request or parse failure the result is empty and the error is a
// *model.PairError describing what was lost.
func (f *VenueYearFetcher) Fetch(ctx context.Context, venue string, year int, reference []float32) (PairResult, error) {
	pairErr := func(kind model.ErrorKind, err error) (PairResult, error) {
		return emptyPair(), &model.PairError{Kind: kind, Venue: venue, Year: year, Err: err}
	}

	page, err := f.fetcher.Fetch(ctx, IndexQueryURL(f.baseURL, venue, year))
	if err != nil {
		return pairErr(model.KindTransport, err)
	}

	listing, err := extract.ParseCitations(bytes.NewReader(page.Body), page.FinalURL)
	if err != nil {
		return pairErr(model.KindPairFailure, err)
	}
	if listing.Skipped > 0 {
		_, _ = fmt.Fprintf(f.log, "note: %s %d: %s: skipped %d citations without a title\n", venue, year, model.KindMalformedEntry, listing.Skipped)
	}

	result := emptyPair()
	for _, c := range listing.Citations {
		if err := ctx.Err(); err != nil {
			return pairErr(model.KindPairFailure, err)
		}

		abstract := f.retriever.Retrieve(ctx, c.Link)
		text := c.Title
		if abstract.OK() {
			text = c.Title + " " + abstract.Text
		}

		scored, err := f.scorer.Score(ctx, text, reference, c.Authors, f.threshold)
		if err != nil {
			_, _ = fmt.Fprintf(f.log, "warning: %s %d: %q: %v\n", venue, year, c.Title, err)
		}

		paper := model.Paper{
			Title:   c.Title,
			Authors: c.Authors,
			Link:    c.Link,
			Year:    year,
			Venue:   venue,
		}
		if abstract.OK() {
			paper.Abstract = abstract.Text
		}

		rounded := round2(scored.Similarity)
		matched := scored.Matched && rounded > f.threshold
		if matched {
			paper.Score = rounded
		}

		result.All = append(result.All, paper)
		if matched {
			result.Filtered = append(result.Filtered, paper)
			result.Tally.Merge(scored.AuthorDelta)
		}
	}

	return result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
