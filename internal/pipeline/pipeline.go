package pipeline

import (
	"context"
	"fmt"
	"io"
	"iter"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/ppiankov/paperscout/internal/cache"
	"github.com/ppiankov/paperscout/internal/embedding"
	"github.com/ppiankov/paperscout/internal/extract/adapters"
	"github.com/ppiankov/paperscout/internal/model"
	"github.com/ppiankov/paperscout/internal/score"
	"github.com/ppiankov/paperscout/internal/util"
	"github.com/ppiankov/paperscout/internal/worker"
)

// Pipeline wires the fetchers, the retriever, the scorer and the driver
// for a configuration
type Pipeline struct {
	driver    *Driver
	retriever *AbstractRetriever
	encoder   embedding.Provider
	renderer  *Renderer
	config    *model.Config
	log       io.Writer
}

type pipelineOptions struct {
	transport http.RoundTripper
	encoder   embedding.Provider
}

// Option customizes NewPipeline
type Option func(*pipelineOptions)

// WithHTTPTransport routes index and publisher requests through rt
func WithHTTPTransport(rt http.RoundTripper) Option {
	return func(o *pipelineOptions) {
		o.transport = rt
	}
}

// WithEncoder replaces the configured embedding provider
func WithEncoder(p embedding.Provider) Option {
	return func(o *pipelineOptions) {
		o.encoder = p
	}
}

// NewPipeline creates a pipeline for cfg. Warnings are written to log.
func NewPipeline(ctx context.Context, cfg *model.Config, log io.Writer, opts ...Option) (*Pipeline, error) {
	if log == nil {
		log = io.Discard
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var o pipelineOptions
	for _, opt := range opts {
		opt(&o)
	}

	var memo cache.Cache
	if cfg.Cache.Enabled {
		memo = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	}

	encoder := o.encoder
	if encoder == nil {
		var err error
		encoder, err = embedding.NewFromConfig(ctx, cfg, memo, log)
		if err != nil {
			return nil, fmt.Errorf("create encoder: %w", err)
		}
	}

	var fetcherOpts []FetcherOption
	if o.transport != nil {
		fetcherOpts = append(fetcherOpts, WithTransport(o.transport))
	}
	indexFetcher := NewFetcher(cfg.HTTP, cfg.HTTP.IndexTimeout, fetcherOpts...)
	retriever := NewRetriever(cfg, memo, fetcherOpts...)

	scorer := score.NewScorer(encoder)
	pairs := NewVenueYearFetcher(indexFetcher, retriever, scorer, cfg.Index.BaseURL, cfg.Scoring.Threshold, log)

	return &Pipeline{
		driver:    NewDriver(pairs, scorer, cfg.Scoring.TopAuthors, log),
		retriever: retriever,
		encoder:   encoder,
		renderer:  NewRenderer(),
		config:    cfg,
		log:       log,
	}, nil
}

// NewRetriever builds the abstract retriever for cfg. memo may be nil.
func NewRetriever(cfg *model.Config, memo cache.Cache, opts ...FetcherOption) *AbstractRetriever {
	fetcher := NewFetcher(cfg.HTTP, cfg.HTTP.AbstractTimeout, opts...)

	retrieverOpts := []RetrieverOption{
		WithLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)),
	}
	if memo != nil {
		retrieverOpts = append(retrieverOpts, WithCache(memo, cfg.Cache.TTL))
	}
	if cfg.Robots.Respect {
		retrieverOpts = append(retrieverOpts, WithRobots(util.NewRobotsChecker(fetcher.Client(), fetcher.userAgent)))
	}
	return NewAbstractRetriever(fetcher, adapters.NewRegistry(), retrieverOpts...)
}

// Snapshots streams the run's progress. See Driver.Run.
func (p *Pipeline) Snapshots(ctx context.Context, params model.RunParams) iter.Seq[model.Snapshot] {
	return p.driver.Run(ctx, params)
}

// Run consumes a whole run and returns its report. The only error is a run
// that could not start because the query could not be encoded.
func (p *Pipeline) Run(ctx context.Context, params model.RunParams) (*model.Report, error) {
	started := time.Now().UTC()

	var final model.Snapshot
	for snap := range p.Snapshots(ctx, params) {
		final = snap
	}
	if final.Error != "" {
		return nil, fmt.Errorf("run %q: %s", params.Query, final.Error)
	}

	return NewReport(params, p.config.Scoring.Threshold, started, final), nil
}

// Retrieve exposes the abstract retriever on its own
func (p *Pipeline) Retrieve(ctx context.Context, rawURL string) model.Abstract {
	return p.retriever.Retrieve(ctx, rawURL)
}

// Close releases the encoder
func (p *Pipeline) Close() error {
	return p.encoder.Close()
}

// NewReport builds a report from the final snapshot of a run
func NewReport(params model.RunParams, threshold float64, started time.Time, final model.Snapshot) *model.Report {
	return &model.Report{
		RunID:      ulid.Make().String(),
		Params:     params,
		Threshold:  threshold,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Pairs:      final.Processed,
		Papers:     final.Papers,
		Filtered:   final.Filtered,
		TopAuthors: final.TopAuthors,
		Warnings:   final.Warnings,
	}
}

// RenderReport renders the report to the specified outputs and prints the
// summary to w
func (p *Pipeline) RenderReport(w io.Writer, report *model.Report, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			_, _ = fmt.Fprintf(p.log, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			_, _ = fmt.Fprintf(p.log, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(w, report)
	return nil
}
