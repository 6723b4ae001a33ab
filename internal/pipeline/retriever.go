package pipeline

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/ppiankov/paperscout/internal/cache"
	"github.com/ppiankov/paperscout/internal/extract/adapters"
	"github.com/ppiankov/paperscout/internal/model"
	"github.com/ppiankov/paperscout/internal/util"
	"github.com/ppiankov/paperscout/internal/worker"
	"golang.org/x/net/html"
)

const robotsDisallowedText = "Disallowed by robots.txt"

// AbstractRetriever fetches a publisher page and applies the matching
// extraction rule. It never returns an error; failures are reported
// through the status of the returned Abstract.
//
// The rule is chosen from the requested URL and, when that host has no rule,
// from the URL the request ended at after redirects. A doi.org link that
// redirects to dl.acm.org is therefore handled by the ACM rule rather than
// reported as Unsupported.
type AbstractRetriever struct {
	fetcher  *Fetcher
	registry *adapters.Registry
	cache    cache.Cache
	ttl      time.Duration
	limiter  *worker.Limiter
	robots   *util.RobotsChecker
}

// RetrieverOption customizes an AbstractRetriever
type RetrieverOption func(*AbstractRetriever)

// WithCache memoizes definitive outcomes. Transport errors are never cached.
func WithCache(c cache.Cache, ttl time.Duration) RetrieverOption {
	return func(r *AbstractRetriever) {
		r.cache = c
		r.ttl = ttl
	}
}

// WithLimiter spaces out requests per publisher host
func WithLimiter(l *worker.Limiter) RetrieverOption {
	return func(r *AbstractRetriever) {
		r.limiter = l
	}
}

// WithRobots skips pages that robots.txt disallows
func WithRobots(rc *util.RobotsChecker) RetrieverOption {
	return func(r *AbstractRetriever) {
		r.robots = rc
	}
}

// NewAbstractRetriever creates a retriever using the given publisher rules
func NewAbstractRetriever(fetcher *Fetcher, registry *adapters.Registry, opts ...RetrieverOption) *AbstractRetriever {
	r := &AbstractRetriever{
		fetcher:  fetcher,
		registry: registry,
		cache:    cache.Nop{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns the abstract behind rawURL. An empty URL is NotFound with
// empty text and issues no request.
func (r *AbstractRetriever) Retrieve(ctx context.Context, rawURL string) model.Abstract {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return model.Abstract{Status: model.AbstractNotFound}
	}

	key := cache.Key("abstract", rawURL)
	if raw, ok := r.cache.Get(key); ok {
		if abstract, ok := decodeAbstract(raw); ok {
			return abstract
		}
	}

	abstract := r.retrieve(ctx, rawURL)
	if abstract.Status != model.AbstractTransportError {
		_ = r.cache.Set(key, encodeAbstract(abstract), r.ttl)
	}
	return abstract
}

func (r *AbstractRetriever) retrieve(ctx context.Context, rawURL string) model.Abstract {
	if r.robots != nil && !r.robots.Allowed(ctx, rawURL) {
		return model.Abstract{Text: robotsDisallowedText, Status: model.AbstractUnsupported}
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx, rawURL); err != nil {
			return transportError(err)
		}
	}

	result, err := r.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return transportError(err)
	}

	// doi.org links redirect to the publisher, so the final URL gets a second chance
	adapter, ok := r.registry.FindAdapter(rawURL)
	if !ok {
		adapter, ok = r.registry.FindAdapter(result.FinalURL)
	}
	if !ok {
		return model.Abstract{Text: model.AbstractUnsupportedText, Status: model.AbstractUnsupported}
	}

	doc, err := html.Parse(bytes.NewReader(result.Body))
	if err != nil {
		return transportError(err)
	}

	text, found := adapter.ExtractAbstract(doc)
	if !found || text == "" {
		return model.Abstract{Text: model.AbstractNotFoundText, Status: model.AbstractNotFound}
	}
	return model.Abstract{Text: text, Status: model.AbstractFound}
}

func transportError(err error) model.Abstract {
	return model.Abstract{Text: "Error: " + err.Error(), Status: model.AbstractTransportError}
}

func encodeAbstract(a model.Abstract) []byte {
	return append([]byte{byte(a.Status)}, a.Text...)
}

func decodeAbstract(raw []byte) (model.Abstract, bool) {
	if len(raw) == 0 {
		return model.Abstract{}, false
	}
	return model.Abstract{Status: model.AbstractStatus(raw[0]), Text: string(raw[1:])}, true
}
