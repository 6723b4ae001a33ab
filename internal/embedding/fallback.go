package embedding

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// FallbackProvider tries a second provider when the primary fails
type FallbackProvider struct {
	primary  Provider
	fallback Provider
	log      io.Writer
}

// NewFallbackProvider wraps primary with an optional fallback. Warnings go to log.
func NewFallbackProvider(primary, fallback Provider, log io.Writer) *FallbackProvider {
	if log == nil {
		log = io.Discard
	}
	return &FallbackProvider{primary: primary, fallback: fallback, log: log}
}

// Name returns the provider name
func (p *FallbackProvider) Name() string {
	if p.fallback == nil {
		return p.primary.Name()
	}
	return p.primary.Name() + "+" + p.fallback.Name()
}

// Embed generates an embedding with fallback on failure
func (p *FallbackProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := p.primary.Embed(ctx, text)
	if err == nil {
		return vec, nil
	}
	if p.fallback == nil || errors.Is(err, ErrEmptyText) || ctx.Err() != nil {
		return nil, err
	}

	_, _ = fmt.Fprintf(p.log, "warning: %s embedding failed, trying %s: %v\n", p.primary.Name(), p.fallback.Name(), err)
	return p.fallback.Embed(ctx, text)
}

// Close releases both providers
func (p *FallbackProvider) Close() error {
	var errs []error
	errs = append(errs, p.primary.Close())
	if p.fallback != nil {
		errs = append(errs, p.fallback.Close())
	}
	return errors.Join(errs...)
}
