package embedding

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/ppiankov/paperscout/internal/cache"
)

// CachedProvider memoizes vectors by text
type CachedProvider struct {
	inner Provider
	cache cache.Cache
}

// NewCachedProvider wraps inner with c
func NewCachedProvider(inner Provider, c cache.Cache) *CachedProvider {
	return &CachedProvider{inner: inner, cache: c}
}

// Name returns the wrapped provider's name
func (p *CachedProvider) Name() string {
	return p.inner.Name()
}

// Embed returns a cached vector or computes and stores one
func (p *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cache.Key("embedding:"+p.inner.Name(), text)
	if raw, ok := p.cache.Get(key); ok {
		if vec, ok := decodeVector(raw); ok {
			return vec, nil
		}
	}

	vec, err := p.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	_ = p.cache.Set(key, encodeVector(vec), 0)
	return vec, nil
}

// Close releases the wrapped provider
func (p *CachedProvider) Close() error {
	return p.inner.Close()
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(raw []byte) ([]float32, bool) {
	if len(raw) == 0 || len(raw)%4 != 0 {
		return nil, false
	}
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return vec, true
}
