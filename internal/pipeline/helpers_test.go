package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// hostTransport serves requests in-process, dispatching on the URL's host
type hostTransport struct {
	mu       sync.Mutex
	handlers map[string]http.Handler
	requests []string
}

func newHostTransport() *hostTransport {
	return &hostTransport{handlers: make(map[string]http.Handler)}
}

func (t *hostTransport) Handle(host string, h http.HandlerFunc) {
	t.handlers[host] = h
}

func (t *hostTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	t.requests = append(t.requests, req.URL.String())
	h, ok := t.handlers[req.URL.Hostname()]
	t.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("dial tcp: lookup %s: no such host", req.URL.Hostname())
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

func (t *hostTransport) Requests() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.requests...)
}

func (t *hostTransport) RequestsTo(host string) int {
	n := 0
	for _, r := range t.Requests() {
		if strings.Contains(r, "://"+host+"/") {
			n++
		}
	}
	return n
}

func htmlHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}
}

// keywordEncoder embeds text on fixed topic axes so similarities are predictable
type keywordEncoder struct {
	mu    sync.Mutex
	calls int
	fail  map[string]bool
}

var topicAxes = []string{"gpu", "bird", "scheduling", "consensus"}

func (e *keywordEncoder) Name() string { return "keyword" }

func (e *keywordEncoder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	if e.fail[text] {
		return nil, fmt.Errorf("encoder unavailable")
	}

	lower := strings.ToLower(text)
	vec := make([]float32, len(topicAxes)+1)
	for i, axis := range topicAxes {
		if strings.Contains(lower, axis) {
			vec[i] = 1
		}
	}
	vec[len(topicAxes)] = 0.1
	return vec, nil
}

func (e *keywordEncoder) Close() error { return nil }

// citation is one entry of a fake index listing
type citation struct {
	title   string
	authors []string
	link    string
}

func listingHTML(citations ...citation) string {
	var b strings.Builder
	b.WriteString(`<html><body><ul class="publ-list">`)
	for _, c := range citations {
		b.WriteString(`<li class="entry inproceedings">`)
		if c.link != "" {
			fmt.Fprintf(&b, `<nav class="publ"><ul><li class="ee"><a href="%s">ee</a></li></ul></nav>`, c.link)
		}
		b.WriteString(`<cite class="data">`)
		for _, a := range c.authors {
			fmt.Fprintf(&b, `<span itemprop="author"><span itemprop="name">%s</span></span>, `, a)
		}
		if c.title != "" {
			fmt.Fprintf(&b, `<span class="title">%s</span>`, c.title)
		}
		b.WriteString(`</cite></li>`)
	}
	b.WriteString(`</ul></body></html>`)
	return b.String()
}

const acmPage = `<html><head><title>ACM</title></head><body>
<div class="abstractSection abstractInFull"><p>fast GPU scheduling system</p></div>
</body></html>`
