package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/paperscout/internal/model"
)

func TestFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != model.DefaultUserAgent {
			t.Errorf("expected browser user agent, got %q", r.Header.Get("User-Agent"))
		}
		if !strings.Contains(r.Header.Get("Accept"), "text/html") {
			t.Errorf("expected HTML accept header, got %q", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	f := NewFetcher(model.HTTPConfig{}, 5*time.Second)
	result, err := f.Fetch(context.Background(), server.URL+"/page")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(result.Body) != "<html>ok</html>" {
		t.Errorf("unexpected body: %q", result.Body)
	}
	if result.FinalURL != server.URL+"/page" || result.StatusCode != http.StatusOK {
		t.Errorf("unexpected metadata: %+v", result)
	}
}

func TestFetcher_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	f := NewFetcher(model.HTTPConfig{}, 5*time.Second)
	_, err := f.Fetch(context.Background(), server.URL)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 StatusError, got %v", err)
	}
}

func TestFetcher_RedirectsAndFinalURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/doi":
			http.Redirect(w, r, "/landing", http.StatusFound)
		case "/loop":
			http.Redirect(w, r, "/loop", http.StatusFound)
		default:
			_, _ = w.Write([]byte("landing"))
		}
	}))
	defer server.Close()

	f := NewFetcher(model.HTTPConfig{MaxRedirects: 2}, 5*time.Second)

	result, err := f.Fetch(context.Background(), server.URL+"/doi")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if result.FinalURL != server.URL+"/landing" {
		t.Errorf("expected final URL after redirect, got %s", result.FinalURL)
	}

	if _, err := f.Fetch(context.Background(), server.URL+"/loop"); err == nil || !strings.Contains(err.Error(), "stopped after 2 redirects") {
		t.Errorf("expected redirect cap error, got %v", err)
	}
}

func TestFetcher_MaxBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer server.Close()

	f := NewFetcher(model.HTTPConfig{MaxBodyBytes: 10}, 5*time.Second)
	result, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(result.Body) != 10 {
		t.Errorf("expected body truncated to 10 bytes, got %d", len(result.Body))
	}
}

func TestFetcher_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	f := NewFetcher(model.HTTPConfig{}, 20*time.Millisecond)
	if _, err := f.Fetch(context.Background(), server.URL); err == nil {
		t.Error("expected timeout error")
	}
}
