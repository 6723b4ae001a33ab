package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 4 {
		t.Errorf("expected default burst 4 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://dl.acm.org/doi/10.1145/1"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "https://ieeexplore.ieee.org/document/1"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if len(limiter.limiters) != 2 {
		t.Errorf("expected 2 hosts, got %d", len(limiter.limiters))
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if err := limiter.Wait(context.Background(), "https://dl.acm.org/doi/1"); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// burst 1 is consumed; the next token is a second away
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, "https://DL.ACM.ORG:443/doi/2"); err == nil {
		t.Errorf("expected same host with different case and port to be limited")
	}
	if err := limiter.Wait(context.Background(), "https://link.springer.com/chapter/1"); err != nil {
		t.Errorf("expected other host to proceed, got %v", err)
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(0, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	for i := 0; i < 10; i++ {
		if err := limiter.Wait(ctx, "https://dl.acm.org/"); err != nil {
			t.Fatalf("request %d limited with limiting disabled: %v", i, err)
		}
	}
}

func TestLimiter_NoHost(t *testing.T) {
	if err := NewLimiter(1, 1).Wait(context.Background(), "/doi/1"); err == nil {
		t.Error("expected error for URL without host")
	}
}

func TestHostKey(t *testing.T) {
	host, err := hostKey("https://Dl.Acm.Org:8443/doi/1")
	if err != nil {
		t.Fatalf("hostKey failed: %v", err)
	}
	if host != "dl.acm.org" {
		t.Errorf("expected dl.acm.org, got %s", host)
	}

	if _, err := hostKey("::invalid"); err == nil {
		t.Errorf("expected error for invalid URL")
	}
	if _, err := hostKey("/relative/path"); err == nil {
		t.Errorf("expected error for URL without host")
	}
}
