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
	if l2.defaultBurst != 1 {
		t.Errorf("expected default burst 1 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "http://localhost:11434"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "https://api.openai.com/v1"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_SharesLimiterPerHost(t *testing.T) {
	limiter := NewLimiter(1, 1)

	a := limiter.getLimiter(hostOf("https://api.openai.com/v1"))
	b := limiter.getLimiter(hostOf("https://api.openai.com/v1/chat"))
	if a != b {
		t.Error("expected one limiter per host")
	}
	if hostOf("not a url") != "not a url" {
		t.Error("endpoints without a host should key on themselves")
	}
}

func TestLimiter_ContextCancelled(t *testing.T) {
	limiter := NewLimiter(0.1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// first call uses the burst token
	if err := limiter.Wait(ctx, "http://example.com"); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "http://example.com"); err == nil {
		t.Error("expected second wait to fail with the deadline")
	}
}

func TestLimiter_NoRate(t *testing.T) {
	limiter := NewLimiter(0, 1)
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 50; i++ {
		if err := limiter.Wait(ctx, "http://example.com"); err != nil {
			t.Fatalf("wait failed: %v", err)
		}
	}
	if time.Since(start) > time.Second {
		t.Error("unlimited limiter should not block")
	}
}
