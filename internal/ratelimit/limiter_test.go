package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestDomainLimiter_AllowPerHost(t *testing.T) {
	dl := NewDomainLimiter(1, 1)

	if !dl.Allow("https://search.test/v1?q=a") {
		t.Fatal("Expected first call to be allowed")
	}
	if dl.Allow("https://search.test/v1?q=b") {
		t.Error("Expected second immediate call to the same host to be limited")
	}
	if !dl.Allow("https://other.test/v1") {
		t.Error("Expected a different host to have its own bucket")
	}
}

func TestDomainLimiter_WaitHonoursContext(t *testing.T) {
	dl := NewDomainLimiter(0.1, 1)
	dl.Allow("https://search.test/")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := dl.Wait(ctx, "https://search.test/"); err == nil {
		t.Error("Expected Wait to fail when the deadline is shorter than the refill")
	}
}

func TestDomainLimiter_InvalidURL(t *testing.T) {
	dl := NewDomainLimiter(1, 1)
	if err := dl.Wait(context.Background(), "://bad"); err != nil {
		t.Errorf("Expected invalid URL to pass through, got %v", err)
	}
	if !dl.Allow("://bad") {
		t.Error("Expected invalid URL to be allowed")
	}
}
