package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowConsumesBurst(t *testing.T) {
	dl := NewDomainLimiter(1, 2)

	url := "https://example.test/page"
	if !dl.Allow(url) || !dl.Allow(url) {
		t.Fatal("burst of 2 should allow two immediate navigations")
	}
	if dl.Allow(url) {
		t.Error("third immediate navigation should be throttled")
	}
}

func TestHostsHaveIndependentBuckets(t *testing.T) {
	dl := NewDomainLimiter(1, 1)

	if !dl.Allow("https://a.test/") {
		t.Fatal("first navigation to a.test should pass")
	}
	if dl.Allow("https://a.test/") {
		t.Error("a.test bucket should be drained")
	}
	if !dl.Allow("https://b.test/") {
		t.Error("b.test must not share a.test's bucket")
	}
}

func TestWaitHonorsCancellation(t *testing.T) {
	dl := NewDomainLimiter(0.001, 1)
	url := "https://example.test/"
	_ = dl.Allow(url) // drain the bucket

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := dl.Wait(ctx, url); err == nil {
		t.Error("Wait on a drained bucket should fail when the context expires")
	}
}

func TestInvalidURLIsNotThrottled(t *testing.T) {
	dl := NewDomainLimiter(1, 1)
	if !dl.Allow("://bad") {
		t.Error("unparseable URL should pass through")
	}
	if err := dl.Wait(context.Background(), "://bad"); err != nil {
		t.Errorf("Wait on unparseable URL failed: %v", err)
	}
}

func TestZeroConfigFallsBackToDefaults(t *testing.T) {
	dl := NewDomainLimiter(0, 0)
	if !dl.Allow("https://example.test/") {
		t.Error("default limiter should allow the first navigation")
	}
}
