package ratelimit

import (
	"testing"
	"time"
)

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(5, time.Second)

	// Test initial capacity
	for i := 0; i < 5; i++ {
		if !tb.Allow() {
			t.Errorf("Expected token %d to be available", i+1)
		}
	}

	// Test exhaustion
	if tb.Allow() {
		t.Error("Expected no more tokens to be available")
	}

	// Test refill after waiting
	time.Sleep(time.Second + 100*time.Millisecond)
	if !tb.Allow() {
		t.Error("Expected tokens to be refilled after waiting")
	}

	// Test reset
	tb.tokens = 0
	tb.Reset()
	if tb.tokens != tb.capacity {
		t.Error("Expected tokens to be reset to capacity")
	}
}

func TestSlidingWindow(t *testing.T) {
	sw := NewSlidingWindow(3, time.Second)

	// Test initial requests
	for i := 0; i < 3; i++ {
		if !sw.Allow() {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	// Test limit reached
	if sw.Allow() {
		t.Error("Expected request to be denied when limit is reached")
	}

	// Test window sliding
	time.Sleep(time.Second + 100*time.Millisecond)
	if !sw.Allow() {
		t.Error("Expected request to be allowed after window slides")
	}

	// Test reset
	sw.Reset()
	if len(sw.requests) != 0 {
		t.Error("Expected requests to be cleared after reset")
	}
}

func TestFromConfigDisabled(t *testing.T) {
	if limiter := FromConfig(0, 10); limiter != nil {
		t.Error("Expected nil limiter when requests per minute is 0")
	}
	if limiter := FromConfig(-5, 10); limiter != nil {
		t.Error("Expected nil limiter for negative requests per minute")
	}
}

func TestFromConfigBurstSizing(t *testing.T) {
	limiter := FromConfig(60, 10)
	tb, ok := limiter.(*TokenBucket)
	if !ok {
		t.Fatalf("Expected a token bucket, got %T", limiter)
	}

	if tb.capacity != 10 {
		t.Errorf("Expected capacity 10, got %d", tb.capacity)
	}
	// 10 tokens per 10 seconds averages 60/min
	if tb.refillPeriod != 10*time.Second {
		t.Errorf("Expected refill period 10s, got %v", tb.refillPeriod)
	}

	// Burst larger than the rate clamps to the rate
	tb = FromConfig(30, 100).(*TokenBucket)
	if tb.capacity != 30 {
		t.Errorf("Expected capacity clamped to 30, got %d", tb.capacity)
	}
	if tb.refillPeriod != time.Minute {
		t.Errorf("Expected refill period 1m, got %v", tb.refillPeriod)
	}
}

func TestFromConfigAllowsBurst(t *testing.T) {
	limiter := FromConfig(600, 5)

	for i := 0; i < 5; i++ {
		if !limiter.Allow() {
			t.Errorf("Expected burst request %d to be allowed", i+1)
		}
	}
	if limiter.Allow() {
		t.Error("Expected request beyond the burst to be denied")
	}
}
