package breaker

import (
	"fmt"
	"testing"
	"time"

	"wazivo/internal/config"
)

func testConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      2,
		FailureThreshold: 0.5,
	}
}

func TestDisabledBreakerIsNilAndPassesThrough(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	b := New[string]("reader", cfg, nil)
	if b != nil {
		t.Fatal("expected nil breaker when disabled")
	}

	got, err := b.Execute(func() (string, error) { return "ok", nil })
	if err != nil || got != "ok" {
		t.Fatalf("expected passthrough, got %q, %v", got, err)
	}

	if !b.IsHealthy() {
		t.Error("nil breaker should report healthy")
	}
	if enabled, _ := b.GetStats()["enabled"].(bool); enabled {
		t.Error("nil breaker should report disabled")
	}
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	b := New[int]("provider-adzuna", testConfig(), nil)

	for i := 0; i < 2; i++ {
		_, _ = b.Execute(func() (int, error) { return 0, fmt.Errorf("upstream 503") })
	}

	if b.IsHealthy() {
		t.Fatal("breaker should be open after failure ratio is reached")
	}

	_, err := b.Execute(func() (int, error) { return 1, nil })
	if !IsOpenError(err) {
		t.Fatalf("expected open state error, got %v", err)
	}

	stats := b.GetStats()
	if stats["name"] != "provider-adzuna" {
		t.Errorf("unexpected name %v", stats["name"])
	}
	if stats["state"] != "open" {
		t.Errorf("expected open state, got %v", stats["state"])
	}
}

func TestSuccessFilterKeepsBreakerClosed(t *testing.T) {
	callerMistake := fmt.Errorf("login wall")
	b := New[string]("reader", testConfig(), nil, WithSuccessFilter(func(err error) bool {
		return err == nil || err == callerMistake
	}))

	for i := 0; i < 5; i++ {
		_, err := b.Execute(func() (string, error) { return "", callerMistake })
		if err != callerMistake {
			t.Fatalf("expected the original error, got %v", err)
		}
	}

	if !b.IsHealthy() {
		t.Error("filtered errors must not trip the breaker")
	}
}
