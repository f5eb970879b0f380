package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiterAllowWithinBurst(t *testing.T) {
	l := NewLimiter(1, 3)

	endpoint := "http://localhost:8585"
	for i := 0; i < 3; i++ {
		if !l.Allow(endpoint) {
			t.Fatalf("request %d denied inside burst", i)
		}
	}
	if l.Allow(endpoint) {
		t.Error("request allowed after burst exhausted")
	}
}

func TestLimiterPerHost(t *testing.T) {
	l := NewLimiter(1, 1)

	if !l.Allow("http://calc-a.lab:8585") {
		t.Fatal("first host denied")
	}
	// A different host has its own bucket.
	if !l.Allow("http://calc-b.lab:8585") {
		t.Error("second host shares the first host's bucket")
	}
	if l.Allow("http://calc-a.lab:8585/v1/equilibrium") {
		t.Error("same host with different path got a fresh bucket")
	}
}

func TestLimiterSetHostRate(t *testing.T) {
	l := NewLimiter(1, 1)
	l.SetHostRate("calc.lab:8585", 100, 10)

	endpoint := "http://calc.lab:8585"
	for i := 0; i < 10; i++ {
		if !l.Allow(endpoint) {
			t.Fatalf("request %d denied after burst override", i)
		}
	}
}

func TestLimiterWait(t *testing.T) {
	l := NewLimiter(1000, 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// Two waits: the second must block briefly but succeed at 1000 rps.
	for i := 0; i < 2; i++ {
		if err := l.Wait(ctx, "http://localhost:8585"); err != nil {
			t.Fatalf("Wait %d: %v", i, err)
		}
	}
}

func TestLimiterWaitCancelled(t *testing.T) {
	l := NewLimiter(0.001, 1)
	endpoint := "http://localhost:8585"

	// Drain the burst, then a cancelled context must fail fast.
	_ = l.Allow(endpoint)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, endpoint); err == nil {
		t.Error("expected error from cancelled wait")
	}
}

func TestExtractHost(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
	}{
		{"http://localhost:8585", "localhost:8585"},
		{"http://calc.lab:8585/v1/equilibrium", "calc.lab:8585"},
		{"bare-host", "bare-host"},
	}
	for _, tt := range tests {
		got, err := extractHost(tt.endpoint)
		if err != nil {
			t.Errorf("extractHost(%q): %v", tt.endpoint, err)
			continue
		}
		if got != tt.want {
			t.Errorf("extractHost(%q) = %q, want %q", tt.endpoint, got, tt.want)
		}
	}
}
