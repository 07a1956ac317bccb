package latency

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFixedWaits(t *testing.T) {
	start := time.Now()
	if err := Fixed(20 * time.Millisecond).Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("returned after %v, want at least 20ms", elapsed)
	}
}

func TestFixedHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Fixed(time.Hour).Wait(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(0).(None); !ok {
		t.Error("New(0) should return None")
	}
	if _, ok := New(time.Millisecond).(Fixed); !ok {
		t.Error("New(1ms) should return Fixed")
	}
}
