package sync

import (
	"testing"
	"time"
)

func TestBackoffLinearDelays(t *testing.T) {
	b := DefaultBackoff()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 6 * time.Second},
		{0, 2 * time.Second}, // clamped to the first attempt
	}
	for _, tt := range tests {
		if got := b.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoffMultiplier(t *testing.T) {
	b := Backoff{MaxAttempts: 3, BaseDelay: time.Second, Multiplier: 2}

	if got := b.Delay(1); got != time.Second {
		t.Errorf("Delay(1) = %v, want 1s", got)
	}
	if got := b.Delay(2); got != 4*time.Second { // 1s * 2 attempts * 2^1
		t.Errorf("Delay(2) = %v, want 4s", got)
	}
	if got := b.Delay(3); got != 12*time.Second { // 1s * 3 attempts * 2^2
		t.Errorf("Delay(3) = %v, want 12s", got)
	}
}
