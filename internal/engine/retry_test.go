package engine

import (
	"testing"
	"time"
)

func TestRetryPolicySchedule(t *testing.T) {
	policy := defaultRetryPolicy()

	want := []time.Duration{
		4 * time.Second,  // 3 + 1
		5 * time.Second,  // 3 + 2
		7 * time.Second,  // 3 + 4
		11 * time.Second, // 3 + 8
		19 * time.Second, // 3 + 16
		35 * time.Second, // 3 + 32
		35 * time.Second, // capped
	}
	for i, expected := range want {
		if got := policy.delay(i + 1); got != expected {
			t.Errorf("delay(%d) = %s, want %s", i+1, got, expected)
		}
	}
}

func TestRetryPolicyAttemptBudget(t *testing.T) {
	if got := defaultRetryPolicy().maxAttempts; got != 5 {
		t.Fatalf("maxAttempts = %d, want 5", got)
	}
}
