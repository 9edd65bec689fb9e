package authstate

import (
	"testing"
	"time"
)

func TestNextDelayGrowth(t *testing.T) {
	base := time.Second

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 1500 * time.Millisecond},
		{2, 2250 * time.Millisecond},
		{3, 3375 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := nextDelay(base, tc.attempt); got != tc.want {
			t.Fatalf("nextDelay(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestNextDelayCap(t *testing.T) {
	for attempt := 6; attempt < 20; attempt++ {
		if got := nextDelay(time.Second, attempt); got != maxRetryDelay {
			t.Fatalf("nextDelay(%d) = %v, want cap %v", attempt, got, maxRetryDelay)
		}
	}
}

func TestNextDelayDefaultBase(t *testing.T) {
	if got := nextDelay(0, 0); got != defaultRetryBase {
		t.Fatalf("nextDelay with zero base = %v, want %v", got, defaultRetryBase)
	}
}
