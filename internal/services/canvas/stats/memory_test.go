package stats

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryRecorderTallies(t *testing.T) {
	t.Parallel()

	recorder := NewMemoryRecorder()
	ctx := context.Background()

	_ = recorder.Record(ctx, Outcome{UserID: "u1", Accepted: true})
	_ = recorder.Record(ctx, Outcome{UserID: "u1", Accepted: false, Reason: "COOLDOWN_ACTIVE"})
	_ = recorder.Record(ctx, Outcome{UserID: "u2", Accepted: false, Reason: "COOLDOWN_ACTIVE"})
	_ = recorder.Record(ctx, Outcome{UserID: "u2", Accepted: false, Reason: "INVALID_COLOR"})

	totals := recorder.Totals()
	if totals.Accepted != 1 {
		t.Fatalf("accepted = %d, want 1", totals.Accepted)
	}
	if totals.Denied != 3 {
		t.Fatalf("denied = %d, want 3", totals.Denied)
	}

	byReason := recorder.DeniedByReason()
	if byReason["COOLDOWN_ACTIVE"] != 2 {
		t.Fatalf("cooldown denials = %d, want 2", byReason["COOLDOWN_ACTIVE"])
	}
	if byReason["INVALID_COLOR"] != 1 {
		t.Fatalf("invalid color denials = %d, want 1", byReason["INVALID_COLOR"])
	}
}

func TestMemoryRecorderConcurrent(t *testing.T) {
	t.Parallel()

	recorder := NewMemoryRecorder()
	ctx := context.Background()

	const writers = 8
	const perWriter = 100
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				_ = recorder.Record(ctx, Outcome{Accepted: j%2 == 0})
			}
		}()
	}
	wg.Wait()

	totals := recorder.Totals()
	if totals.Accepted+totals.Denied != writers*perWriter {
		t.Fatalf("total outcomes = %d, want %d", totals.Accepted+totals.Denied, writers*perWriter)
	}
}
