package stats

import (
	"context"
	"testing"
	"time"
)

func TestRedisRecorderNilClientIsNoop(t *testing.T) {
	t.Parallel()

	recorder := NewRedisRecorder(nil)
	err := recorder.Record(context.Background(), Outcome{UserID: "u1", Accepted: true})
	if err != nil {
		t.Fatalf("Record with nil client = %v, want nil", err)
	}

	var nilRecorder *RedisRecorder
	if err := nilRecorder.Record(context.Background(), Outcome{}); err != nil {
		t.Fatalf("Record on nil recorder = %v, want nil", err)
	}
}

func TestRedisRecorderOptions(t *testing.T) {
	t.Parallel()

	recorder := NewRedisRecorder(nil,
		WithPrefix(":custom:stats:"),
		WithBucketTTL(time.Hour),
	)
	if recorder.prefix != "custom:stats" {
		t.Fatalf("prefix = %q, want custom:stats", recorder.prefix)
	}
	if recorder.ttl != time.Hour {
		t.Fatalf("ttl = %v, want %v", recorder.ttl, time.Hour)
	}
}
