package payments

import (
	"context"
	"testing"
	"time"
)

type fakeIdempotencyStore struct {
	keys map[string]string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{keys: make(map[string]string)}
}

func (f *fakeIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	return f.keys[key], nil
}

func (f *fakeIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, exists := f.keys[key]; exists {
		return false, nil
	}
	f.keys[key] = "1"
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "rc:idempotency:" + scope + ":" + id
}

func (f *fakeIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.keys, key)
	}
	return nil
}

func TestIdempotencyGuardFirstDeliveryWins(t *testing.T) {
	guard, err := NewIdempotencyGuard(newFakeIdempotencyStore(), time.Minute, "razorpay-webhook")
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	ctx := context.Background()

	already, err := guard.CheckAndMark(ctx, "evt_1")
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if already {
		t.Fatal("first delivery should not be marked as processed")
	}

	already, err = guard.CheckAndMark(ctx, "evt_1")
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if !already {
		t.Fatal("redelivery should be reported as already processed")
	}
}

func TestIdempotencyGuardDeleteAllowsRetry(t *testing.T) {
	guard, _ := NewIdempotencyGuard(newFakeIdempotencyStore(), time.Minute, "razorpay-webhook")
	ctx := context.Background()

	if _, err := guard.CheckAndMark(ctx, "evt_2"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := guard.Delete(ctx, "evt_2"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	already, err := guard.CheckAndMark(ctx, "evt_2")
	if err != nil {
		t.Fatalf("recheck: %v", err)
	}
	if already {
		t.Fatal("released event should be processable again")
	}
}

func TestIdempotencyGuardValidation(t *testing.T) {
	if _, err := NewIdempotencyGuard(nil, time.Minute, "scope"); err == nil {
		t.Error("nil store should be rejected")
	}
	if _, err := NewIdempotencyGuard(newFakeIdempotencyStore(), -time.Second, "scope"); err == nil {
		t.Error("negative ttl should be rejected")
	}
	if _, err := NewIdempotencyGuard(newFakeIdempotencyStore(), time.Minute, ""); err == nil {
		t.Error("empty scope should be rejected")
	}

	guard, _ := NewIdempotencyGuard(newFakeIdempotencyStore(), time.Minute, "scope")
	if _, err := guard.CheckAndMark(context.Background(), ""); err == nil {
		t.Error("empty event id should be rejected")
	}
}
