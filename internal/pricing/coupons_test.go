package pricing

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type stubCouponStore struct {
	values map[string]string
}

func (s *stubCouponStore) Get(ctx context.Context, key string) (string, error) {
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return "", goredis.Nil
}

func TestResolvePercentCoupon(t *testing.T) {
	store := &stubCouponStore{values: map[string]string{
		"coupon:DIWALI10": `{"percent": 10}`,
	}}
	resolver, err := NewRedisCouponResolver(store, nil)
	if err != nil {
		t.Fatalf("NewRedisCouponResolver: %v", err)
	}

	discount, err := resolver.Resolve(context.Background(), "diwali10", decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !discount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected 50 got %s", discount)
	}
}

func TestResolveFlatBeatsPercentWhenCheaper(t *testing.T) {
	store := &stubCouponStore{values: map[string]string{
		"coupon:FLAT30": `{"percent": 10, "flat": 30}`,
	}}
	resolver, _ := NewRedisCouponResolver(store, nil)

	discount, err := resolver.Resolve(context.Background(), "FLAT30", decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !discount.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected 30 got %s", discount)
	}
}

func TestResolveRespectsMinimumSubtotal(t *testing.T) {
	store := &stubCouponStore{values: map[string]string{
		"coupon:BIG100": `{"flat": 100, "minSubTotal": 1000}`,
	}}
	resolver, _ := NewRedisCouponResolver(store, nil)

	discount, err := resolver.Resolve(context.Background(), "BIG100", decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !discount.IsZero() {
		t.Fatalf("expected zero discount below minimum, got %s", discount)
	}
}

func TestResolveUnknownCodeIsZero(t *testing.T) {
	resolver, _ := NewRedisCouponResolver(&stubCouponStore{}, nil)

	discount, err := resolver.Resolve(context.Background(), "NOPE", decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !discount.IsZero() {
		t.Fatalf("expected zero discount, got %s", discount)
	}
}

func TestResolveEmptyCodeIsZero(t *testing.T) {
	resolver, _ := NewRedisCouponResolver(&stubCouponStore{}, nil)

	discount, err := resolver.Resolve(context.Background(), "  ", decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !discount.IsZero() {
		t.Fatalf("expected zero discount, got %s", discount)
	}
}

func TestResolveMalformedRuleIsZero(t *testing.T) {
	store := &stubCouponStore{values: map[string]string{
		"coupon:BROKEN": `{not json`,
	}}
	resolver, _ := NewRedisCouponResolver(store, nil)

	discount, err := resolver.Resolve(context.Background(), "BROKEN", decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !discount.IsZero() {
		t.Fatalf("expected zero discount, got %s", discount)
	}
}
