package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rikscandle/rikscandle-backend/pkg/logger"
)

const couponKeyPrefix = "coupon:"

// couponRule is the stored shape of a coupon. Percent and Flat are rupees /
// whole percents; when both are set the cheaper discount wins.
type couponRule struct {
	Percent float64 `json:"percent"`
	Flat    float64 `json:"flat"`
	MinSub  float64 `json:"minSubTotal"`
}

type couponStore interface {
	Get(ctx context.Context, key string) (string, error)
}

// RedisCouponResolver resolves coupon codes against rules seeded in redis.
// Unknown or malformed codes resolve to a zero discount so a stale code
// never blocks checkout.
type RedisCouponResolver struct {
	store  couponStore
	logger *logger.Logger
}

// NewRedisCouponResolver wires the resolver. The store is required.
func NewRedisCouponResolver(store couponStore, logg *logger.Logger) (*RedisCouponResolver, error) {
	if store == nil {
		return nil, errors.New("coupon store is required")
	}
	return &RedisCouponResolver{store: store, logger: logg}, nil
}

func couponKey(code string) string {
	return couponKeyPrefix + strings.ToUpper(strings.TrimSpace(code))
}

// Resolve looks up the rule for code and returns the discount it grants on
// the given subtotal.
func (r *RedisCouponResolver) Resolve(ctx context.Context, code string, subTotal decimal.Decimal) (decimal.Decimal, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return decimal.Zero, nil
	}

	raw, err := r.store.Get(ctx, couponKey(code))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("coupon lookup: %w", err)
	}

	var rule couponRule
	if err := json.Unmarshal([]byte(raw), &rule); err != nil {
		if r.logger != nil {
			ctx = r.logger.WithField(ctx, "coupon", code)
			r.logger.Warn(ctx, "malformed coupon rule, ignoring")
		}
		return decimal.Zero, nil
	}

	if rule.MinSub > 0 && subTotal.LessThan(decimal.NewFromFloat(rule.MinSub)) {
		return decimal.Zero, nil
	}

	discount := decimal.Zero
	if rule.Percent > 0 {
		discount = subTotal.Mul(decimal.NewFromFloat(rule.Percent)).Div(decimal.NewFromInt(100))
	}
	if rule.Flat > 0 {
		flat := decimal.NewFromFloat(rule.Flat)
		if discount.IsZero() || flat.LessThan(discount) {
			discount = flat
		}
	}

	return discount.Round(2), nil
}
