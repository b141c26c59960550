package pricing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rikscandle/rikscandle-backend/pkg/config"
	"github.com/rikscandle/rikscandle-backend/pkg/db/models"
	pkgerrors "github.com/rikscandle/rikscandle-backend/pkg/errors"
)

type stubCatalog struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubCatalog) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	out := make(map[uuid.UUID]*models.Product)
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fixedCoupon struct {
	amount decimal.Decimal
}

func (f *fixedCoupon) Resolve(_ context.Context, _ string, _ decimal.Decimal) (decimal.Decimal, error) {
	return f.amount, nil
}

func defaultPricingConfig() config.PricingConfig {
	return config.PricingConfig{ShippingFee: 49, FreeShippingAbove: 999, GSTPercent: 0}
}

func newProduct(price float64, stock int) *models.Product {
	return &models.Product{
		ID:           uuid.New(),
		Name:         "Lavender Jar Candle",
		Price:        decimal.NewFromFloat(price),
		MRP:          decimal.NewFromFloat(price),
		CountInStock: stock,
	}
}

func TestQuoteOrderBelowFreeShipping(t *testing.T) {
	p := newProduct(299, 10)
	svc, err := NewService(&stubCatalog{products: map[uuid.UUID]*models.Product{p.ID: p}}, nil, defaultPricingConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	quote, err := svc.QuoteOrder(context.Background(), []RequestItem{{ProductID: p.ID, Qty: 2}}, "")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}

	if got := quote.Totals.SubTotal.StringFixed(2); got != "598.00" {
		t.Errorf("subtotal = %s, want 598.00", got)
	}
	if got := quote.Totals.Shipping.StringFixed(2); got != "49.00" {
		t.Errorf("shipping = %s, want 49.00", got)
	}
	if got := quote.Totals.GrandTotal.StringFixed(2); got != "647.00" {
		t.Errorf("grand total = %s, want 647.00", got)
	}
	if len(quote.Items) != 1 || quote.Items[0].Qty != 2 {
		t.Fatalf("unexpected items: %+v", quote.Items)
	}
}

func TestQuoteOrderFreeShippingAtThreshold(t *testing.T) {
	p := newProduct(999, 5)
	svc, _ := NewService(&stubCatalog{products: map[uuid.UUID]*models.Product{p.ID: p}}, nil, defaultPricingConfig())

	quote, err := svc.QuoteOrder(context.Background(), []RequestItem{{ProductID: p.ID, Qty: 1}}, "")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}

	if !quote.Totals.Shipping.IsZero() {
		t.Errorf("shipping = %s, want 0 at threshold", quote.Totals.Shipping)
	}
	if got := quote.Totals.GrandTotal.StringFixed(2); got != "999.00" {
		t.Errorf("grand total = %s, want 999.00", got)
	}
}

func TestQuoteOrderDiscountCanUnlockShippingFee(t *testing.T) {
	// Free shipping is judged on the discounted subtotal.
	p := newProduct(1000, 5)
	coupon := &fixedCoupon{amount: decimal.NewFromInt(100)}
	svc, _ := NewService(&stubCatalog{products: map[uuid.UUID]*models.Product{p.ID: p}}, coupon, defaultPricingConfig())

	quote, err := svc.QuoteOrder(context.Background(), []RequestItem{{ProductID: p.ID, Qty: 1}}, "WELCOME100")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}

	if got := quote.Totals.Discount.StringFixed(2); got != "100.00" {
		t.Errorf("discount = %s, want 100.00", got)
	}
	if got := quote.Totals.Shipping.StringFixed(2); got != "49.00" {
		t.Errorf("shipping = %s, want 49.00 after discount drops below threshold", got)
	}
	if got := quote.Totals.GrandTotal.StringFixed(2); got != "949.00" {
		t.Errorf("grand total = %s, want 949.00", got)
	}
}

func TestQuoteOrderDiscountClampedToSubtotal(t *testing.T) {
	p := newProduct(200, 5)
	coupon := &fixedCoupon{amount: decimal.NewFromInt(500)}
	svc, _ := NewService(&stubCatalog{products: map[uuid.UUID]*models.Product{p.ID: p}}, coupon, defaultPricingConfig())

	quote, err := svc.QuoteOrder(context.Background(), []RequestItem{{ProductID: p.ID, Qty: 1}}, "BIGCODE")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}

	if !quote.Totals.Discount.Equal(quote.Totals.SubTotal) {
		t.Errorf("discount %s should clamp to subtotal %s", quote.Totals.Discount, quote.Totals.SubTotal)
	}
	if got := quote.Totals.GrandTotal.StringFixed(2); got != "49.00" {
		t.Errorf("grand total = %s, want 49.00 (shipping only)", got)
	}
}

func TestQuoteOrderGSTApplied(t *testing.T) {
	p := newProduct(100, 10)
	cfg := config.PricingConfig{ShippingFee: 49, FreeShippingAbove: 999, GSTPercent: 18}
	svc, _ := NewService(&stubCatalog{products: map[uuid.UUID]*models.Product{p.ID: p}}, nil, cfg)

	quote, err := svc.QuoteOrder(context.Background(), []RequestItem{{ProductID: p.ID, Qty: 1}}, "")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}

	if got := quote.Totals.Tax.StringFixed(2); got != "18.00" {
		t.Errorf("tax = %s, want 18.00", got)
	}
	if got := quote.Totals.GrandTotal.StringFixed(2); got != "167.00" {
		t.Errorf("grand total = %s, want 167.00", got)
	}
}

func TestQuoteOrderUnknownProduct(t *testing.T) {
	svc, _ := NewService(&stubCatalog{products: map[uuid.UUID]*models.Product{}}, nil, defaultPricingConfig())

	_, err := svc.QuoteOrder(context.Background(), []RequestItem{{ProductID: uuid.New(), Qty: 1}}, "")
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestQuoteOrderInsufficientStock(t *testing.T) {
	p := newProduct(299, 1)
	svc, _ := NewService(&stubCatalog{products: map[uuid.UUID]*models.Product{p.ID: p}}, nil, defaultPricingConfig())

	_, err := svc.QuoteOrder(context.Background(), []RequestItem{{ProductID: p.ID, Qty: 3}}, "")
	if !pkgerrors.IsCode(err, pkgerrors.CodeOutOfStock) {
		t.Fatalf("expected out-of-stock error, got %v", err)
	}
}

func TestQuoteOrderRejectsNonPositiveQty(t *testing.T) {
	p := newProduct(299, 10)
	svc, _ := NewService(&stubCatalog{products: map[uuid.UUID]*models.Product{p.ID: p}}, nil, defaultPricingConfig())

	_, err := svc.QuoteOrder(context.Background(), []RequestItem{{ProductID: p.ID, Qty: 0}}, "")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQuoteOrderRejectsEmptyOrder(t *testing.T) {
	svc, _ := NewService(&stubCatalog{products: map[uuid.UUID]*models.Product{}}, nil, defaultPricingConfig())

	_, err := svc.QuoteOrder(context.Background(), nil, "")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGrandTotalPaiseConversion(t *testing.T) {
	p := newProduct(299, 10)
	svc, _ := NewService(&stubCatalog{products: map[uuid.UUID]*models.Product{p.ID: p}}, nil, defaultPricingConfig())

	quote, err := svc.QuoteOrder(context.Background(), []RequestItem{{ProductID: p.ID, Qty: 2}}, "")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}

	if got := quote.Totals.GrandTotalPaise(); got != 64700 {
		t.Errorf("paise = %d, want 64700", got)
	}
}
