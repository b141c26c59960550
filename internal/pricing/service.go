package pricing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rikscandle/rikscandle-backend/pkg/config"
	"github.com/rikscandle/rikscandle-backend/pkg/db/models"
	pkgerrors "github.com/rikscandle/rikscandle-backend/pkg/errors"
	"github.com/rikscandle/rikscandle-backend/pkg/types"
)

var errCatalogRequired = errors.New("pricing catalog is required")

// Catalog is the read surface the quote path needs from the product store.
type Catalog interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)
}

// CouponResolver turns a coupon code into a discount for the given subtotal.
// Implementations return zero for unknown codes rather than erroring so a
// stale code never blocks checkout.
type CouponResolver interface {
	Resolve(ctx context.Context, code string, subTotal decimal.Decimal) (decimal.Decimal, error)
}

// RequestItem is one requested line, by product reference.
type RequestItem struct {
	ProductID uuid.UUID
	Qty       int
}

// Quote is the priced order: authoritative totals plus the catalog snapshot
// for each line.
type Quote struct {
	Totals types.Totals
	Items  []models.OrderItem
}

// Service computes order totals server-side. Client-submitted prices are
// never trusted.
type Service struct {
	catalog Catalog
	coupons CouponResolver
	cfg     config.PricingConfig
}

// NewService wires the pricing engine. coupons may be nil when no coupon
// program is active.
func NewService(catalog Catalog, coupons CouponResolver, cfg config.PricingConfig) (*Service, error) {
	if catalog == nil {
		return nil, errCatalogRequired
	}
	return &Service{catalog: catalog, coupons: coupons, cfg: cfg}, nil
}

// QuoteOrder prices the requested lines against the live catalog. Every line
// must reference an existing product with sufficient stock.
func (s *Service) QuoteOrder(ctx context.Context, items []RequestItem, couponCode string) (*Quote, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive").
				WithDetails(map[string]any{"productId": item.ProductID.String()})
		}
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	subTotal := decimal.Zero
	lines := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		p, ok := products[item.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"productId": item.ProductID.String()})
		}
		if item.Qty > p.CountInStock {
			return nil, pkgerrors.New(pkgerrors.CodeOutOfStock, "insufficient stock").
				WithDetails(map[string]any{
					"productId": p.ID.String(),
					"requested": item.Qty,
					"available": p.CountInStock,
				})
		}

		line := models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image,
			UnitPrice: p.Price,
			Qty:       item.Qty,
		}
		subTotal = subTotal.Add(line.LineTotal())
		lines = append(lines, line)
	}

	discount := decimal.Zero
	if s.coupons != nil && couponCode != "" {
		discount, err = s.coupons.Resolve(ctx, couponCode, subTotal)
		if err != nil {
			return nil, err
		}
		if discount.IsNegative() {
			discount = decimal.Zero
		}
		if discount.GreaterThan(subTotal) {
			discount = subTotal
		}
	}

	discounted := subTotal.Sub(discount)

	shipping := s.cfg.ShippingFeeAmount()
	if discounted.GreaterThanOrEqual(s.cfg.FreeShippingThreshold()) {
		shipping = decimal.Zero
	}

	tax := discounted.Mul(s.cfg.TaxPercent()).Div(decimal.NewFromInt(100)).Round(2)

	totals := types.Totals{
		SubTotal:   subTotal.Round(2),
		Discount:   discount.Round(2),
		Shipping:   shipping.Round(2),
		Tax:        tax,
		GrandTotal: discounted.Add(shipping).Add(tax).Round(2),
	}

	return &Quote{Totals: totals, Items: lines}, nil
}
