package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rikscandle/rikscandle-backend/pkg/db/models"
	"github.com/rikscandle/rikscandle-backend/pkg/logger"
)

var (
	errStoreRequired  = errors.New("inventory product store is required")
	errLoggerRequired = errors.New("inventory logger is required")
)

// ProductStore is the catalog write surface settlement needs. Callers hand in
// a store bound to the settlement transaction.
type ProductStore interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)
	ApplySettlement(ctx context.Context, productID uuid.UUID, qty int) error
}

// Settler applies the one-time stock and sold-count adjustment for a
// fulfilled order. It does not own the at-most-once claim; the order store
// guards that before settlement runs.
type Settler struct {
	logger *logger.Logger
}

// NewSettler wires the settlement step.
func NewSettler(logg *logger.Logger) (*Settler, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	return &Settler{logger: logg}, nil
}

// SettleOrder walks the order lines and adjusts the catalog. Lines whose
// product has since been deleted are logged and skipped; one vanished product
// must not block settling the rest of the order.
func (s *Settler) SettleOrder(ctx context.Context, store ProductStore, order *models.Order) error {
	if store == nil {
		return errStoreRequired
	}
	if order == nil || len(order.Items) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := store.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("loading products for settlement: %w", err)
	}

	ctx = s.logger.WithOrderID(ctx, order.ID.String())
	for _, item := range order.Items {
		p, ok := products[item.ProductID]
		if !ok {
			s.logger.Warn(ctx, fmt.Sprintf("settlement skipping deleted product %s", item.ProductID))
			continue
		}
		if item.Qty > p.CountInStock {
			s.logger.Warn(ctx, fmt.Sprintf("settlement clamping oversold product %s (qty %d, stock %d)", p.ID, item.Qty, p.CountInStock))
		}
		if err := store.ApplySettlement(ctx, item.ProductID, item.Qty); err != nil {
			return fmt.Errorf("settling product %s: %w", item.ProductID, err)
		}
	}

	s.logger.Info(ctx, "inventory settled")
	return nil
}
