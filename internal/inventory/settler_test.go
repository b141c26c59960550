package inventory

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rikscandle/rikscandle-backend/pkg/db/models"
	"github.com/rikscandle/rikscandle-backend/pkg/logger"
)

type adjustment struct {
	productID uuid.UUID
	qty       int
}

type stubProductStore struct {
	products    map[uuid.UUID]*models.Product
	adjustments []adjustment
	failOn      uuid.UUID
}

func (s *stubProductStore) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	out := make(map[uuid.UUID]*models.Product)
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *stubProductStore) ApplySettlement(_ context.Context, productID uuid.UUID, qty int) error {
	if productID == s.failOn {
		return errors.New("write failed")
	}
	s.adjustments = append(s.adjustments, adjustment{productID: productID, qty: qty})
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
}

func testOrder(items ...models.OrderItem) *models.Order {
	return &models.Order{ID: uuid.New(), Items: items}
}

func TestSettleOrderAdjustsEveryLine(t *testing.T) {
	p1 := &models.Product{ID: uuid.New(), CountInStock: 10}
	p2 := &models.Product{ID: uuid.New(), CountInStock: 10}
	store := &stubProductStore{products: map[uuid.UUID]*models.Product{p1.ID: p1, p2.ID: p2}}

	settler, err := NewSettler(testLogger(t))
	if err != nil {
		t.Fatalf("new settler: %v", err)
	}

	order := testOrder(
		models.OrderItem{ProductID: p1.ID, Qty: 2},
		models.OrderItem{ProductID: p2.ID, Qty: 5},
	)
	if err := settler.SettleOrder(context.Background(), store, order); err != nil {
		t.Fatalf("settle: %v", err)
	}

	if len(store.adjustments) != 2 {
		t.Fatalf("adjustments = %d, want 2", len(store.adjustments))
	}
	if store.adjustments[0].qty != 2 || store.adjustments[1].qty != 5 {
		t.Errorf("unexpected quantities: %+v", store.adjustments)
	}
}

func TestSettleOrderSkipsDeletedProduct(t *testing.T) {
	p1 := &models.Product{ID: uuid.New(), CountInStock: 10}
	store := &stubProductStore{products: map[uuid.UUID]*models.Product{p1.ID: p1}}

	settler, _ := NewSettler(testLogger(t))
	order := testOrder(
		models.OrderItem{ProductID: uuid.New(), Qty: 1}, // deleted
		models.OrderItem{ProductID: p1.ID, Qty: 3},
	)
	if err := settler.SettleOrder(context.Background(), store, order); err != nil {
		t.Fatalf("settle: %v", err)
	}

	if len(store.adjustments) != 1 {
		t.Fatalf("adjustments = %d, want 1 (deleted product skipped)", len(store.adjustments))
	}
	if store.adjustments[0].productID != p1.ID {
		t.Errorf("adjusted wrong product: %+v", store.adjustments[0])
	}
}

func TestSettleOrderPropagatesWriteFailure(t *testing.T) {
	p1 := &models.Product{ID: uuid.New(), CountInStock: 10}
	store := &stubProductStore{
		products: map[uuid.UUID]*models.Product{p1.ID: p1},
		failOn:   p1.ID,
	}

	settler, _ := NewSettler(testLogger(t))
	order := testOrder(models.OrderItem{ProductID: p1.ID, Qty: 1})

	if err := settler.SettleOrder(context.Background(), store, order); err == nil {
		t.Fatal("expected settlement failure to propagate")
	}
}

func TestSettleOrderEmptyOrderIsNoop(t *testing.T) {
	store := &stubProductStore{products: map[uuid.UUID]*models.Product{}}
	settler, _ := NewSettler(testLogger(t))

	if err := settler.SettleOrder(context.Background(), store, testOrder()); err != nil {
		t.Fatalf("settle empty: %v", err)
	}
	if len(store.adjustments) != 0 {
		t.Errorf("expected no adjustments, got %+v", store.adjustments)
	}
}
