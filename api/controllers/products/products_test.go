package products

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rikscandle/rikscandle-backend/pkg/db/models"
	pkgerrors "github.com/rikscandle/rikscandle-backend/pkg/errors"
)

type stubCatalog struct {
	lastLimit int
	rows      []models.Product
	product   *models.Product
	err       error
}

func (c *stubCatalog) List(ctx context.Context, limit int) ([]models.Product, error) {
	c.lastLimit = limit
	return c.rows, c.err
}

func (c *stubCatalog) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.product, nil
}

func TestListReturnsCatalogRows(t *testing.T) {
	catalog := &stubCatalog{rows: []models.Product{{ID: uuid.New(), Name: "Vanilla Jar"}}}

	req := httptest.NewRequest(http.MethodGet, "/api/products?limit=10", nil)
	rec := httptest.NewRecorder()

	List(catalog, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if catalog.lastLimit != 10 {
		t.Fatalf("expected limit 10, got %d", catalog.lastLimit)
	}
	var envelope struct {
		Data []models.Product `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].Name != "Vanilla Jar" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestListRejectsBadLimit(t *testing.T) {
	catalog := &stubCatalog{}

	req := httptest.NewRequest(http.MethodGet, "/api/products?limit=banana", nil)
	rec := httptest.NewRecorder()

	List(catalog, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestDetailRejectsBadID(t *testing.T) {
	catalog := &stubCatalog{}

	req := httptest.NewRequest(http.MethodGet, "/api/products/nope", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productId", "nope")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	Detail(catalog, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestDetailMapsNotFound(t *testing.T) {
	catalog := &stubCatalog{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+id.String(), nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productId", id.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	Detail(catalog, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
