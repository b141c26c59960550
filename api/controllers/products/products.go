package products

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rikscandle/rikscandle-backend/api/responses"
	"github.com/rikscandle/rikscandle-backend/api/validators"
	"github.com/rikscandle/rikscandle-backend/pkg/db/models"
	pkgerrors "github.com/rikscandle/rikscandle-backend/pkg/errors"
	"github.com/rikscandle/rikscandle-backend/pkg/logger"
)

// Catalog is the product read surface exposed to the storefront.
type Catalog interface {
	List(ctx context.Context, limit int) ([]models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// List returns the newest catalog entries.
func List(catalog Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalog == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := catalog.List(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products"))
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

// Detail returns a single product.
func Detail(catalog Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalog == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		raw := strings.TrimSpace(chi.URLParam(r, "productId"))
		id, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := catalog.FindByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}
