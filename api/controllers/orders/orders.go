package orders

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rikscandle/rikscandle-backend/api/middleware"
	"github.com/rikscandle/rikscandle-backend/api/responses"
	"github.com/rikscandle/rikscandle-backend/api/validators"
	internalorders "github.com/rikscandle/rikscandle-backend/internal/orders"
	"github.com/rikscandle/rikscandle-backend/pkg/auth"
	"github.com/rikscandle/rikscandle-backend/pkg/db/models"
	"github.com/rikscandle/rikscandle-backend/pkg/enums"
	pkgerrors "github.com/rikscandle/rikscandle-backend/pkg/errors"
	"github.com/rikscandle/rikscandle-backend/pkg/logger"
	"github.com/rikscandle/rikscandle-backend/pkg/pagination"
)

// Service is the order lifecycle surface the HTTP layer depends on.
type Service interface {
	Create(ctx context.Context, userID *uuid.UUID, input internalorders.CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, claims *auth.AccessTokenClaims, id uuid.UUID) (*models.Order, error)
	ListMine(ctx context.Context, userID uuid.UUID, email string, params pagination.Params) (*internalorders.OrderList, error)
	ListAll(ctx context.Context, params pagination.Params, filters internalorders.ListFilters) (*internalorders.OrderList, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, input internalorders.UpdateStatusInput) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvoiceRenderer produces the PDF invoice for an order.
type InvoiceRenderer interface {
	Render(ctx context.Context, order *models.Order) ([]byte, error)
}

// Create places a new order for either a guest or a logged-in user.
func Create(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var body internalorders.CreateOrderInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var userID *uuid.UUID
		if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
			userID = &claims.UserID
		}

		order, err := svc.Create(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// Detail returns the full order after the service checks ownership.
func Detail(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		claims := middleware.ClaimsFromContext(r.Context())
		order, err := svc.Get(r.Context(), claims, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// ListMine pages through the authenticated user's own orders. Guest orders
// placed with the caller's email get attached to the account on the way.
func ListMine(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListMine(r.Context(), claims.UserID, claims.Email, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// ListAll pages through every order with optional admin filters.
func ListAll(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := buildListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListAll(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// UpdateStatus applies an admin status transition.
func UpdateStatus(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body internalorders.UpdateStatusInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orderID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// Remove deletes an order. Admin only, wired behind RequireAdmin.
func Remove(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// Invoice streams the order's PDF invoice to owners and admins.
func Invoice(svc Service, renderer InvoiceRenderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || renderer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice renderer unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		claims := middleware.ClaimsFromContext(r.Context())
		order, err := svc.Get(r.Context(), claims, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pdf, err := renderer.Render(r.Context(), order)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", invoiceFilename(order)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(pdf)
	}
}

func invoiceFilename(order *models.Order) string {
	return fmt.Sprintf("invoice-%s.pdf", order.ID)
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return id, nil
}

func parsePageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func buildListFilters(r *http.Request) (internalorders.ListFilters, error) {
	var filters internalorders.ListFilters
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, ok := enums.ParseOrderStatus(raw)
		if !ok {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(q.Get("paymentMethod")); raw != "" {
		method := enums.PaymentMethod(strings.ToUpper(raw))
		if !method.IsValid() {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method filter")
		}
		filters.PaymentMethod = &method
	}
	if raw := strings.TrimSpace(q.Get("dateFrom")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dateFrom")
		}
		filters.DateFrom = &from
	}
	if raw := strings.TrimSpace(q.Get("dateTo")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dateTo")
		}
		filters.DateTo = &to
	}
	filters.Email = validators.SanitizeString(q.Get("email"), 254)

	return filters, nil
}
