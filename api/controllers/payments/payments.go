package payments

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/rikscandle/rikscandle-backend/api/responses"
	"github.com/rikscandle/rikscandle-backend/api/validators"
	internalpayments "github.com/rikscandle/rikscandle-backend/internal/payments"
	"github.com/rikscandle/rikscandle-backend/pkg/db/models"
	pkgerrors "github.com/rikscandle/rikscandle-backend/pkg/errors"
	"github.com/rikscandle/rikscandle-backend/pkg/logger"
)

// Service is the gateway payment surface the HTTP layer depends on.
type Service interface {
	CreateGatewayOrder(ctx context.Context, orderID uuid.UUID) (*internalpayments.CheckoutSession, error)
	VerifyPayment(ctx context.Context, input internalpayments.VerifyPaymentInput) (*models.Order, error)
}

// CreateGatewayOrder opens a Razorpay checkout session for a pending order.
func CreateGatewayOrder(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var body internalpayments.CreateGatewayOrderInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := uuid.Parse(body.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		session, err := svc.CreateGatewayOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

// Verify checks the checkout callback signature and confirms the payment.
func Verify(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var body internalpayments.VerifyPaymentInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.VerifyPayment(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}
