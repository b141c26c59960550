package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rikscandle/rikscandle-backend/pkg/db/models"
	"github.com/rikscandle/rikscandle-backend/pkg/enums"
	pkgerrors "github.com/rikscandle/rikscandle-backend/pkg/errors"
	"github.com/rikscandle/rikscandle-backend/pkg/logger"
	"github.com/rikscandle/rikscandle-backend/pkg/razorpay"
)

const (
	eventPaymentCaptured = "payment.captured"
	eventPaymentFailed   = "payment.failed"
)

var (
	errGatewayRequired   = errors.New("payment gateway is required")
	errOrderStoreReq     = errors.New("order store is required")
	errLifecycleRequired = errors.New("order lifecycle is required")
	errLoggerRequired    = errors.New("payments logger is required")
)

// Gateway is the remote payment surface.
type Gateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, receipt string, notes map[string]string) (*razorpay.GatewayOrder, error)
	VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) bool
	VerifyWebhookSignature(payload []byte, signature string) bool
	KeyID() string
	Currency() string
}

// OrderStore is the persistence surface the payment flow needs.
type OrderStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByRazorpayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

// Lifecycle hands confirmed payments back to the order pipeline.
type Lifecycle interface {
	Settle(ctx context.Context, id uuid.UUID) error
	SendConfirmationEmail(ctx context.Context, order *models.Order)
}

// Service drives the gateway payment flow: session creation, checkout
// verification and webhook confirmation.
type Service struct {
	gateway   Gateway
	orders    OrderStore
	lifecycle Lifecycle
	logger    *logger.Logger
}

// NewService wires the payment service.
func NewService(gateway Gateway, orders OrderStore, lifecycle Lifecycle, logg *logger.Logger) (*Service, error) {
	switch {
	case gateway == nil:
		return nil, errGatewayRequired
	case orders == nil:
		return nil, errOrderStoreReq
	case lifecycle == nil:
		return nil, errLifecycleRequired
	case logg == nil:
		return nil, errLoggerRequired
	}
	return &Service{
		gateway:   gateway,
		orders:    orders,
		lifecycle: lifecycle,
		logger:    logg,
	}, nil
}

// CreateGatewayOrder opens a checkout session for a pending gateway order.
// Calling it again for the same order returns the existing session instead of
// opening a second one.
func (s *Service) CreateGatewayOrder(ctx context.Context, orderID uuid.UUID) (*CheckoutSession, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.PaymentMethod != enums.PaymentMethodRazorpay {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not a gateway order")
	}
	if order.IsPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order lifecycle has ended").
			WithDetails(map[string]any{"status": order.Status})
	}

	amount := order.Totals.GrandTotalPaise()

	if order.RazorpayOrderID != nil && *order.RazorpayOrderID != "" {
		return s.session(order, *order.RazorpayOrderID, amount), nil
	}

	receipt := fmt.Sprintf("rcpt_%s", order.ID)
	gwOrder, err := s.gateway.CreateOrder(ctx, amount, receipt, map[string]string{
		"orderId": order.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.orders.UpdateFields(ctx, order.ID, map[string]any{
		"razorpay_order_id": gwOrder.ID,
	}); err != nil {
		return nil, err
	}

	ctx = s.logger.WithOrderID(ctx, order.ID.String())
	s.logger.Info(ctx, fmt.Sprintf("gateway order %s opened for %d paise", gwOrder.ID, amount))

	return s.session(order, gwOrder.ID, amount), nil
}

func (s *Service) session(order *models.Order, gatewayOrderID string, amount int64) *CheckoutSession {
	return &CheckoutSession{
		OrderID:        order.ID,
		GatewayOrderID: gatewayOrderID,
		AmountPaise:    amount,
		Currency:       s.gateway.Currency(),
		KeyID:          s.gateway.KeyID(),
	}
}

// VerifyPayment validates the checkout confirmation triple. A bad signature
// leaves the order completely untouched; a good one confirms payment and
// triggers settlement.
func (s *Service) VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*models.Order, error) {
	if !s.gateway.VerifyPaymentSignature(input.GatewayOrderID, input.PaymentID, input.Signature) {
		s.logger.Warn(ctx, fmt.Sprintf("rejected payment verification for gateway order %s", input.GatewayOrderID))
		return nil, pkgerrors.New(pkgerrors.CodeInvalidSignature, "payment signature verification failed")
	}

	order, err := s.orders.FindByRazorpayOrderID(ctx, input.GatewayOrderID)
	if err != nil {
		return nil, err
	}

	return s.confirmPayment(ctx, order, input.PaymentID, &input.Signature)
}

// HandleWebhook processes an asynchronous gateway event. The signature is
// checked against the raw body bytes before any parsing, and the event id is
// deduplicated by the guard at the transport layer.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if !s.gateway.VerifyWebhookSignature(payload, signature) {
		s.logger.Warn(ctx, "rejected webhook with bad signature")
		return pkgerrors.New(pkgerrors.CodeInvalidSignature, "webhook signature verification failed")
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse webhook payload")
	}

	entity := event.Payload.Payment.Entity
	switch event.Event {
	case eventPaymentCaptured:
		if entity.OrderID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "webhook payment has no order reference")
		}
		order, err := s.orders.FindByRazorpayOrderID(ctx, entity.OrderID)
		if err != nil {
			return err
		}
		_, err = s.confirmPayment(ctx, order, entity.ID, nil)
		return err
	case eventPaymentFailed:
		s.logger.Warn(ctx, fmt.Sprintf("payment failed for gateway order %s", entity.OrderID))
		return nil
	default:
		// Unhandled event types are acknowledged so the gateway stops
		// retrying them.
		s.logger.Info(ctx, fmt.Sprintf("ignoring webhook event %s", event.Event))
		return nil
	}
}

// confirmPayment marks the order paid, settles inventory and notifies the
// customer. Replays on an already-paid order are no-ops.
func (s *Service) confirmPayment(ctx context.Context, order *models.Order, paymentID string, signature *string) (*models.Order, error) {
	ctx = s.logger.WithOrderID(ctx, order.ID.String())

	if order.IsPaid {
		s.logger.Info(ctx, "payment already confirmed, skipping")
		return order, nil
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"is_paid":             true,
		"paid_at":             now,
		"razorpay_payment_id": paymentID,
	}
	if signature != nil {
		updates["razorpay_signature"] = *signature
	}
	if !order.Status.IsTerminal() {
		updates["status"] = enums.OrderStatusConfirmed
	}

	if err := s.orders.UpdateFields(ctx, order.ID, updates); err != nil {
		return nil, err
	}

	if err := s.lifecycle.Settle(ctx, order.ID); err != nil {
		return nil, err
	}

	updated, err := s.orders.FindByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, fmt.Sprintf("payment %s confirmed", paymentID))
	s.lifecycle.SendConfirmationEmail(ctx, updated)
	return updated, nil
}
