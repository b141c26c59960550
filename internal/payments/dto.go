package payments

import "github.com/google/uuid"

// CreateGatewayOrderInput opens a checkout session for an existing order.
type CreateGatewayOrderInput struct {
	OrderID string `json:"orderId" validate:"required,uuid4"`
}

// CheckoutSession is handed to the storefront to launch the gateway widget.
type CheckoutSession struct {
	OrderID        uuid.UUID `json:"orderId"`
	GatewayOrderID string    `json:"gatewayOrderId"`
	AmountPaise    int64     `json:"amount"`
	Currency       string    `json:"currency"`
	KeyID          string    `json:"keyId"`
}

// VerifyPaymentInput is the checkout confirmation triple posted by the
// storefront after the gateway widget succeeds.
type VerifyPaymentInput struct {
	GatewayOrderID string `json:"razorpayOrderId" validate:"required"`
	PaymentID      string `json:"razorpayPaymentId" validate:"required"`
	Signature      string `json:"razorpaySignature" validate:"required"`
}

// webhookEvent is the subset of the gateway event envelope the handler needs.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}
