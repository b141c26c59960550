package orders

import (
	"time"

	"github.com/rikscandle/rikscandle-backend/pkg/db/models"
	"github.com/rikscandle/rikscandle-backend/pkg/enums"
)

// CreateOrderItemInput is one requested line on an incoming order.
type CreateOrderItemInput struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
	Qty       int    `json:"qty" validate:"required,gt=0"`
}

// CreateOrderInput is the checkout payload. Prices are never accepted from
// the client; the pricing engine recomputes everything.
type CreateOrderInput struct {
	Contact struct {
		Name  string `json:"name" validate:"required"`
		Email string `json:"email" validate:"required,email"`
		Phone string `json:"phone" validate:"required"`
	} `json:"contact" validate:"required"`
	ShippingAddress struct {
		Address string `json:"address" validate:"required"`
		City    string `json:"city" validate:"required"`
		State   string `json:"state" validate:"required"`
		Pin     string `json:"pin" validate:"required,pincode"`
	} `json:"shippingAddress" validate:"required"`
	PaymentMethod string                 `json:"paymentMethod" validate:"required,oneof=COD RAZORPAY"`
	Items         []CreateOrderItemInput `json:"items" validate:"required,min=1,dive"`
	CouponCode    string                 `json:"couponCode" validate:"omitempty,max=64"`
	Notes         string                 `json:"notes" validate:"omitempty,max=500"`
}

// UpdateStatusInput drives admin lifecycle edits. At least one of Status and
// IsPaid must be set. Force bypasses the transition graph and is always
// logged.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"omitempty"`
	IsPaid *bool  `json:"isPaid"`
	Force  bool   `json:"force"`
}

// ListFilters describe the inputs supported by the admin orders list.
type ListFilters struct {
	Status        *enums.OrderStatus
	PaymentMethod *enums.PaymentMethod
	DateFrom      *time.Time
	DateTo        *time.Time
	Email         string
}

// OrderList wraps a page of orders plus the next page cursor.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"nextCursor,omitempty"`
}
