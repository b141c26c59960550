package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rikscandle/rikscandle-backend/pkg/enums"
	"github.com/rikscandle/rikscandle-backend/pkg/types"
)

// Order is the aggregate root: contact, address, item snapshot and totals are
// frozen at creation and never recomputed.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          *uuid.UUID            `gorm:"column:user_id;type:uuid" json:"userId,omitempty"`
	Contact         types.Contact         `gorm:"embedded" json:"contact"`
	ShippingAddress types.ShippingAddress `gorm:"embedded" json:"shippingAddress"`
	PaymentMethod   enums.PaymentMethod   `gorm:"column:payment_method;type:text;not null;default:'COD'" json:"paymentMethod"`
	Totals          types.Totals          `gorm:"embedded" json:"totals"`
	Status          enums.OrderStatus     `gorm:"column:status;type:text;not null;default:'Placed'" json:"status"`
	IsPaid          bool                  `gorm:"column:is_paid;not null;default:false" json:"isPaid"`
	PaidAt          *time.Time            `gorm:"column:paid_at" json:"paidAt,omitempty"`

	// Gateway correlation data, write-once as the payment flow progresses.
	RazorpayOrderID   *string `gorm:"column:razorpay_order_id" json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID *string `gorm:"column:razorpay_payment_id" json:"razorpayPaymentId,omitempty"`
	RazorpaySignature *string `gorm:"column:razorpay_signature" json:"-"`

	DeliveredAt *time.Time `gorm:"column:delivered_at" json:"deliveredAt,omitempty"`
	// SettledAt is the at-most-once inventory settlement claim: set exactly
	// once, by whichever fulfillment-equivalent event fires first.
	SettledAt *time.Time `gorm:"column:settled_at" json:"-"`

	Notes string `gorm:"column:notes;not null;default:''" json:"notes,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// ShortID is the human-facing suffix used on invoices and email subjects.
func (o *Order) ShortID() string {
	s := o.ID.String()
	return s[len(s)-6:]
}
