package enums

import "strings"

// OrderStatus tracks the order through its lifecycle. Placed is the initial
// state for cash-on-delivery orders; Pending for gateway orders awaiting
// payment confirmation.
type OrderStatus string

const (
	OrderStatusPlaced     OrderStatus = "Placed"
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusConfirmed  OrderStatus = "Confirmed"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusPending, OrderStatusConfirmed,
		OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered,
		OrderStatusCancelled:
		return true
	}
	return false
}

// ParseOrderStatus matches a raw string to a known status, ignoring case.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	for _, s := range []OrderStatus{
		OrderStatusPlaced, OrderStatusPending, OrderStatusConfirmed,
		OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered,
		OrderStatusCancelled,
	} {
		if strings.EqualFold(raw, string(s)) {
			return s, true
		}
	}
	return "", false
}

// IsTerminal reports whether the status admits no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) String() string {
	return string(s)
}
