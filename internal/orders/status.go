package orders

import (
	"github.com/rikscandle/rikscandle-backend/pkg/enums"
)

// transitions is the forward lifecycle graph. Delivered is reachable from any
// non-terminal status since fulfillment confirmation can skip intermediate
// steps. Delivered and Cancelled are terminal; nothing leaves them.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPlaced:     {enums.OrderStatusPending, enums.OrderStatusConfirmed, enums.OrderStatusDelivered, enums.OrderStatusCancelled},
	enums.OrderStatusPending:    {enums.OrderStatusConfirmed, enums.OrderStatusDelivered, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:  {enums.OrderStatusProcessing, enums.OrderStatusDelivered, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusShipped, enums.OrderStatusDelivered, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:    {enums.OrderStatusDelivered},
	enums.OrderStatusDelivered:  nil,
	enums.OrderStatusCancelled:  nil,
}

// CanTransition reports whether the lifecycle graph permits moving from one
// status to another.
func CanTransition(from, to enums.OrderStatus) bool {
	if from == to {
		return false
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
