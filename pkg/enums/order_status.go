package enums

import "fmt"

// OrderStatus tracks the lifecycle of a submitted order.
//
// The happy path is pending -> confirmed -> delivered. Rejection (seller)
// and cancellation (buyer) branch into a pending-acknowledgement state that
// only becomes terminal once the counter-party confirms it.
type OrderStatus string

const (
	OrderStatusPending             OrderStatus = "pending"
	OrderStatusConfirmed           OrderStatus = "confirmed"
	OrderStatusDelivered           OrderStatus = "delivered"
	OrderStatusRejectedPendingAck  OrderStatus = "rejected_pending_ack"
	OrderStatusRejectedAck         OrderStatus = "rejected_ack"
	OrderStatusCancelledPendingAck OrderStatus = "cancelled_pending_ack"
	OrderStatusCancelledAck        OrderStatus = "cancelled_ack"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusDelivered,
	OrderStatusRejectedPendingAck,
	OrderStatusRejectedAck,
	OrderStatusCancelledPendingAck,
	OrderStatusCancelledAck,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (o OrderStatus) IsTerminal() bool {
	switch o {
	case OrderStatusDelivered, OrderStatusRejectedAck, OrderStatusCancelledAck:
		return true
	default:
		return false
	}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
