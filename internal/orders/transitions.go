package orders

import (
	"fmt"

	"github.com/mercadito-app/mercadito-backend/pkg/enums"
	pkgerrors "github.com/mercadito-app/mercadito-backend/pkg/errors"
)

// Action is one lifecycle move an actor can request.
type Action string

const (
	ActionConfirm         Action = "confirm"
	ActionReject          Action = "reject"
	ActionCancel          Action = "cancel"
	ActionAckRejection    Action = "ack_rejection"
	ActionAckCancellation Action = "ack_cancellation"
	ActionConfirmDelivery Action = "confirm_delivery"
)

// plan is the outcome of evaluating an action against the current
// status: the status the order should land in, and whether the action
// is a repeat acknowledgement that needs no remote call.
type plan struct {
	target enums.OrderStatus
	noop   bool
}

// actionRoles names which side of the order may request each action.
var actionRoles = map[Action]enums.ActorRole{
	ActionConfirm:         enums.ActorRoleSeller,
	ActionReject:          enums.ActorRoleSeller,
	ActionCancel:          enums.ActorRoleBuyer,
	ActionAckRejection:    enums.ActorRoleBuyer,
	ActionAckCancellation: enums.ActorRoleSeller,
	ActionConfirmDelivery: enums.ActorRoleBuyer,
}

// ackTerminal maps each acknowledgement action to the terminal state it
// settles; a repeat against that state is a no-op rather than an error.
var ackTerminal = map[Action]enums.OrderStatus{
	ActionAckRejection:    enums.OrderStatusRejectedAck,
	ActionAckCancellation: enums.OrderStatusCancelledAck,
	ActionConfirmDelivery: enums.OrderStatusDelivered,
}

// planTransition evaluates the guard table. It never mutates anything;
// callers perform the remote call and adopt whatever the backend says.
func planTransition(action Action, role enums.ActorRole, current enums.OrderStatus) (plan, error) {
	requiredRole, ok := actionRoles[action]
	if !ok {
		return plan{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown action %q", action))
	}
	if role != requiredRole {
		return plan{}, pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("%s may not %s an order", role, action))
	}

	if settled, ok := ackTerminal[action]; ok && current == settled {
		return plan{target: settled, noop: true}, nil
	}
	if current.IsTerminal() {
		return plan{}, invalidTransition(action, current)
	}

	switch action {
	case ActionConfirm:
		if current == enums.OrderStatusPending {
			return plan{target: enums.OrderStatusConfirmed}, nil
		}
	case ActionReject:
		if current == enums.OrderStatusPending || current == enums.OrderStatusConfirmed {
			return plan{target: enums.OrderStatusRejectedPendingAck}, nil
		}
	case ActionCancel:
		if current == enums.OrderStatusPending || current == enums.OrderStatusConfirmed {
			return plan{target: enums.OrderStatusCancelledPendingAck}, nil
		}
	case ActionAckRejection:
		if current == enums.OrderStatusRejectedPendingAck {
			return plan{target: enums.OrderStatusRejectedAck}, nil
		}
	case ActionAckCancellation:
		if current == enums.OrderStatusCancelledPendingAck {
			return plan{target: enums.OrderStatusCancelledAck}, nil
		}
	case ActionConfirmDelivery:
		if current == enums.OrderStatusConfirmed {
			return plan{target: enums.OrderStatusDelivered}, nil
		}
	}

	return plan{}, invalidTransition(action, current)
}

func invalidTransition(action Action, current enums.OrderStatus) error {
	return pkgerrors.New(
		pkgerrors.CodeStateConflict,
		fmt.Sprintf("cannot %s an order in status %s", action, current),
	)
}
