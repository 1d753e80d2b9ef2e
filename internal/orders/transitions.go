package orders

import "github.com/jvacosta/dailyfish-backend/pkg/enums"

// nextStatuses maps each order status to the statuses staff may move it to.
// Cancellation is allowed from any non-terminal state.
var nextStatuses = map[enums.OrderStatus]map[enums.OrderStatus]struct{}{
	enums.OrderStatusPending: {
		enums.OrderStatusConfirmed: {},
	},
	enums.OrderStatusConfirmed: {
		enums.OrderStatusPreparing: {},
	},
	enums.OrderStatusPreparing: {
		enums.OrderStatusReady: {},
	},
	enums.OrderStatusReady: {
		enums.OrderStatusOutForDelivery: {},
	},
	enums.OrderStatusOutForDelivery: {
		enums.OrderStatusCompleted: {},
	},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to enums.OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == enums.OrderStatusCancelled {
		return true
	}
	allowed, ok := nextStatuses[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}
