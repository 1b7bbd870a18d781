package service

import "github.com/Tejaramidi0118/parcel-management-sub000/internal/order/domain"

// statusRank orders the forward lifecycle. CANCELLED sits outside the chain
// and is reachable from any non-terminal state.
var statusRank = map[domain.OrderStatus]int{
	domain.StatusPending:   0,
	domain.StatusConfirmed: 1,
	domain.StatusAssigned:  2,
	domain.StatusPickedUp:  3,
	domain.StatusDelivered: 4,
}

// statusTimestampColumn maps each status to the column stamped on entry.
// Consulted instead of assembling UPDATE clauses ad hoc.
var statusTimestampColumn = map[domain.OrderStatus]string{
	domain.StatusConfirmed: "confirmed_at",
	domain.StatusAssigned:  "assigned_at",
	domain.StatusPickedUp:  "picked_up_at",
	domain.StatusDelivered: "delivered_at",
	domain.StatusCancelled: "cancelled_at",
}

func isTerminal(status domain.OrderStatus) bool {
	return status == domain.StatusDelivered || status == domain.StatusCancelled
}

func validStatus(status domain.OrderStatus) bool {
	if status == domain.StatusCancelled {
		return true
	}
	_, ok := statusRank[status]
	return ok
}

// canTransition enforces the terminal rule and forward ordering.
func canTransition(from, to domain.OrderStatus) bool {
	if isTerminal(from) {
		return false
	}
	if to == domain.StatusCancelled {
		return true
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}
