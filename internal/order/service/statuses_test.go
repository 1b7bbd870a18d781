package service

import (
	"testing"

	"github.com/Tejaramidi0118/parcel-management-sub000/internal/order/domain"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from domain.OrderStatus
		to   domain.OrderStatus
		want bool
	}{
		{"pending to confirmed", domain.StatusPending, domain.StatusConfirmed, true},
		{"confirmed to assigned", domain.StatusConfirmed, domain.StatusAssigned, true},
		{"assigned to picked up", domain.StatusAssigned, domain.StatusPickedUp, true},
		{"picked up to delivered", domain.StatusPickedUp, domain.StatusDelivered, true},
		{"skip ahead", domain.StatusPending, domain.StatusDelivered, true},
		{"backward", domain.StatusAssigned, domain.StatusConfirmed, false},
		{"self transition", domain.StatusConfirmed, domain.StatusConfirmed, false},
		{"cancel pending", domain.StatusPending, domain.StatusCancelled, true},
		{"cancel picked up", domain.StatusPickedUp, domain.StatusCancelled, true},
		{"cancel delivered", domain.StatusDelivered, domain.StatusCancelled, false},
		{"revive cancelled", domain.StatusCancelled, domain.StatusConfirmed, false},
		{"leave delivered", domain.StatusDelivered, domain.StatusPickedUp, false},
		{"unknown target", domain.StatusPending, domain.OrderStatus("SHIPPED"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, canTransition(tc.from, tc.to))
		})
	}
}

func TestValidStatus(t *testing.T) {
	for _, status := range []domain.OrderStatus{
		domain.StatusPending, domain.StatusConfirmed, domain.StatusAssigned,
		domain.StatusPickedUp, domain.StatusDelivered, domain.StatusCancelled,
	} {
		assert.True(t, validStatus(status), string(status))
	}
	assert.False(t, validStatus(domain.OrderStatus("SHIPPED")))
	assert.False(t, validStatus(domain.OrderStatus("")))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, isTerminal(domain.StatusDelivered))
	assert.True(t, isTerminal(domain.StatusCancelled))
	assert.False(t, isTerminal(domain.StatusPending))
	assert.False(t, isTerminal(domain.StatusPickedUp))
}
