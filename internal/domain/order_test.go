package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		name       string
		from       OrderStatusType
		transition func(o *Order) error
		wantStatus OrderStatusType
		wantErr    bool
	}{
		{"confirm pending", OrderStatusPending, (*Order).Confirm, OrderStatusConfirmed, false},
		{"confirm confirmed", OrderStatusConfirmed, (*Order).Confirm, OrderStatusConfirmed, true},
		{"confirm cancelled", OrderStatusCancelled, (*Order).Confirm, OrderStatusCancelled, true},
		{"cancel pending", OrderStatusPending, (*Order).Cancel, OrderStatusCancelled, false},
		{"cancel confirmed", OrderStatusConfirmed, (*Order).Cancel, OrderStatusCancelled, false},
		{"cancel cancelled", OrderStatusCancelled, (*Order).Cancel, OrderStatusCancelled, true},
		{"cancel refunded", OrderStatusRefunded, (*Order).Cancel, OrderStatusRefunded, true},
		{"refund confirmed", OrderStatusConfirmed, (*Order).Refund, OrderStatusRefunded, false},
		{"refund pending", OrderStatusPending, (*Order).Refund, OrderStatusPending, true},
		{"refund cancelled", OrderStatusCancelled, (*Order).Refund, OrderStatusCancelled, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			order := &Order{ID: 1, Status: c.from}
			err := c.transition(order)
			if c.wantErr {
				require.ErrorIs(t, err, ErrInvalidState)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, c.wantStatus, order.Status)
		})
	}
}

func TestNewOrder(t *testing.T) {
	couponID := int64(3)
	order := NewOrder(7, &couponID)

	assert.Equal(t, int64(7), order.UserID)
	assert.Equal(t, OrderStatusPending, order.Status)
	require.NotNil(t, order.CouponID)
	assert.Equal(t, couponID, *order.CouponID)
	assert.Empty(t, order.Items)
}

func TestOrderCalculateAmounts(t *testing.T) {
	newOrderWithItems := func() *Order {
		order := NewOrder(1, nil)
		order.AddItem(OrderItem{ProductID: 1, Quantity: 2, PriceAtOrder: 1000})
		order.AddItem(OrderItem{ProductID: 2, Quantity: 1, PriceAtOrder: 500})
		return order
	}

	t.Run("final amount", func(t *testing.T) {
		order := newOrderWithItems()
		require.NoError(t, order.CalculateAmounts(250, 300, 24))

		assert.Equal(t, int64(2500), order.TotalAmount)
		assert.Equal(t, int64(250), order.DiscountAmount)
		assert.Equal(t, int64(300), order.PointUsed)
		assert.Equal(t, int64(24), order.PointRewarded)
		assert.Equal(t, int64(1950), order.FinalAmount)
	})

	t.Run("zero deductions", func(t *testing.T) {
		order := newOrderWithItems()
		require.NoError(t, order.CalculateAmounts(0, 0, 0))
		assert.Equal(t, int64(2500), order.FinalAmount)
	})

	t.Run("negative final amount", func(t *testing.T) {
		order := newOrderWithItems()
		err := order.CalculateAmounts(2000, 1000, 0)
		require.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestOrderItemTotalPrice(t *testing.T) {
	item := OrderItem{Quantity: 3, PriceAtOrder: 150}
	assert.Equal(t, int64(450), item.TotalPrice())
}
