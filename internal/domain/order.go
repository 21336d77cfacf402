package domain

import "fmt"

// NewOrder создает пустой заказ в статусе PENDING.
func NewOrder(userID int64, couponID *int64) *Order {
	return &Order{
		UserID:   userID,
		CouponID: couponID,
		Status:   OrderStatusPending,
	}
}

func (i OrderItem) TotalPrice() int64 {
	return i.PriceAtOrder * i.Quantity
}

func (o *Order) AddItem(item OrderItem) {
	o.Items = append(o.Items, item)
}

// CalculateAmounts фиксирует суммы заказа. FinalAmount = TotalAmount -
// DiscountAmount - PointUsed и не может быть отрицательным.
func (o *Order) CalculateAmounts(discountAmount, pointUsed, pointRewarded int64) error {
	var total int64
	for _, item := range o.Items {
		total += item.TotalPrice()
	}
	o.TotalAmount = total
	o.DiscountAmount = discountAmount
	o.PointUsed = pointUsed
	o.PointRewarded = pointRewarded
	o.FinalAmount = total - discountAmount - pointUsed

	if o.FinalAmount < 0 {
		return fmt.Errorf("%w: final amount %d is negative", ErrInvalidState, o.FinalAmount)
	}
	return nil
}

// Confirm переводит PENDING -> CONFIRMED.
func (o *Order) Confirm() error {
	if o.Status != OrderStatusPending {
		return fmt.Errorf("%w: only pending order can be confirmed, order %d is %s",
			ErrInvalidState, o.ID, o.Status)
	}
	o.Status = OrderStatusConfirmed
	return nil
}

// Cancel переводит PENDING/CONFIRMED -> CANCELLED. Повторная отмена и отмена
// возвращенного заказа запрещены.
func (o *Order) Cancel() error {
	if o.Status == OrderStatusCancelled || o.Status == OrderStatusRefunded {
		return fmt.Errorf("%w: order %d already %s", ErrInvalidState, o.ID, o.Status)
	}
	o.Status = OrderStatusCancelled
	return nil
}

// Refund переводит CONFIRMED -> REFUNDED.
func (o *Order) Refund() error {
	if o.Status != OrderStatusConfirmed {
		return fmt.Errorf("%w: only confirmed order can be refunded, order %d is %s",
			ErrInvalidState, o.ID, o.Status)
	}
	o.Status = OrderStatusRefunded
	return nil
}
