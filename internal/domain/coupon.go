package domain

import "fmt"

// Use занимает один слот купона. Инвариант 0 <= UsedCount <= TotalAvailableCount.
func (c *Coupon) Use() error {
	if c.UsedCount >= c.TotalAvailableCount {
		return fmt.Errorf("%w: coupon %d used %d of %d",
			ErrCouponExhausted, c.ID, c.UsedCount, c.TotalAvailableCount)
	}
	c.UsedCount++
	return nil
}

// Restore освобождает один слот купона (компенсация при отмене заказа).
func (c *Coupon) Restore() error {
	if c.UsedCount <= 0 {
		return fmt.Errorf("%w: coupon %d has no usage to restore", ErrInvalidState, c.ID)
	}
	c.UsedCount--
	return nil
}

// CalculateDiscount чистая функция: фиксированный купон дает min(value, amount),
// процентный — floor(amount * value / 100).
func (c *Coupon) CalculateDiscount(amount int64) int64 {
	if c.Type == CouponTypeFixedAmount {
		return min(c.DiscountValue, amount)
	}
	return amount * c.DiscountValue / 100
}

func (c *Coupon) Available() bool {
	return c.UsedCount < c.TotalAvailableCount
}

func (c *Coupon) Remaining() int64 {
	return c.TotalAvailableCount - c.UsedCount
}
