package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponCalculateDiscount(t *testing.T) {
	cases := []struct {
		name   string
		coupon Coupon
		amount int64
		want   int64
	}{
		{"percentage", Coupon{Type: CouponTypePercentage, DiscountValue: 10}, 25_000, 2_500},
		{"percentage rounds down", Coupon{Type: CouponTypePercentage, DiscountValue: 3}, 101, 3},
		{"percentage of zero", Coupon{Type: CouponTypePercentage, DiscountValue: 20}, 0, 0},
		{"fixed below amount", Coupon{Type: CouponTypeFixedAmount, DiscountValue: 5_000}, 25_000, 5_000},
		{"fixed capped by amount", Coupon{Type: CouponTypeFixedAmount, DiscountValue: 5_000}, 3_000, 3_000},
		{"fixed equals amount", Coupon{Type: CouponTypeFixedAmount, DiscountValue: 3_000}, 3_000, 3_000},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.coupon.CalculateDiscount(c.amount))
		})
	}
}

func TestCouponUse(t *testing.T) {
	coupon := Coupon{ID: 1, TotalAvailableCount: 2}

	require.NoError(t, coupon.Use())
	require.NoError(t, coupon.Use())
	assert.Equal(t, int64(2), coupon.UsedCount)
	assert.False(t, coupon.Available())
	assert.Equal(t, int64(0), coupon.Remaining())

	err := coupon.Use()
	require.ErrorIs(t, err, ErrCouponExhausted)
	assert.Equal(t, int64(2), coupon.UsedCount)
}

func TestCouponRestore(t *testing.T) {
	coupon := Coupon{ID: 1, TotalAvailableCount: 5, UsedCount: 1}

	require.NoError(t, coupon.Restore())
	assert.Equal(t, int64(0), coupon.UsedCount)

	err := coupon.Restore()
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, int64(0), coupon.UsedCount)
}
