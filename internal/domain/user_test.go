package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewardRate(t *testing.T) {
	assert.Equal(t, int64(1), UserGradeBronze.RewardRate())
	assert.Equal(t, int64(2), UserGradeSilver.RewardRate())
	assert.Equal(t, int64(3), UserGradeGold.RewardRate())
	assert.Equal(t, int64(5), UserGradeVIP.RewardRate())
}

func TestCalculateRewardPoints(t *testing.T) {
	cases := []struct {
		name   string
		grade  UserGradeType
		amount int64
		want   int64
	}{
		{"bronze", UserGradeBronze, 10_000, 100},
		{"silver", UserGradeSilver, 10_000, 200},
		{"gold", UserGradeGold, 10_000, 300},
		{"vip", UserGradeVIP, 10_000, 500},
		{"rounds down", UserGradeVIP, 99, 4},
		{"zero amount", UserGradeVIP, 0, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			user := User{Grade: c.grade}
			assert.Equal(t, c.want, user.CalculateRewardPoints(c.amount))
		})
	}
}

func TestUsePoints(t *testing.T) {
	user := User{ID: 1, PointBalance: 1000}

	require.NoError(t, user.UsePoints(400))
	assert.Equal(t, int64(600), user.PointBalance)

	require.NoError(t, user.UsePoints(600))
	assert.Equal(t, int64(0), user.PointBalance)

	err := user.UsePoints(1)
	require.ErrorIs(t, err, ErrInsufficientPoints)
	assert.Equal(t, int64(0), user.PointBalance)
}

func TestAddPoints(t *testing.T) {
	user := User{PointBalance: 100}
	user.AddPoints(250)
	assert.Equal(t, int64(350), user.PointBalance)
}

func TestProductStock(t *testing.T) {
	product := Product{ID: 1, StockQuantity: 5}

	require.NoError(t, product.DecreaseStock(3))
	assert.Equal(t, int64(2), product.StockQuantity)

	err := product.DecreaseStock(3)
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, int64(2), product.StockQuantity)

	product.IncreaseStock(3)
	assert.Equal(t, int64(5), product.StockQuantity)
}
