package domain

import "fmt"

// RewardRate процент начисления баллов для грейда.
func (g UserGradeType) RewardRate() int64 {
	switch g {
	case UserGradeSilver:
		return 2
	case UserGradeGold:
		return 3
	case UserGradeVIP:
		return 5
	default:
		return 1 // BRONZE
	}
}

// UsePoints списывает баллы с баланса. Не синхронизирован, лок на плечах
// вызывающего.
func (u *User) UsePoints(points int64) error {
	if u.PointBalance < points {
		return fmt.Errorf("%w: user %d has %d, requested %d",
			ErrInsufficientPoints, u.ID, u.PointBalance, points)
	}
	u.PointBalance -= points
	return nil
}

// AddPoints безусловно начисляет баллы (earn или refund — решает вызывающий,
// записывая соответствующий тип в журнал).
func (u *User) AddPoints(points int64) {
	u.PointBalance += points
}

// CalculateRewardPoints floor(amount * rate / 100) по грейду пользователя.
func (u *User) CalculateRewardPoints(amount int64) int64 {
	return amount * u.Grade.RewardRate() / 100
}
