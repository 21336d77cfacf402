package domain

import (
	"time"
)

type OrderStatusType string

const (
	OrderStatusPending   OrderStatusType = "PENDING"
	OrderStatusConfirmed OrderStatusType = "CONFIRMED"
	OrderStatusCancelled OrderStatusType = "CANCELLED"
	OrderStatusRefunded  OrderStatusType = "REFUNDED"
)

type CouponType string

const (
	CouponTypePercentage  CouponType = "PERCENTAGE"
	CouponTypeFixedAmount CouponType = "FIXED_AMOUNT"
)

type UserGradeType string

const (
	UserGradeBronze UserGradeType = "BRONZE"
	UserGradeSilver UserGradeType = "SILVER"
	UserGradeGold   UserGradeType = "GOLD"
	UserGradeVIP    UserGradeType = "VIP"
)

type PointType string

const (
	PointTypeUse    PointType = "USE"
	PointTypeEarn   PointType = "EARN"
	PointTypeRefund PointType = "REFUND"
)

type User struct {
	ID           int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Username     string
	Email        string
	Grade        UserGradeType
	PointBalance int64
}

type Product struct {
	ID            int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Name          string
	Price         int64
	StockQuantity int64
}

type Coupon struct {
	ID                  int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Name                string
	Type                CouponType
	DiscountValue       int64
	TotalAvailableCount int64
	UsedCount           int64
}

type Order struct {
	ID             int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	UserID         int64
	Items          []OrderItem
	Status         OrderStatusType
	TotalAmount    int64
	DiscountAmount int64
	PointUsed      int64
	PointRewarded  int64
	FinalAmount    int64
	CouponID       *int64
}

type OrderItem struct {
	ID           int64
	OrderID      int64
	ProductID    int64
	Quantity     int64
	PriceAtOrder int64
}

// PointHistory запись журнала движения баллов. Только добавляется, никогда
// не изменяется и не удаляется. OrderID nil для списаний, сделанных до того,
// как заказ получил идентификатор.
type PointHistory struct {
	ID           int64
	CreatedAt    time.Time
	UserID       int64
	Type         PointType
	Amount       int64
	BalanceAfter int64
	OrderID      *int64
}
