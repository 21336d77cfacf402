package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/service"
)

// OrderServicer интерфейс исключительно для моков. Ему удовлетворяют и
// защищенный, и unsafe сервисы заказов.
type OrderServicer interface {
	Create(ctx context.Context, args service.CreateOrderArgs) (*domain.Order, error)
	Cancel(ctx context.Context, orderID int64) error
}

type QueryServicer interface {
	Products(ctx context.Context) ([]domain.Product, error)
	ProductStock(ctx context.Context, productID int64) (*domain.Product, error)
	UserPoints(ctx context.Context, userID int64) (*domain.User, []domain.PointHistory, error)
	Coupon(ctx context.Context, couponID int64) (*domain.Coupon, error)
	Coupons(ctx context.Context) ([]domain.Coupon, error)
	Order(ctx context.Context, orderID int64) (*domain.Order, error)
	Orders(ctx context.Context) ([]domain.Order, error)
}
