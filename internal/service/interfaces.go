package service

import (
	"context"

	"github.com/fsdevblog/groph-shop/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	All(ctx context.Context) ([]domain.User, error)
}

type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Product, error)
	Save(ctx context.Context, product *domain.Product) error
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	All(ctx context.Context) ([]domain.Product, error)
}

type CouponRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Coupon, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Coupon, error)
	Save(ctx context.Context, coupon *domain.Coupon) error
	Create(ctx context.Context, coupon *domain.Coupon) (*domain.Coupon, error)
	All(ctx context.Context) ([]domain.Coupon, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	FindByIDWithItems(ctx context.Context, id int64) (*domain.Order, error)
	Save(ctx context.Context, order *domain.Order) error
	All(ctx context.Context) ([]domain.Order, error)
}

type PointHistoryRepository interface {
	Create(ctx context.Context, history *domain.PointHistory) (*domain.PointHistory, error)
	GetByOrderID(ctx context.Context, orderID int64) ([]domain.PointHistory, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.PointHistory, error)
}
