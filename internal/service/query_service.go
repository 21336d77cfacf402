package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/pkg/uow"
)

// QueryService read-only запросы вне транзакций.
type QueryService struct {
	uow uow.UOW
}

func NewQueryService(u uow.UOW) *QueryService {
	return &QueryService{uow: u}
}

func (q *QueryService) Products(ctx context.Context) ([]domain.Product, error) {
	repo, err := uow.GetRepositoryAs[ProductRepository](q.uow, uow.RepositoryName(domain.ProductRepoName))
	if err != nil {
		return nil, err
	}
	products, allErr := repo.All(ctx)
	if allErr != nil {
		return nil, fmt.Errorf("listing products: %w", allErr)
	}
	return products, nil
}

func (q *QueryService) ProductStock(ctx context.Context, productID int64) (*domain.Product, error) {
	repo, err := uow.GetRepositoryAs[ProductRepository](q.uow, uow.RepositoryName(domain.ProductRepoName))
	if err != nil {
		return nil, err
	}
	product, findErr := repo.FindByID(ctx, productID)
	if findErr != nil {
		return nil, fmt.Errorf("fetching product %d: %w", productID, findErr)
	}
	return product, nil
}

func (q *QueryService) UserPoints(ctx context.Context, userID int64) (*domain.User, []domain.PointHistory, error) {
	userRepo, err := uow.GetRepositoryAs[UserRepository](q.uow, uow.RepositoryName(domain.UserRepoName))
	if err != nil {
		return nil, nil, err
	}
	historyRepo, err := uow.GetRepositoryAs[PointHistoryRepository](q.uow, uow.RepositoryName(domain.PointHistoryRepoName))
	if err != nil {
		return nil, nil, err
	}
	user, findErr := userRepo.FindByID(ctx, userID)
	if findErr != nil {
		return nil, nil, fmt.Errorf("fetching user %d: %w", userID, findErr)
	}
	histories, histErr := historyRepo.GetByUserID(ctx, userID)
	if histErr != nil {
		return nil, nil, fmt.Errorf("fetching point histories of user %d: %w", userID, histErr)
	}
	return user, histories, nil
}

func (q *QueryService) Coupon(ctx context.Context, couponID int64) (*domain.Coupon, error) {
	repo, err := uow.GetRepositoryAs[CouponRepository](q.uow, uow.RepositoryName(domain.CouponRepoName))
	if err != nil {
		return nil, err
	}
	coupon, findErr := repo.FindByID(ctx, couponID)
	if findErr != nil {
		return nil, fmt.Errorf("fetching coupon %d: %w", couponID, findErr)
	}
	return coupon, nil
}

func (q *QueryService) Coupons(ctx context.Context) ([]domain.Coupon, error) {
	repo, err := uow.GetRepositoryAs[CouponRepository](q.uow, uow.RepositoryName(domain.CouponRepoName))
	if err != nil {
		return nil, err
	}
	coupons, allErr := repo.All(ctx)
	if allErr != nil {
		return nil, fmt.Errorf("listing coupons: %w", allErr)
	}
	return coupons, nil
}

func (q *QueryService) Order(ctx context.Context, orderID int64) (*domain.Order, error) {
	repo, err := uow.GetRepositoryAs[OrderRepository](q.uow, uow.RepositoryName(domain.OrderRepoName))
	if err != nil {
		return nil, err
	}
	order, findErr := repo.FindByIDWithItems(ctx, orderID)
	if findErr != nil {
		return nil, fmt.Errorf("fetching order %d: %w", orderID, findErr)
	}
	return order, nil
}

func (q *QueryService) Orders(ctx context.Context) ([]domain.Order, error) {
	repo, err := uow.GetRepositoryAs[OrderRepository](q.uow, uow.RepositoryName(domain.OrderRepoName))
	if err != nil {
		return nil, err
	}
	orders, allErr := repo.All(ctx)
	if allErr != nil {
		return nil, fmt.Errorf("listing orders: %w", allErr)
	}
	return orders, nil
}
