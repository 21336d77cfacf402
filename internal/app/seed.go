package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/service"
	"github.com/fsdevblog/groph-shop/pkg/uow"
)

// Seed наполняет пустое хранилище демо-данными. Повторный запуск ничего не
// делает: наличие хотя бы одного товара считается признаком, что база живая.
func Seed(ctx context.Context, unitOfWork uow.UOW, log *logrus.Logger) error {
	err := unitOfWork.Do(ctx, func(c context.Context, tx uow.TX) error {
		productRepo, productRepoErr := uow.GetAs[service.ProductRepository](tx, uow.RepositoryName(domain.ProductRepoName))
		if productRepoErr != nil {
			return productRepoErr
		}

		products, allErr := productRepo.All(c)
		if allErr != nil {
			return allErr
		}
		if len(products) > 0 {
			log.Debug("storage already has products, skipping seed")
			return nil
		}

		if usersErr := seedUsers(c, tx); usersErr != nil {
			return usersErr
		}
		if productsErr := seedProducts(c, productRepo); productsErr != nil {
			return productsErr
		}
		if couponsErr := seedCoupons(c, tx); couponsErr != nil {
			return couponsErr
		}

		log.Info("storage seeded with demo data")
		return nil
	})
	if err != nil {
		return fmt.Errorf("seeding storage: %w", err)
	}
	return nil
}

func seedUsers(ctx context.Context, tx uow.TX) error {
	userRepo, repoErr := uow.GetAs[service.UserRepository](tx, uow.RepositoryName(domain.UserRepoName))
	if repoErr != nil {
		return repoErr
	}

	grades := []domain.UserGradeType{
		domain.UserGradeBronze, domain.UserGradeBronze, domain.UserGradeBronze,
		domain.UserGradeSilver, domain.UserGradeSilver, domain.UserGradeSilver,
		domain.UserGradeGold, domain.UserGradeGold,
		domain.UserGradeVIP, domain.UserGradeVIP,
	}
	for i, grade := range grades {
		user := &domain.User{
			Username:     fmt.Sprintf("user%02d", i+1),
			Email:        fmt.Sprintf("user%02d@example.com", i+1),
			Grade:        grade,
			PointBalance: 100_000,
		}
		if _, createErr := userRepo.Create(ctx, user); createErr != nil {
			return createErr
		}
	}
	return nil
}

func seedProducts(ctx context.Context, productRepo service.ProductRepository) error {
	products := []domain.Product{
		{Name: "Laptop", Price: 1_500_000, StockQuantity: 100},
		{Name: "Wireless Earbuds", Price: 200_000, StockQuantity: 100},
		{Name: "Mechanical Keyboard", Price: 150_000, StockQuantity: 100},
		{Name: "Monitor", Price: 500_000, StockQuantity: 100},
		{Name: "Mouse", Price: 80_000, StockQuantity: 100},
	}
	for i := range products {
		if _, createErr := productRepo.Create(ctx, &products[i]); createErr != nil {
			return createErr
		}
	}
	return nil
}

func seedCoupons(ctx context.Context, tx uow.TX) error {
	couponRepo, repoErr := uow.GetAs[service.CouponRepository](tx, uow.RepositoryName(domain.CouponRepoName))
	if repoErr != nil {
		return repoErr
	}

	coupons := []domain.Coupon{
		{Name: "10% off", Type: domain.CouponTypePercentage, DiscountValue: 10, TotalAvailableCount: 50},
		{Name: "5000 off", Type: domain.CouponTypeFixedAmount, DiscountValue: 5_000, TotalAvailableCount: 30},
		{Name: "20% off", Type: domain.CouponTypePercentage, DiscountValue: 20, TotalAvailableCount: 20},
	}
	for i := range coupons {
		if _, createErr := couponRepo.Create(ctx, &coupons[i]); createErr != nil {
			return createErr
		}
	}
	return nil
}
