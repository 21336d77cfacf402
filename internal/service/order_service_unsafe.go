package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/pkg/uow"
)

// UnsafeOrderService тот же воркфлоу заказа шаг в шаг, но без единого лока:
// ни мьютекса вокруг операции, ни локов строк, ни мьютекса на баллы. Два
// конкурентных заказа на один товар могут оба увидеть достаточный остаток
// до того, как кто-то из них запишет результат. Вариант существует, чтобы
// гонку воспроизводить, а не чтобы ее избегать.
type UnsafeOrderService struct {
	uow    uow.UOW
	stock  *StockService
	points *PointService
	log    *logrus.Logger
}

func NewUnsafeOrderService(
	u uow.UOW,
	stock *StockService,
	points *PointService,
	log *logrus.Logger,
) *UnsafeOrderService {
	return &UnsafeOrderService{
		uow:    u,
		stock:  stock,
		points: points,
		log:    log,
	}
}

func (o *UnsafeOrderService) Create(ctx context.Context, args CreateOrderArgs) (*domain.Order, error) {
	o.log.WithField("userID", args.UserID).Info("creating order (unsafe)")

	var created *domain.Order
	err := o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		order, txErr := o.createTx(c, tx, args)
		if txErr != nil {
			return txErr
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}
	return created, nil
}

func (o *UnsafeOrderService) createTx(ctx context.Context, tx uow.TX, args CreateOrderArgs) (*domain.Order, error) {
	userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(domain.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(domain.OrderRepoName))
	if orderRepoErr != nil {
		return nil, orderRepoErr
	}

	user, userErr := userRepo.FindByID(ctx, args.UserID)
	if userErr != nil {
		return nil, userErr
	}

	order := domain.NewOrder(user.ID, args.CouponID)

	for _, item := range sortedByProductID(args.Items) {
		product, decErr := o.stock.DecreaseUnsafe(ctx, tx, item.ProductID, item.Quantity)
		if decErr != nil {
			return nil, decErr
		}
		order.AddItem(domain.OrderItem{
			ProductID:    product.ID,
			Quantity:     item.Quantity,
			PriceAtOrder: product.Price,
		})
	}

	var itemsTotal int64
	for _, item := range order.Items {
		itemsTotal += item.TotalPrice()
	}

	var discount int64
	if args.CouponID != nil {
		couponRepo, couponRepoErr := uow.GetAs[CouponRepository](tx, uow.RepositoryName(domain.CouponRepoName))
		if couponRepoErr != nil {
			return nil, couponRepoErr
		}
		// чтение без лока: конкурентные использования могут недосчитать usedCount
		coupon, couponErr := couponRepo.FindByID(ctx, *args.CouponID)
		if couponErr != nil {
			return nil, couponErr
		}
		if useErr := coupon.Use(); useErr != nil {
			return nil, useErr
		}
		if saveErr := couponRepo.Save(ctx, coupon); saveErr != nil {
			return nil, saveErr
		}
		discount = coupon.CalculateDiscount(itemsTotal)
	}

	if args.PointsToUse > 0 {
		if useErr := o.points.UseUnsafe(ctx, tx, user.ID, args.PointsToUse, nil); useErr != nil {
			return nil, useErr
		}
	}

	reward := user.CalculateRewardPoints(itemsTotal)

	if calcErr := order.CalculateAmounts(discount, args.PointsToUse, reward); calcErr != nil {
		return nil, calcErr
	}

	saved, saveErr := orderRepo.Create(ctx, order)
	if saveErr != nil {
		return nil, saveErr
	}

	if reward > 0 {
		if earnErr := o.points.AddUnsafe(ctx, tx, user.ID, reward, domain.PointTypeEarn, &saved.ID); earnErr != nil {
			return nil, earnErr
		}
	}

	if confirmErr := saved.Confirm(); confirmErr != nil {
		return nil, confirmErr
	}
	if saveConfirmedErr := orderRepo.Save(ctx, saved); saveConfirmedErr != nil {
		return nil, saveConfirmedErr
	}
	return saved, nil
}

func (o *UnsafeOrderService) Cancel(ctx context.Context, orderID int64) error {
	o.log.WithField("orderID", orderID).Info("cancelling order (unsafe)")

	err := o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		return o.cancelTx(c, tx, orderID)
	})
	if err != nil {
		return fmt.Errorf("cancelling order %d: %w", orderID, err)
	}
	return nil
}

func (o *UnsafeOrderService) cancelTx(ctx context.Context, tx uow.TX, orderID int64) error {
	orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(domain.OrderRepoName))
	if orderRepoErr != nil {
		return orderRepoErr
	}

	order, findErr := orderRepo.FindByIDWithItems(ctx, orderID)
	if findErr != nil {
		return findErr
	}
	if cancelErr := order.Cancel(); cancelErr != nil {
		return cancelErr
	}
	if saveErr := orderRepo.Save(ctx, order); saveErr != nil {
		return saveErr
	}

	items := slices.Clone(order.Items)
	slices.SortFunc(items, func(a, b domain.OrderItem) int {
		return int(a.ProductID - b.ProductID)
	})
	for _, item := range items {
		if incErr := o.stock.IncreaseUnsafe(ctx, tx, item.ProductID, item.Quantity); incErr != nil {
			return incErr
		}
	}

	if order.PointUsed > 0 {
		if refundErr := o.points.AddUnsafe(ctx, tx, order.UserID, order.PointUsed, domain.PointTypeRefund, &order.ID); refundErr != nil {
			return refundErr
		}
	}

	if order.PointRewarded > 0 {
		if clawErr := o.points.UseUnsafe(ctx, tx, order.UserID, order.PointRewarded, &order.ID); clawErr != nil {
			return clawErr
		}
	}

	if order.CouponID != nil {
		couponRepo, couponRepoErr := uow.GetAs[CouponRepository](tx, uow.RepositoryName(domain.CouponRepoName))
		if couponRepoErr != nil {
			return couponRepoErr
		}
		coupon, couponErr := couponRepo.FindByID(ctx, *order.CouponID)
		if couponErr != nil {
			return couponErr
		}
		if restoreErr := coupon.Restore(); restoreErr != nil {
			return restoreErr
		}
		if saveErr := couponRepo.Save(ctx, coupon); saveErr != nil {
			return saveErr
		}
	}
	return nil
}
