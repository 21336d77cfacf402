package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/lock"
	"github.com/fsdevblog/groph-shop/pkg/uow"
)

type OrderItemArgs struct {
	ProductID int64
	Quantity  int64
}

type CreateOrderArgs struct {
	UserID      int64
	Items       []OrderItemArgs
	CouponID    *int64
	PointsToUse int64
}

// sortedByProductID товары лочатся в порядке возрастания id, чтобы два
// заказа с пересекающимися товарами не могли взять локи навстречу друг
// другу и намертво сцепиться.
func sortedByProductID(items []OrderItemArgs) []OrderItemArgs {
	sorted := slices.Clone(items)
	slices.SortFunc(sorted, func(a, b OrderItemArgs) int {
		return int(a.ProductID - b.ProductID)
	})
	return sorted
}

// OrderService защищенный воркфлоу заказа: распределенный мьютекс вокруг
// всей операции, эксклюзивные локи строк на товары/купон и мьютекс
// пользователя на баллы — всё внутри одной транзакции. Любая ошибка
// откатывает транзакцию целиком, мьютекс снимается на любом исходе.
type OrderService struct {
	uow     uow.UOW
	locker  lock.Locker
	stock   *StockService
	points  *PointService
	timings LockTimings
	log     *logrus.Logger
}

func NewOrderService(
	u uow.UOW,
	locker lock.Locker,
	stock *StockService,
	points *PointService,
	timings LockTimings,
	log *logrus.Logger,
) *OrderService {
	return &OrderService{
		uow:     u,
		locker:  locker,
		stock:   stock,
		points:  points,
		timings: timings,
		log:     log,
	}
}

func (o *OrderService) Create(ctx context.Context, args CreateOrderArgs) (*domain.Order, error) {
	o.log.WithField("userID", args.UserID).Info("creating order (guarded)")

	var created *domain.Order
	err := lock.With(ctx, o.locker, lock.OrderCreateKey(args.UserID), o.timings.OrderWait, o.timings.OrderLease,
		func() error {
			return o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
				order, txErr := o.createTx(c, tx, args)
				if txErr != nil {
					return txErr
				}
				created = order
				return nil
			})
		})
	if err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}

	o.log.WithFields(logrus.Fields{"orderID": created.ID, "finalAmount": created.FinalAmount}).
		Info("order created")
	return created, nil
}

func (o *OrderService) createTx(ctx context.Context, tx uow.TX, args CreateOrderArgs) (*domain.Order, error) {
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
		product, decErr := o.stock.Decrease(ctx, tx, item.ProductID, item.Quantity)
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
		coupon, couponErr := couponRepo.FindByIDForUpdate(ctx, *args.CouponID)
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
		// заказ еще не сохранен, у записи журнала не будет orderID
		if useErr := o.points.Use(ctx, tx, user.ID, args.PointsToUse, nil); useErr != nil {
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
		if earnErr := o.points.Earn(ctx, tx, user.ID, reward, &saved.ID); earnErr != nil {
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

func (o *OrderService) Cancel(ctx context.Context, orderID int64) error {
	o.log.WithField("orderID", orderID).Info("cancelling order (guarded)")

	err := lock.With(ctx, o.locker, lock.OrderCancelKey(orderID), o.timings.OrderWait, o.timings.OrderLease,
		func() error {
			return o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
				return o.cancelTx(c, tx, orderID)
			})
		})
	if err != nil {
		return fmt.Errorf("cancelling order %d: %w", orderID, err)
	}

	o.log.WithField("orderID", orderID).Info("order cancelled")
	return nil
}

func (o *OrderService) cancelTx(ctx context.Context, tx uow.TX, orderID int64) error {
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
		if incErr := o.stock.Increase(ctx, tx, item.ProductID, item.Quantity); incErr != nil {
			return incErr
		}
	}

	if order.PointUsed > 0 {
		if refundErr := o.points.Refund(ctx, tx, order.UserID, order.PointUsed, &order.ID); refundErr != nil {
			return refundErr
		}
	}

	if order.PointRewarded > 0 {
		// возврат начисленного: может не хватить баллов, если пользователь
		// уже потратил их в другом месте — тогда откатывается вся отмена
		if clawErr := o.points.UseWithEntityLock(ctx, tx, order.UserID, order.PointRewarded, &order.ID); clawErr != nil {
			return clawErr
		}
	}

	if order.CouponID != nil {
		couponRepo, couponRepoErr := uow.GetAs[CouponRepository](tx, uow.RepositoryName(domain.CouponRepoName))
		if couponRepoErr != nil {
			return couponRepoErr
		}
		coupon, couponErr := couponRepo.FindByIDForUpdate(ctx, *order.CouponID)
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
