package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/internal/lock"
	"github.com/fsdevblog/groph-shop/pkg/uow"
)

// PointService операции над балансом баллов. Защищенные методы берут
// распределенный мьютекс user:point:<id> — он сериализует операции одного
// пользователя между всеми воркерами независимо от процесса. Каждая
// завершенная операция пишет запись в журнал движения баллов.
type PointService struct {
	locker  lock.Locker
	timings LockTimings
	log     *logrus.Logger
}

func NewPointService(locker lock.Locker, timings LockTimings, log *logrus.Logger) *PointService {
	return &PointService{
		locker:  locker,
		timings: timings,
		log:     log,
	}
}

// Use списывает баллы под мьютексом пользователя. orderID nil, если заказ
// еще не сохранен.
func (p *PointService) Use(ctx context.Context, tx uow.TX, userID, points int64, orderID *int64) error {
	return lock.With(ctx, p.locker, lock.UserPointKey(userID), p.timings.PointWait, p.timings.PointLease,
		func() error {
			return p.mutate(ctx, tx, userID, points, domain.PointTypeUse, orderID)
		})
}

// Earn начисляет баллы за заказ под мьютексом пользователя.
func (p *PointService) Earn(ctx context.Context, tx uow.TX, userID, points int64, orderID *int64) error {
	return lock.With(ctx, p.locker, lock.UserPointKey(userID), p.timings.PointWait, p.timings.PointLease,
		func() error {
			return p.mutate(ctx, tx, userID, points, domain.PointTypeEarn, orderID)
		})
}

// Refund возвращает потраченные баллы при отмене заказа под мьютексом
// пользователя.
func (p *PointService) Refund(ctx context.Context, tx uow.TX, userID, points int64, orderID *int64) error {
	return lock.With(ctx, p.locker, lock.UserPointKey(userID), p.timings.PointWait, p.timings.PointLease,
		func() error {
			return p.mutate(ctx, tx, userID, points, domain.PointTypeRefund, orderID)
		})
}

// UseWithEntityLock списание под эксклюзивным локом строки пользователя
// вместо мьютекса. Используется отменой заказа для возврата начисленных
// баллов: строка уже сериализована транзакцией.
func (p *PointService) UseWithEntityLock(ctx context.Context, tx uow.TX, userID, points int64, orderID *int64) error {
	userRepo, historyRepo, repoErr := p.repos(tx)
	if repoErr != nil {
		return repoErr
	}
	user, findErr := userRepo.FindByIDForUpdate(ctx, userID)
	if findErr != nil {
		return findErr
	}
	return p.apply(ctx, userRepo, historyRepo, user, points, domain.PointTypeUse, orderID)
}

// UseUnsafe / AddUnsafe варианты без какой-либо синхронизации.
func (p *PointService) UseUnsafe(ctx context.Context, tx uow.TX, userID, points int64, orderID *int64) error {
	return p.mutate(ctx, tx, userID, points, domain.PointTypeUse, orderID)
}

func (p *PointService) AddUnsafe(
	ctx context.Context,
	tx uow.TX,
	userID, points int64,
	kind domain.PointType,
	orderID *int64,
) error {
	return p.mutate(ctx, tx, userID, points, kind, orderID)
}

func (p *PointService) mutate(
	ctx context.Context,
	tx uow.TX,
	userID, points int64,
	kind domain.PointType,
	orderID *int64,
) error {
	userRepo, historyRepo, repoErr := p.repos(tx)
	if repoErr != nil {
		return repoErr
	}
	user, findErr := userRepo.FindByID(ctx, userID)
	if findErr != nil {
		return findErr
	}
	return p.apply(ctx, userRepo, historyRepo, user, points, kind, orderID)
}

func (p *PointService) apply(
	ctx context.Context,
	userRepo UserRepository,
	historyRepo PointHistoryRepository,
	user *domain.User,
	points int64,
	kind domain.PointType,
	orderID *int64,
) error {
	switch kind {
	case domain.PointTypeUse:
		if err := user.UsePoints(points); err != nil {
			return err
		}
	case domain.PointTypeEarn, domain.PointTypeRefund:
		user.AddPoints(points)
	}

	if err := userRepo.Save(ctx, user); err != nil {
		return err
	}

	_, historyErr := historyRepo.Create(ctx, &domain.PointHistory{
		UserID:       user.ID,
		Type:         kind,
		Amount:       points,
		BalanceAfter: user.PointBalance,
		OrderID:      orderID,
	})
	if historyErr != nil {
		return historyErr
	}

	p.log.WithFields(logrus.Fields{
		"userID":  user.ID,
		"type":    kind,
		"amount":  points,
		"balance": user.PointBalance,
	}).Debug("point balance changed")
	return nil
}

func (p *PointService) repos(tx uow.TX) (UserRepository, PointHistoryRepository, error) {
	userRepo, userErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(domain.UserRepoName))
	if userErr != nil {
		return nil, nil, userErr
	}
	historyRepo, historyErr := uow.GetAs[PointHistoryRepository](tx, uow.RepositoryName(domain.PointHistoryRepoName))
	if historyErr != nil {
		return nil, nil, historyErr
	}
	return userRepo, historyRepo, nil
}
