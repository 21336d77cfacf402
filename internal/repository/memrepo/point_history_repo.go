package memrepo

import (
	"context"
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/pkg/uow"
)

// PointHistoryRepository журнал движения баллов: только добавление и чтение.
type PointHistoryRepository struct {
	h handle
}

func NewPointHistoryRepository(conn uow.Conn) *PointHistoryRepository {
	return &PointHistoryRepository{h: conn.(handle)}
}

func (r *PointHistoryRepository) Create(
	_ context.Context,
	history *domain.PointHistory,
) (*domain.PointHistory, error) {
	s := r.h.store()
	s.mu.Lock()
	created := *history
	created.ID = s.nextID("point_histories")
	created.CreatedAt = time.Now()
	s.histories = append(s.histories, created)
	s.mu.Unlock()

	r.h.onUndo(func() {
		s.mu.Lock()
		for i, h := range s.histories {
			if h.ID == created.ID {
				s.histories = append(s.histories[:i], s.histories[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	})
	return &created, nil
}

func (r *PointHistoryRepository) GetByOrderID(_ context.Context, orderID int64) ([]domain.PointHistory, error) {
	return r.filter(func(h domain.PointHistory) bool {
		return h.OrderID != nil && *h.OrderID == orderID
	}), nil
}

func (r *PointHistoryRepository) GetByUserID(_ context.Context, userID int64) ([]domain.PointHistory, error) {
	return r.filter(func(h domain.PointHistory) bool {
		return h.UserID == userID
	}), nil
}

func (r *PointHistoryRepository) filter(keep func(domain.PointHistory) bool) []domain.PointHistory {
	s := r.h.store()
	s.mu.RLock()
	defer s.mu.RUnlock()

	var res []domain.PointHistory
	for _, h := range s.histories {
		if keep(h) {
			res = append(res, h)
		}
	}
	return res
}
