package memrepo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/pkg/uow"
)

type CouponRepository struct {
	h handle
}

func NewCouponRepository(conn uow.Conn) *CouponRepository {
	return &CouponRepository{h: conn.(handle)}
}

func (r *CouponRepository) FindByID(_ context.Context, id int64) (*domain.Coupon, error) {
	s := r.h.store()
	s.mu.RLock()
	c, ok := s.coupons[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errNotFound("finding coupon by id %d", id)
	}
	s.raceWindow()
	return &c, nil
}

func (r *CouponRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Coupon, error) {
	if err := r.h.lockRow(ctx, rowKey("coupon", id)); err != nil {
		return nil, fmt.Errorf("locking coupon by id %d: %w", id, err)
	}
	s := r.h.store()
	s.mu.RLock()
	c, ok := s.coupons[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errNotFound("locking coupon by id %d", id)
	}
	return &c, nil
}

func (r *CouponRepository) Save(_ context.Context, coupon *domain.Coupon) error {
	s := r.h.store()
	s.mu.Lock()
	prev, ok := s.coupons[coupon.ID]
	if !ok {
		s.mu.Unlock()
		return errNotFound("saving coupon %d", coupon.ID)
	}
	updated := *coupon
	updated.CreatedAt = prev.CreatedAt
	updated.UpdatedAt = time.Now()
	s.coupons[coupon.ID] = updated
	s.mu.Unlock()

	r.h.onUndo(func() {
		s.mu.Lock()
		s.coupons[prev.ID] = prev
		s.mu.Unlock()
	})
	return nil
}

func (r *CouponRepository) Create(_ context.Context, coupon *domain.Coupon) (*domain.Coupon, error) {
	s := r.h.store()
	s.mu.Lock()
	created := *coupon
	created.ID = s.nextID("coupons")
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	s.coupons[created.ID] = created
	s.mu.Unlock()

	r.h.onUndo(func() {
		s.mu.Lock()
		delete(s.coupons, created.ID)
		s.mu.Unlock()
	})
	return &created, nil
}

func (r *CouponRepository) All(_ context.Context) ([]domain.Coupon, error) {
	s := r.h.store()
	s.mu.RLock()
	coupons := make([]domain.Coupon, 0, len(s.coupons))
	for _, c := range s.coupons {
		coupons = append(coupons, c)
	}
	s.mu.RUnlock()

	sort.Slice(coupons, func(i, j int) bool { return coupons[i].ID < coupons[j].ID })
	return coupons, nil
}
