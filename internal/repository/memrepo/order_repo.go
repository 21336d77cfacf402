package memrepo

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/pkg/uow"
)

type OrderRepository struct {
	h handle
}

func NewOrderRepository(conn uow.Conn) *OrderRepository {
	return &OrderRepository{h: conn.(handle)}
}

// Create сохраняет заказ с позициями, проставляя идентификаторы.
func (r *OrderRepository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	s := r.h.store()
	s.mu.Lock()
	created := cloneOrder(*order)
	created.ID = s.nextID("orders")
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	for i := range created.Items {
		created.Items[i].ID = s.nextID("order_items")
		created.Items[i].OrderID = created.ID
	}
	s.orders[created.ID] = cloneOrder(created)
	s.mu.Unlock()

	r.h.onUndo(func() {
		s.mu.Lock()
		delete(s.orders, created.ID)
		s.mu.Unlock()
	})
	return &created, nil
}

func (r *OrderRepository) FindByIDWithItems(_ context.Context, id int64) (*domain.Order, error) {
	s := r.h.store()
	s.mu.RLock()
	o, ok := s.orders[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errNotFound("finding order by id %d", id)
	}
	found := cloneOrder(o)
	return &found, nil
}

// Save обновляет изменяемые поля заказа. Позиции после создания неизменны.
func (r *OrderRepository) Save(_ context.Context, order *domain.Order) error {
	s := r.h.store()
	s.mu.Lock()
	prev, ok := s.orders[order.ID]
	if !ok {
		s.mu.Unlock()
		return errNotFound("saving order %d", order.ID)
	}
	updated := cloneOrder(prev)
	updated.Status = order.Status
	updated.TotalAmount = order.TotalAmount
	updated.DiscountAmount = order.DiscountAmount
	updated.PointUsed = order.PointUsed
	updated.PointRewarded = order.PointRewarded
	updated.FinalAmount = order.FinalAmount
	updated.UpdatedAt = time.Now()
	s.orders[order.ID] = updated
	s.mu.Unlock()

	r.h.onUndo(func() {
		s.mu.Lock()
		s.orders[prev.ID] = prev
		s.mu.Unlock()
	})
	return nil
}

func (r *OrderRepository) All(_ context.Context) ([]domain.Order, error) {
	s := r.h.store()
	s.mu.RLock()
	orders := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		clone := cloneOrder(o)
		clone.Items = nil
		orders = append(orders, clone)
	}
	s.mu.RUnlock()

	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

func cloneOrder(o domain.Order) domain.Order {
	o.Items = slices.Clone(o.Items)
	return o
}
