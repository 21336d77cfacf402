package memrepo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/pkg/uow"
)

type ProductRepository struct {
	h handle
}

func NewProductRepository(conn uow.Conn) *ProductRepository {
	return &ProductRepository{h: conn.(handle)}
}

func (r *ProductRepository) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	s := r.h.store()
	s.mu.RLock()
	p, ok := s.products[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errNotFound("finding product by id %d", id)
	}
	s.raceWindow()
	return &p, nil
}

func (r *ProductRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	if err := r.h.lockRow(ctx, rowKey("product", id)); err != nil {
		return nil, fmt.Errorf("locking product by id %d: %w", id, err)
	}
	s := r.h.store()
	s.mu.RLock()
	p, ok := s.products[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errNotFound("locking product by id %d", id)
	}
	return &p, nil
}

func (r *ProductRepository) Save(_ context.Context, product *domain.Product) error {
	s := r.h.store()
	s.mu.Lock()
	prev, ok := s.products[product.ID]
	if !ok {
		s.mu.Unlock()
		return errNotFound("saving product %d", product.ID)
	}
	updated := *product
	updated.CreatedAt = prev.CreatedAt
	updated.UpdatedAt = time.Now()
	s.products[product.ID] = updated
	s.mu.Unlock()

	r.h.onUndo(func() {
		s.mu.Lock()
		s.products[prev.ID] = prev
		s.mu.Unlock()
	})
	return nil
}

func (r *ProductRepository) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	s := r.h.store()
	s.mu.Lock()
	created := *product
	created.ID = s.nextID("products")
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	s.products[created.ID] = created
	s.mu.Unlock()

	r.h.onUndo(func() {
		s.mu.Lock()
		delete(s.products, created.ID)
		s.mu.Unlock()
	})
	return &created, nil
}

func (r *ProductRepository) All(_ context.Context) ([]domain.Product, error) {
	s := r.h.store()
	s.mu.RLock()
	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	s.mu.RUnlock()

	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}
