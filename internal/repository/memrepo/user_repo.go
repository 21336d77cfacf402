package memrepo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/pkg/uow"
)

type UserRepository struct {
	h handle
}

func NewUserRepository(conn uow.Conn) *UserRepository {
	return &UserRepository{h: conn.(handle)}
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	s := r.h.store()
	s.mu.RLock()
	u, ok := s.users[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errNotFound("finding user by id %d", id)
	}
	s.raceWindow()
	return &u, nil
}

func (r *UserRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.User, error) {
	if err := r.h.lockRow(ctx, rowKey("user", id)); err != nil {
		return nil, fmt.Errorf("locking user by id %d: %w", id, err)
	}
	s := r.h.store()
	s.mu.RLock()
	u, ok := s.users[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errNotFound("locking user by id %d", id)
	}
	return &u, nil
}

func (r *UserRepository) Save(_ context.Context, user *domain.User) error {
	s := r.h.store()
	s.mu.Lock()
	prev, ok := s.users[user.ID]
	if !ok {
		s.mu.Unlock()
		return errNotFound("saving user %d", user.ID)
	}
	updated := *user
	updated.CreatedAt = prev.CreatedAt
	updated.UpdatedAt = time.Now()
	s.users[user.ID] = updated
	s.mu.Unlock()

	r.h.onUndo(func() {
		s.mu.Lock()
		s.users[prev.ID] = prev
		s.mu.Unlock()
	})
	return nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	s := r.h.store()
	s.mu.Lock()
	created := *user
	created.ID = s.nextID("users")
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	s.users[created.ID] = created
	s.mu.Unlock()

	r.h.onUndo(func() {
		s.mu.Lock()
		delete(s.users, created.ID)
		s.mu.Unlock()
	})
	return &created, nil
}

func (r *UserRepository) All(_ context.Context) ([]domain.User, error) {
	s := r.h.store()
	s.mu.RLock()
	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	s.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}
