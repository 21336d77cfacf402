package memrepo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/pkg/uow"
)

const defaultLockWait = 3 * time.Second

// Store хранилище в памяти с теми же репозиториями, что у pgrepo, плюс
// uow.Beginner. Эксклюзивные локи строк с таймаутом и откат транзакций
// ведут себя как у postgres, поэтому интеграционные тесты конкурентности
// гоняют настоящие сервисы без внешних зависимостей.
type Store struct {
	mu        sync.RWMutex
	users     map[int64]domain.User
	products  map[int64]domain.Product
	coupons   map[int64]domain.Coupon
	orders    map[int64]domain.Order
	histories []domain.PointHistory
	seq       map[string]int64

	rowLocksMu sync.Mutex
	rowLocks   map[string]chan struct{}

	// LockWait сколько ждать лок строки до ErrLockConflict (аналог lock_timeout).
	LockWait time.Duration
	// FindDelay пауза после чтения без лока. Расширяет окно между чтением и
	// записью, чтобы тесты воспроизведения гонки срабатывали стабильно.
	FindDelay time.Duration
}

func NewStore() *Store {
	return &Store{
		users:    make(map[int64]domain.User),
		products: make(map[int64]domain.Product),
		coupons:  make(map[int64]domain.Coupon),
		orders:   make(map[int64]domain.Order),
		seq:      make(map[string]int64),
		rowLocks: make(map[string]chan struct{}),
		LockWait: defaultLockWait,
	}
}

// handle то, что получают репозитории: доступ к стору и, внутри транзакции,
// undo-лог с локами строк. Вне транзакции undo не ведется, а лок строки не
// имеет области действия и потому не берется.
type handle interface {
	store() *Store
	onUndo(fn func())
	lockRow(ctx context.Context, key string) error
}

func (s *Store) store() *Store                         { return s }
func (s *Store) onUndo(func())                         {}
func (s *Store) lockRow(context.Context, string) error { return nil }

func (s *Store) Begin(_ context.Context) (uow.Tx, error) {
	return &memTx{s: s, heldKeys: make(map[string]struct{})}, nil
}

func (s *Store) rowLock(key string) chan struct{} {
	s.rowLocksMu.Lock()
	defer s.rowLocksMu.Unlock()

	ch, ok := s.rowLocks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.rowLocks[key] = ch
	}
	return ch
}

func (s *Store) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func (s *Store) raceWindow() {
	if s.FindDelay > 0 {
		time.Sleep(s.FindDelay)
	}
}

type memTx struct {
	s        *Store
	undo     []func()
	held     []chan struct{}
	heldKeys map[string]struct{}
	closed   bool
}

func (t *memTx) Conn() uow.Conn { return t }

func (t *memTx) store() *Store { return t.s }

func (t *memTx) onUndo(fn func()) {
	t.undo = append(t.undo, fn)
}

// lockRow берет эксклюзивный лок строки до конца транзакции. Повторный захват
// той же строки той же транзакцией проходит сразу.
func (t *memTx) lockRow(ctx context.Context, key string) error {
	if _, ok := t.heldKeys[key]; ok {
		return nil
	}
	ch := t.s.rowLock(key)
	select {
	case ch <- struct{}{}:
		t.held = append(t.held, ch)
		t.heldKeys[key] = struct{}{}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(t.s.LockWait):
		return fmt.Errorf("%w: row %s after %s", domain.ErrLockConflict, key, t.s.LockWait)
	}
}

func (t *memTx) Commit(_ context.Context) error {
	if t.closed {
		return uow.ErrTxClosed
	}
	t.closed = true
	t.undo = nil
	t.releaseLocks()
	return nil
}

func (t *memTx) Rollback(_ context.Context) error {
	if t.closed {
		return uow.ErrTxClosed
	}
	t.closed = true
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.releaseLocks()
	return nil
}

func (t *memTx) releaseLocks() {
	for _, ch := range t.held {
		<-ch
	}
	t.held = nil
	t.heldKeys = nil
}

func rowKey(table string, id int64) string {
	return fmt.Sprintf("%s:%d", table, id)
}

func errNotFound(format string, args ...any) error {
	return fmt.Errorf("[repository/%s] %w", fmt.Sprintf(format, args...), domain.ErrNotFound)
}

// Register регистрирует все in-memory репозитории в переданном UnitOfWork.
func Register(u uow.UOW) error {
	factories := map[uow.RepositoryName]uow.RepositoryFactory{
		uow.RepositoryName(domain.UserRepoName):         func(conn uow.Conn) uow.Repository { return NewUserRepository(conn) },
		uow.RepositoryName(domain.ProductRepoName):      func(conn uow.Conn) uow.Repository { return NewProductRepository(conn) },
		uow.RepositoryName(domain.CouponRepoName):       func(conn uow.Conn) uow.Repository { return NewCouponRepository(conn) },
		uow.RepositoryName(domain.OrderRepoName):        func(conn uow.Conn) uow.Repository { return NewOrderRepository(conn) },
		uow.RepositoryName(domain.PointHistoryRepoName): func(conn uow.Conn) uow.Repository { return NewPointHistoryRepository(conn) },
	}
	for name, factory := range factories {
		if err := u.Register(name, factory); err != nil {
			return err
		}
	}
	return nil
}
