package uow

import (
	"context"
	"errors"
)

type RepositoryName string
type Repository any

// Conn хэндл соединения конкретного драйвера (pgx-пул, pgx-транзакция,
// in-memory стор). Репозитории сами знают, какой тип им нужен.
type Conn any

// RepositoryFactory создает репозиторий поверх переданного соединения.
type RepositoryFactory func(conn Conn) Repository

// Beginner открывает новую транзакцию драйвера.
type Beginner interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx транзакция драйвера. Conn возвращает хэндл, через который должны идти
// все запросы до Commit/Rollback.
type Tx interface {
	Conn() Conn
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// ErrTxClosed драйвер обязан возвращать из Rollback, если транзакция уже
// завершена. Такой Rollback ошибкой не считается.
var ErrTxClosed = errors.New("[uow] tx already closed")

// UnitOfWork группирует мутации нескольких репозиториев в одну транзакцию.
type UnitOfWork struct {
	db           Beginner
	conn         Conn
	repositories map[RepositoryName]RepositoryFactory
}

func NewUnitOfWork(db Beginner, conn Conn) *UnitOfWork {
	return &UnitOfWork{
		db:           db,
		conn:         conn,
		repositories: make(map[RepositoryName]RepositoryFactory),
	}
}

// Register регистрирует фабрику репозитория. Повторная регистрация того же
// имени возвращает ошибку ErrRepositoryAlreadyRegistered.
func (u *UnitOfWork) Register(name RepositoryName, factory RepositoryFactory) error {
	if _, ok := u.repositories[name]; ok {
		return ErrRepositoryAlreadyRegistered
	}
	u.repositories[name] = factory
	return nil
}

// Do выполняет fn внутри одной транзакции: ошибка fn откатывает всё целиком.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx TX) error) (err error) {
	tx, beginErr := u.db.Begin(ctx)
	if beginErr != nil {
		return beginErr
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, ErrTxClosed) {
			err = errors.Join(err, rollbackErr)
		}
	}()

	if fnErr := fn(ctx, NewTransaction(tx, u.repositories)); fnErr != nil {
		return fnErr
	}
	err = tx.Commit(ctx)
	return
}

// GetRepository возвращает репозиторий поверх соединения вне транзакции
// или ошибку ErrRepositoryNotRegistered.
func (u *UnitOfWork) GetRepository(name RepositoryName) (Repository, error) {
	if factory, ok := u.repositories[name]; ok {
		return factory(u.conn), nil
	}
	return nil, ErrRepositoryNotRegistered
}

// GetRepositoryAs возвращает репозиторий по имени name приведенный к типу T.
// Возвращает ошибки ErrRepositoryNotRegistered и ErrInvalidRepositoryType.
func GetRepositoryAs[T any](u UOW, name RepositoryName) (T, error) {
	var res T
	repo, err := u.GetRepository(name)
	if err != nil {
		return res, err
	}
	r, ok := repo.(T)
	if !ok {
		return res, ErrInvalidRepositoryType
	}
	return r, nil
}
