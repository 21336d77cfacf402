package pgrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fsdevblog/groph-shop/internal/domain"
	"github.com/fsdevblog/groph-shop/pkg/uow"
)

// DBTX общий знаменатель pgxpool.Pool и pgx.Tx: репозиториям не важно,
// работают они в транзакции или нет.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Beginner адаптер pgx-пула под uow.Beginner.
type Beginner struct {
	pool *pgxpool.Pool
}

func NewBeginner(pool *pgxpool.Pool) *Beginner {
	return &Beginner{pool: pool}
}

func (b *Beginner) Begin(ctx context.Context) (uow.Tx, error) {
	tx, err := b.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	return &pgxTx{tx: tx}, nil
}

type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) Conn() uow.Conn {
	return t.tx
}

func (t *pgxTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return uow.ErrTxClosed
		}
		return err
	}
	return nil
}

// Register регистрирует все pgx-репозитории в переданном UnitOfWork.
func Register(u uow.UOW) error {
	factories := map[uow.RepositoryName]uow.RepositoryFactory{
		uow.RepositoryName(domain.UserRepoName):         func(conn uow.Conn) uow.Repository { return NewUserRepository(conn.(DBTX)) },
		uow.RepositoryName(domain.ProductRepoName):      func(conn uow.Conn) uow.Repository { return NewProductRepository(conn.(DBTX)) },
		uow.RepositoryName(domain.CouponRepoName):       func(conn uow.Conn) uow.Repository { return NewCouponRepository(conn.(DBTX)) },
		uow.RepositoryName(domain.OrderRepoName):        func(conn uow.Conn) uow.Repository { return NewOrderRepository(conn.(DBTX)) },
		uow.RepositoryName(domain.PointHistoryRepoName): func(conn uow.Conn) uow.Repository { return NewPointHistoryRepository(conn.(DBTX)) },
	}
	for name, factory := range factories {
		if err := u.Register(name, factory); err != nil {
			return err
		}
	}
	return nil
}
