package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-shop/internal/domain"
)

const pointHistoryColumns = "id, created_at, user_id, type, amount, balance_after, order_id"

// PointHistoryRepository журнал движения баллов. Только INSERT и чтение:
// UPDATE/DELETE по этой таблице не существует в принципе.
type PointHistoryRepository struct {
	db DBTX
}

func NewPointHistoryRepository(db DBTX) *PointHistoryRepository {
	return &PointHistoryRepository{db: db}
}

func (r *PointHistoryRepository) Create(
	ctx context.Context,
	history *domain.PointHistory,
) (*domain.PointHistory, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO point_histories (user_id, type, amount, balance_after, order_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+pointHistoryColumns,
		history.UserID, history.Type, history.Amount, history.BalanceAfter, history.OrderID)
	created, err := scanPointHistory(row)
	if err != nil {
		return nil, convertErr(err, "creating point history for user %d", history.UserID)
	}
	return created, nil
}

func (r *PointHistoryRepository) GetByOrderID(ctx context.Context, orderID int64) ([]domain.PointHistory, error) {
	return r.list(ctx, "order_id = $1", orderID)
}

func (r *PointHistoryRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.PointHistory, error) {
	return r.list(ctx, "user_id = $1", userID)
}

func (r *PointHistoryRepository) list(ctx context.Context, cond string, arg any) ([]domain.PointHistory, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+pointHistoryColumns+" FROM point_histories WHERE "+cond+" ORDER BY id", arg)
	if err != nil {
		return nil, convertErr(err, "getting point histories")
	}
	defer rows.Close()

	var histories []domain.PointHistory
	for rows.Next() {
		history, scanErr := scanPointHistory(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning point history")
		}
		histories = append(histories, *history)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting point histories")
	}
	return histories, nil
}

func scanPointHistory(row pgx.Row) (*domain.PointHistory, error) {
	var h domain.PointHistory
	if err := row.Scan(
		&h.ID, &h.CreatedAt, &h.UserID, &h.Type, &h.Amount, &h.BalanceAfter, &h.OrderID,
	); err != nil {
		return nil, err
	}
	return &h, nil
}
