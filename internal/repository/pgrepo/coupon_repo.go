package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-shop/internal/domain"
)

const couponColumns = "id, created_at, updated_at, name, type, discount_value, total_available_count, used_count"

type CouponRepository struct {
	db DBTX
}

func NewCouponRepository(db DBTX) *CouponRepository {
	return &CouponRepository{db: db}
}

func (r *CouponRepository) FindByID(ctx context.Context, id int64) (*domain.Coupon, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+couponColumns+" FROM coupons WHERE id = $1", id)
	coupon, err := scanCoupon(row)
	if err != nil {
		return nil, convertErr(err, "finding coupon by id %d", id)
	}
	return coupon, nil
}

// FindByIDForUpdate SELECT ... FOR UPDATE, лок до конца транзакции.
func (r *CouponRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Coupon, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+couponColumns+" FROM coupons WHERE id = $1 FOR UPDATE", id)
	coupon, err := scanCoupon(row)
	if err != nil {
		return nil, convertErr(err, "locking coupon by id %d", id)
	}
	return coupon, nil
}

func (r *CouponRepository) Save(ctx context.Context, coupon *domain.Coupon) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE coupons SET updated_at = now(), used_count = $2 WHERE id = $1`,
		coupon.ID, coupon.UsedCount)
	if err != nil {
		return convertErr(err, "saving coupon %d", coupon.ID)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "saving coupon %d", coupon.ID)
	}
	return nil
}

func (r *CouponRepository) Create(ctx context.Context, coupon *domain.Coupon) (*domain.Coupon, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO coupons (name, type, discount_value, total_available_count, used_count)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+couponColumns,
		coupon.Name, coupon.Type, coupon.DiscountValue, coupon.TotalAvailableCount, coupon.UsedCount)
	created, err := scanCoupon(row)
	if err != nil {
		return nil, convertErr(err, "creating coupon `%s`", coupon.Name)
	}
	return created, nil
}

func (r *CouponRepository) All(ctx context.Context) ([]domain.Coupon, error) {
	rows, err := r.db.Query(ctx, "SELECT "+couponColumns+" FROM coupons ORDER BY id")
	if err != nil {
		return nil, convertErr(err, "getting coupons")
	}
	defer rows.Close()

	var coupons []domain.Coupon
	for rows.Next() {
		coupon, scanErr := scanCoupon(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning coupon")
		}
		coupons = append(coupons, *coupon)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting coupons")
	}
	return coupons, nil
}

func scanCoupon(row pgx.Row) (*domain.Coupon, error) {
	var c domain.Coupon
	if err := row.Scan(
		&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.Name, &c.Type,
		&c.DiscountValue, &c.TotalAvailableCount, &c.UsedCount,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
