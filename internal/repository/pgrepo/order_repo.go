package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-shop/internal/domain"
)

const orderColumns = `id, created_at, updated_at, user_id, status, total_amount,
	discount_amount, point_used, point_rewarded, final_amount, coupon_id`

type OrderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create сохраняет заказ вместе с позициями и возвращает его с проставленными
// идентификаторами. Позиции принадлежат заказу и живут только вместе с ним.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO orders (user_id, status, total_amount, discount_amount, point_used,
			point_rewarded, final_amount, coupon_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+orderColumns,
		order.UserID, order.Status, order.TotalAmount, order.DiscountAmount,
		order.PointUsed, order.PointRewarded, order.FinalAmount, order.CouponID)
	created, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "creating order for user %d", order.UserID)
	}

	for _, item := range order.Items {
		itemRow := r.db.QueryRow(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price_at_order)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			created.ID, item.ProductID, item.Quantity, item.PriceAtOrder)
		if scanErr := itemRow.Scan(&item.ID); scanErr != nil {
			return nil, convertErr(scanErr, "creating order item for order %d", created.ID)
		}
		item.OrderID = created.ID
		created.Items = append(created.Items, item)
	}
	return created, nil
}

// FindByIDWithItems возвращает заказ сразу с позициями: никаких ленивых
// дозагрузок, агрегат собирается в точке обращения.
func (r *OrderRepository) FindByIDWithItems(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "finding order by id %d", id)
	}

	rows, itemsErr := r.db.Query(ctx,
		`SELECT id, order_id, product_id, quantity, price_at_order
		 FROM order_items WHERE order_id = $1 ORDER BY id`, id)
	if itemsErr != nil {
		return nil, convertErr(itemsErr, "getting items of order %d", id)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if scanErr := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceAtOrder,
		); scanErr != nil {
			return nil, convertErr(scanErr, "scanning item of order %d", id)
		}
		order.Items = append(order.Items, item)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting items of order %d", id)
	}
	return order, nil
}

// Save обновляет изменяемые поля заказа. Позиции неизменяемы после создания.
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET updated_at = now(), status = $2, total_amount = $3,
			discount_amount = $4, point_used = $5, point_rewarded = $6, final_amount = $7
		 WHERE id = $1`,
		order.ID, order.Status, order.TotalAmount, order.DiscountAmount,
		order.PointUsed, order.PointRewarded, order.FinalAmount)
	if err != nil {
		return convertErr(err, "saving order %d", order.ID)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "saving order %d", order.ID)
	}
	return nil
}

func (r *OrderRepository) All(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+orderColumns+" FROM orders ORDER BY id")
	if err != nil {
		return nil, convertErr(err, "getting orders")
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, scanErr := scanOrder(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning order")
		}
		orders = append(orders, *order)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting orders")
	}
	return orders, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(
		&o.ID, &o.CreatedAt, &o.UpdatedAt, &o.UserID, &o.Status, &o.TotalAmount,
		&o.DiscountAmount, &o.PointUsed, &o.PointRewarded, &o.FinalAmount, &o.CouponID,
	); err != nil {
		return nil, err
	}
	return &o, nil
}
