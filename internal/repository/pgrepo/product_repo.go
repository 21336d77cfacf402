package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-shop/internal/domain"
)

const productColumns = "id, created_at, updated_at, name, price, stock_quantity"

type ProductRepository struct {
	db DBTX
}

func NewProductRepository(db DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id)
	product, err := scanProduct(row)
	if err != nil {
		return nil, convertErr(err, "finding product by id %d", id)
	}
	return product, nil
}

// FindByIDForUpdate SELECT ... FOR UPDATE, лок до конца транзакции.
func (r *ProductRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1 FOR UPDATE", id)
	product, err := scanProduct(row)
	if err != nil {
		return nil, convertErr(err, "locking product by id %d", id)
	}
	return product, nil
}

func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET updated_at = now(), name = $2, price = $3, stock_quantity = $4
		 WHERE id = $1`,
		product.ID, product.Name, product.Price, product.StockQuantity)
	if err != nil {
		return convertErr(err, "saving product %d", product.ID)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "saving product %d", product.ID)
	}
	return nil
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO products (name, price, stock_quantity)
		 VALUES ($1, $2, $3)
		 RETURNING `+productColumns,
		product.Name, product.Price, product.StockQuantity)
	created, err := scanProduct(row)
	if err != nil {
		return nil, convertErr(err, "creating product `%s`", product.Name)
	}
	return created, nil
}

func (r *ProductRepository) All(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
	if err != nil {
		return nil, convertErr(err, "getting products")
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, scanErr := scanProduct(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning product")
		}
		products = append(products, *product)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting products")
	}
	return products, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.Name, &p.Price, &p.StockQuantity,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
