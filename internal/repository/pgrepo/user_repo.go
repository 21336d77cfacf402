package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-shop/internal/domain"
)

const userColumns = "id, created_at, updated_at, username, email, grade, point_balance"

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by id %d", id)
	}
	return user, nil
}

// FindByIDForUpdate берет эксклюзивный лок на строку до конца транзакции.
// Если лок не взят за lock_timeout, вернется ErrLockConflict.
func (r *UserRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1 FOR UPDATE", id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "locking user by id %d", id)
	}
	return user, nil
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET updated_at = now(), username = $2, email = $3, grade = $4, point_balance = $5
		 WHERE id = $1`,
		user.ID, user.Username, user.Email, user.Grade, user.PointBalance)
	if err != nil {
		return convertErr(err, "saving user %d", user.ID)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "saving user %d", user.ID)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO users (username, email, grade, point_balance)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		user.Username, user.Email, user.Grade, user.PointBalance)
	created, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "creating user `%s`", user.Username)
	}
	return created, nil
}

func (r *UserRepository) All(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, convertErr(err, "getting users")
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, scanErr := scanUser(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning user")
		}
		users = append(users, *user)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting users")
	}
	return users, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Username, &u.Email, &u.Grade, &u.PointBalance,
	); err != nil {
		return nil, err
	}
	return &u, nil
}
