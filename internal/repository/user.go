package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/cost-signal/backend/internal/models"
)

// UserRepository читает пользователей; записи создают внешние слои авторизации и биллинга.
type UserRepository struct {
	db *pgxpool.Pool
}

type PlanCount struct {
	Plan  models.Plan `json:"plan"`
	Count int         `json:"count"`
}

// NewUserRepository создает репозиторий пользователей.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	var user models.User
	var nameValue *string

	err := r.db.QueryRow(ctx,
		`SELECT id, email, name, plan, created_at
		 FROM users
		 WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Email, &nameValue, &user.Plan, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, ErrNotFound
		}
		return user, err
	}

	user.Name = nameValue
	return user, nil
}

// Count возвращает общее количество пользователей.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountByPlan возвращает количество пользователей по тарифам.
func (r *UserRepository) CountByPlan(ctx context.Context) ([]PlanCount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT plan, COUNT(*)
		 FROM users
		 GROUP BY plan
		 ORDER BY plan`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]PlanCount, 0)
	for rows.Next() {
		var row PlanCount
		if err := rows.Scan(&row.Plan, &row.Count); err != nil {
			return nil, err
		}
		counts = append(counts, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}
