package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/cost-signal/backend/internal/models"
)

type SpendingRepository struct {
	db *pgxpool.Pool
}

// NewSpendingRepository создает репозиторий профилей расходов.
func NewSpendingRepository(db *pgxpool.Pool) *SpendingRepository {
	return &SpendingRepository{db: db}
}

// GetByUser возвращает профиль расходов пользователя.
func (r *SpendingRepository) GetByUser(ctx context.Context, userID uuid.UUID) (models.SpendingPattern, error) {
	var pattern models.SpendingPattern
	var gasFrequency, foodRatio, transportMode *string

	err := r.db.QueryRow(ctx,
		`SELECT user_id, gas_frequency, monthly_rent, food_ratio, transport_mode, has_debt, updated_at
		 FROM spending_patterns
		 WHERE user_id = $1`,
		userID,
	).Scan(&pattern.UserID, &gasFrequency, &pattern.MonthlyRent, &foodRatio, &transportMode, &pattern.HasDebt, &pattern.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pattern, ErrNotFound
		}
		return pattern, err
	}

	pattern.GasFrequency = models.GasFrequency(derefString(gasFrequency))
	pattern.FoodRatio = models.FoodRatio(derefString(foodRatio))
	pattern.TransportMode = models.TransportMode(derefString(transportMode))
	return pattern, nil
}

// Upsert сохраняет единственный снимок профиля пользователя.
func (r *SpendingRepository) Upsert(ctx context.Context, pattern models.SpendingPattern) (models.SpendingPattern, error) {
	var saved models.SpendingPattern
	var gasFrequency, foodRatio, transportMode *string

	err := r.db.QueryRow(ctx,
		`INSERT INTO spending_patterns (user_id, gas_frequency, monthly_rent, food_ratio, transport_mode, has_debt)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id) DO UPDATE
		 SET gas_frequency = EXCLUDED.gas_frequency,
		     monthly_rent = EXCLUDED.monthly_rent,
		     food_ratio = EXCLUDED.food_ratio,
		     transport_mode = EXCLUDED.transport_mode,
		     has_debt = EXCLUDED.has_debt,
		     updated_at = NOW()
		 RETURNING user_id, gas_frequency, monthly_rent, food_ratio, transport_mode, has_debt, updated_at`,
		pattern.UserID,
		nullableString(string(pattern.GasFrequency)),
		pattern.MonthlyRent,
		nullableString(string(pattern.FoodRatio)),
		nullableString(string(pattern.TransportMode)),
		pattern.HasDebt,
	).Scan(&saved.UserID, &gasFrequency, &saved.MonthlyRent, &foodRatio, &transportMode, &saved.HasDebt, &saved.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23503":
				return saved, ErrNotFound
			case "23514":
				return saved, ErrInvalid
			}
		}
		return saved, err
	}

	saved.GasFrequency = models.GasFrequency(derefString(gasFrequency))
	saved.FoodRatio = models.FoodRatio(derefString(foodRatio))
	saved.TransportMode = models.TransportMode(derefString(transportMode))
	return saved, nil
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
