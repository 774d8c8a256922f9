package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/cost-signal/backend/internal/ai"
)

// AIRepository ведет журнал обращений к модели.
type AIRepository struct {
	db *pgxpool.Pool
}

// NewAIRepository создает репозиторий для AI-запросов.
func NewAIRepository(db *pgxpool.Pool) *AIRepository {
	return &AIRepository{db: db}
}

// RecordExchange сохраняет одно обращение к модели.
func (r *AIRepository) RecordExchange(ctx context.Context, exchange ai.Exchange) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO ai_requests
		 (request_type, provider, model, week_start, prompt, raw_response, success, error_message)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)`,
		exchange.RequestType,
		exchange.Provider,
		exchange.Model,
		exchange.WeekStart,
		exchange.Prompt,
		string(exchange.RawResponse),
		exchange.Success,
		exchange.ErrorMessage,
	)
	return err
}
