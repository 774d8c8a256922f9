package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/cost-signal/backend/internal/models"
)

const signalColumns = "id, week_start, overall_status, risk_count, explanation, created_at, updated_at"

type SignalRepository struct {
	db *pgxpool.Pool
}

// NewSignalRepository создает репозиторий недельных сигналов.
func NewSignalRepository(db *pgxpool.Pool) *SignalRepository {
	return &SignalRepository{db: db}
}

// Upsert сохраняет сигнал недели, перезаписывая прежний.
func (r *SignalRepository) Upsert(ctx context.Context, signal models.WeeklySignal) (models.WeeklySignal, error) {
	if signal.OverallStatus == "" || signal.RiskCount < 0 {
		return signal, ErrInvalid
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO weekly_signals (week_start, overall_status, risk_count, explanation)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (week_start) DO UPDATE
		 SET overall_status = EXCLUDED.overall_status,
		     risk_count = EXCLUDED.risk_count,
		     explanation = EXCLUDED.explanation,
		     updated_at = NOW()
		 RETURNING `+signalColumns,
		signal.WeekStart, signal.OverallStatus, signal.RiskCount, signal.Explanation,
	)

	return scanSignal(row)
}

// GetByWeek возвращает сигнал конкретной недели.
func (r *SignalRepository) GetByWeek(ctx context.Context, weekStart time.Time) (models.WeeklySignal, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+signalColumns+`
		 FROM weekly_signals
		 WHERE week_start = $1`,
		weekStart,
	)

	signal, err := scanSignal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return signal, ErrNotFound
		}
		return signal, err
	}

	return signal, nil
}

// Latest возвращает самый свежий сигнал.
func (r *SignalRepository) Latest(ctx context.Context) (models.WeeklySignal, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+signalColumns+`
		 FROM weekly_signals
		 ORDER BY week_start DESC
		 LIMIT 1`,
	)

	signal, err := scanSignal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return signal, ErrNotFound
		}
		return signal, err
	}

	return signal, nil
}

// ListRecent возвращает последние limit сигналов, от свежих к старым.
func (r *SignalRepository) ListRecent(ctx context.Context, limit int) ([]models.WeeklySignal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+signalColumns+`
		 FROM weekly_signals
		 ORDER BY week_start DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	signals := make([]models.WeeklySignal, 0)
	for rows.Next() {
		signal, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		signals = append(signals, signal)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return signals, nil
}

func scanSignal(row pgx.Row) (models.WeeklySignal, error) {
	var signal models.WeeklySignal
	err := row.Scan(
		&signal.ID,
		&signal.WeekStart,
		&signal.OverallStatus,
		&signal.RiskCount,
		&signal.Explanation,
		&signal.CreatedAt,
		&signal.UpdatedAt,
	)
	return signal, err
}
