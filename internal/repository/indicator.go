package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/cost-signal/backend/internal/models"
)

const readingColumns = "id, week_start, indicator_type, value, previous_value, change_percent, status, created_at"

type IndicatorRepository struct {
	db *pgxpool.Pool
}

// NewIndicatorRepository создает репозиторий показаний индикаторов.
func NewIndicatorRepository(db *pgxpool.Pool) *IndicatorRepository {
	return &IndicatorRepository{db: db}
}

// Upsert сохраняет показание недели; повторное сохранение перезаписывает значения.
func (r *IndicatorRepository) Upsert(ctx context.Context, reading models.IndicatorReading) (models.IndicatorReading, error) {
	if reading.IndicatorType == "" || reading.Status == "" {
		return reading, ErrInvalid
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO indicator_readings (week_start, indicator_type, value, previous_value, change_percent, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (week_start, indicator_type) DO UPDATE
		 SET value = EXCLUDED.value,
		     previous_value = EXCLUDED.previous_value,
		     change_percent = EXCLUDED.change_percent,
		     status = EXCLUDED.status
		 RETURNING `+readingColumns,
		reading.WeekStart, reading.IndicatorType, reading.Value, reading.PreviousValue, reading.ChangePercent, reading.Status,
	)

	return scanReading(row)
}

// RecentReadings возвращает до limit показаний индикатора до недели before, от свежих к старым.
func (r *IndicatorRepository) RecentReadings(ctx context.Context, indicator models.IndicatorType, before time.Time, limit int) ([]models.IndicatorReading, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+readingColumns+`
		 FROM indicator_readings
		 WHERE indicator_type = $1 AND week_start < $2
		 ORDER BY week_start DESC
		 LIMIT $3`,
		indicator, before, limit,
	)
	if err != nil {
		return nil, err
	}

	return collectReadings(rows)
}

// ListByWeek возвращает показания одной недели в порядке индикаторов.
func (r *IndicatorRepository) ListByWeek(ctx context.Context, weekStart time.Time) ([]models.IndicatorReading, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+readingColumns+`
		 FROM indicator_readings
		 WHERE week_start = $1
		 ORDER BY array_position(ARRAY['gas', 'cpi', 'interest_rate', 'unemployment'], indicator_type)`,
		weekStart,
	)
	if err != nil {
		return nil, err
	}

	return collectReadings(rows)
}

// ListHistory возвращает показания за последние weeks недель; indicator == nil означает все индикаторы.
func (r *IndicatorRepository) ListHistory(ctx context.Context, indicator *models.IndicatorType, weeks int) ([]models.IndicatorReading, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+readingColumns+`
		 FROM indicator_readings
		 WHERE ($1::text IS NULL OR indicator_type = $1)
		   AND week_start >= (SELECT COALESCE(MAX(week_start), CURRENT_DATE) FROM indicator_readings) - ($2::int - 1) * 7
		 ORDER BY week_start DESC, indicator_type`,
		indicator, weeks,
	)
	if err != nil {
		return nil, err
	}

	return collectReadings(rows)
}

func scanReading(row pgx.Row) (models.IndicatorReading, error) {
	var reading models.IndicatorReading
	err := row.Scan(
		&reading.ID,
		&reading.WeekStart,
		&reading.IndicatorType,
		&reading.Value,
		&reading.PreviousValue,
		&reading.ChangePercent,
		&reading.Status,
		&reading.CreatedAt,
	)
	return reading, err
}

func collectReadings(rows pgx.Rows) ([]models.IndicatorReading, error) {
	defer rows.Close()

	readings := make([]models.IndicatorReading, 0)
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return readings, nil
}
