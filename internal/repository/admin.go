package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/cost-signal/backend/internal/models"
)

// AdminRepository отдает агрегаты для админской панели.
type AdminRepository struct {
	db *pgxpool.Pool
}

type WeeklyStatusCount struct {
	WeekStart     time.Time            `json:"week_start"`
	OverallStatus models.OverallStatus `json:"overall_status"`
	RiskCount     int                  `json:"risk_count"`
	Indicators    int                  `json:"indicators"`
}

type UsageStats struct {
	SpendingPatterns int                 `json:"spending_patterns"`
	Signals          int                 `json:"signals"`
	Readings         int                 `json:"readings"`
	RiskWeeks        int                 `json:"risk_weeks"`
	AIRequests       int                 `json:"ai_requests"`
	AIFailures       int                 `json:"ai_failures"`
	RecentWeeks      []WeeklyStatusCount `json:"recent_weeks"`
}

// NewAdminRepository создает репозиторий для админских запросов.
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

// UsageStats возвращает статистику сервиса и сводку последних weeks недель.
func (r *AdminRepository) UsageStats(ctx context.Context, weeks int) (UsageStats, error) {
	stats := UsageStats{}
	if weeks <= 0 {
		return stats, ErrInvalid
	}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM spending_patterns`).Scan(&stats.SpendingPatterns); err != nil {
		return stats, err
	}

	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE overall_status = 'risk')
		 FROM weekly_signals`,
	).Scan(&stats.Signals, &stats.RiskWeeks); err != nil {
		return stats, err
	}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM indicator_readings`).Scan(&stats.Readings); err != nil {
		return stats, err
	}

	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE NOT success)
		 FROM ai_requests`,
	).Scan(&stats.AIRequests, &stats.AIFailures); err != nil {
		return stats, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT s.week_start, s.overall_status, s.risk_count, COUNT(r.id)
		 FROM weekly_signals s
		 LEFT JOIN indicator_readings r ON r.week_start = s.week_start
		 GROUP BY s.week_start, s.overall_status, s.risk_count
		 ORDER BY s.week_start DESC
		 LIMIT $1`,
		weeks,
	)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	stats.RecentWeeks = make([]WeeklyStatusCount, 0)
	for rows.Next() {
		var row WeeklyStatusCount
		if err := rows.Scan(&row.WeekStart, &row.OverallStatus, &row.RiskCount, &row.Indicators); err != nil {
			return stats, err
		}
		stats.RecentWeeks = append(stats.RecentWeeks, row)
	}

	if err := rows.Err(); err != nil {
		return stats, err
	}

	return stats, nil
}
