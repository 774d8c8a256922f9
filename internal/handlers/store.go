package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"example.com/cost-signal/backend/internal/models"
	"example.com/cost-signal/backend/internal/repository"
	"example.com/cost-signal/backend/internal/scheduler"
	"example.com/cost-signal/backend/internal/signals"
)

// Интерфейсы ниже покрывают ровно то, что обработчики берут из репозиториев и сервисов.

type SignalReader interface {
	Latest(ctx context.Context) (models.WeeklySignal, error)
	ListRecent(ctx context.Context, limit int) ([]models.WeeklySignal, error)
}

type ReadingReader interface {
	ListByWeek(ctx context.Context, weekStart time.Time) ([]models.IndicatorReading, error)
	ListHistory(ctx context.Context, indicator *models.IndicatorType, weeks int) ([]models.IndicatorReading, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
}

type UserCounter interface {
	Count(ctx context.Context) (int, error)
	CountByPlan(ctx context.Context) ([]repository.PlanCount, error)
}

type SpendingStore interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (models.SpendingPattern, error)
	Upsert(ctx context.Context, pattern models.SpendingPattern) (models.SpendingPattern, error)
}

type UsageReader interface {
	UsageStats(ctx context.Context, weeks int) (repository.UsageStats, error)
}

type WeekRunner interface {
	CurrentWeek() time.Time
	RunWeek(ctx context.Context, week time.Time) (signals.WeekResult, error)
	Recompute(ctx context.Context, week time.Time) (signals.WeekResult, error)
}

type StreamCounter interface {
	SubscriberCount() int
}

type SchedulerStatus interface {
	Status() scheduler.Status
}
