package signals

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"example.com/cost-signal/backend/internal/fetcher"
	"example.com/cost-signal/backend/internal/models"
	"example.com/cost-signal/backend/internal/notifications"
)

const (
	dateLayout = "2006-01-02"

	defaultRunTimeout = 2 * time.Minute

	EventSignalUpdated = "signal_updated"
)

type ReadingStore interface {
	HistoryReader
	Upsert(ctx context.Context, reading models.IndicatorReading) (models.IndicatorReading, error)
	ListByWeek(ctx context.Context, weekStart time.Time) ([]models.IndicatorReading, error)
}

type SignalStore interface {
	Upsert(ctx context.Context, signal models.WeeklySignal) (models.WeeklySignal, error)
}

// Explainer переписывает черновик объяснения недели более живым текстом.
type Explainer interface {
	ExplainSignal(ctx context.Context, status models.OverallStatus, readings []models.IndicatorReading, draft string) (string, error)
}

type Broadcaster interface {
	Broadcast(event notifications.Event)
}

type WeekResult struct {
	Signal   models.WeeklySignal       `json:"signal"`
	Readings []models.IndicatorReading `json:"readings"`
}

// Service выполняет недельный цикл: загрузка индикаторов, оценка, сохранение, сводный сигнал.
type Service struct {
	sources     []fetcher.Source
	readings    ReadingStore
	signals     SignalStore
	evaluator   *Evaluator
	explainer   Explainer
	broadcaster Broadcaster
	logger      *slog.Logger
	now         func() time.Time
	runTimeout  time.Duration
	group       singleflight.Group
}

// NewService собирает сервис недельного сигнала. explainer и broadcaster могут быть nil.
func NewService(sources []fetcher.Source, readings ReadingStore, signals SignalStore, explainer Explainer, broadcaster Broadcaster, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		sources:     sources,
		readings:    readings,
		signals:     signals,
		evaluator:   NewEvaluator(readings, logger),
		explainer:   explainer,
		broadcaster: broadcaster,
		logger:      logger,
		now:         time.Now,
		runTimeout:  defaultRunTimeout,
	}
}

// SetRunTimeout задает предел одного недельного прогона. Нулевое значение игнорируется.
func (s *Service) SetRunTimeout(timeout time.Duration) {
	if timeout > 0 {
		s.runTimeout = timeout
	}
}

// CurrentWeek возвращает начало текущей недели.
func (s *Service) CurrentWeek() time.Time {
	return models.WeekStart(s.now())
}

// RunWeek загружает свежие значения индикаторов и пересчитывает сигнал недели.
// Параллельные вызовы для одной недели схлопываются в один. Прогон не зависит
// от отмены ctx вызывающего: отмена лишь прекращает ожидание результата.
func (s *Service) RunWeek(ctx context.Context, week time.Time) (WeekResult, error) {
	week = models.WeekStart(week)
	current := s.CurrentWeek()
	if week.Before(current) {
		return WeekResult{}, ErrWeekClosed
	}
	if week.After(current) {
		return WeekResult{}, ErrWeekNotOpen
	}

	detached := context.WithoutCancel(ctx)
	results := s.group.DoChan(week.Format(dateLayout), func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(detached, s.runTimeout)
		defer cancel()
		return s.runWeek(runCtx, week)
	})

	select {
	case <-ctx.Done():
		return WeekResult{}, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return WeekResult{}, res.Err
		}
		if res.Shared {
			s.logger.Debug("weekly run shared", slog.String("week_start", week.Format(dateLayout)))
		}
		return res.Val.(WeekResult), nil
	}
}

// Recompute заново сводит сигнал из уже сохраненных показаний недели, без загрузки.
func (s *Service) Recompute(ctx context.Context, week time.Time) (WeekResult, error) {
	week = models.WeekStart(week)

	readings, err := s.readings.ListByWeek(ctx, week)
	if err != nil {
		return WeekResult{}, fmt.Errorf("list readings: %w", err)
	}
	if len(readings) == 0 {
		return WeekResult{}, ErrNoReadings
	}

	return s.publish(ctx, week, readings)
}

func (s *Service) runWeek(ctx context.Context, week time.Time) (WeekResult, error) {
	observations := s.fetchAll(ctx)
	if len(observations) == 0 {
		return WeekResult{}, ErrNoObservations
	}

	readings := make([]models.IndicatorReading, 0, len(observations))
	for _, indicator := range models.AllIndicatorTypes {
		observation, ok := observations[indicator]
		if !ok {
			continue
		}

		status := s.evaluator.Evaluate(ctx, indicator, week, observation.Value, observation.PreviousValue)
		reading := models.IndicatorReading{
			WeekStart:     week,
			IndicatorType: indicator,
			Value:         observation.Value,
			PreviousValue: observation.PreviousValue,
			ChangePercent: models.ChangePercent(observation.Value, observation.PreviousValue),
			Status:        status,
		}

		saved, err := s.readings.Upsert(ctx, reading)
		if err != nil {
			return WeekResult{}, fmt.Errorf("save %s reading: %w", indicator, err)
		}
		readings = append(readings, saved)
	}

	return s.publish(ctx, week, readings)
}

func (s *Service) fetchAll(ctx context.Context) map[models.IndicatorType]fetcher.Observation {
	results := make([]*fetcher.Observation, len(s.sources))

	// Сбой источника только логируется: неделя считается по тем, кто ответил.
	g, gctx := errgroup.WithContext(ctx)
	for i, source := range s.sources {
		i, source := i, source
		g.Go(func() error {
			observation, err := source.Latest(gctx)
			if err != nil {
				s.logger.Warn("indicator fetch failed",
					slog.String("indicator", string(source.Indicator())),
					slog.String("error", err.Error()),
				)
				return nil
			}
			results[i] = &observation
			return nil
		})
	}
	_ = g.Wait()

	observations := make(map[models.IndicatorType]fetcher.Observation, len(results))
	for i, result := range results {
		if result == nil {
			continue
		}
		observations[s.sources[i].Indicator()] = *result
	}

	return observations
}

func (s *Service) publish(ctx context.Context, week time.Time, readings []models.IndicatorReading) (WeekResult, error) {
	overall := CalculateOverallSignal(StatusesOf(readings))
	explanation := s.explain(ctx, overall, readings)

	signal, err := s.signals.Upsert(ctx, models.WeeklySignal{
		WeekStart:     week,
		OverallStatus: overall.Status,
		RiskCount:     overall.RiskCount,
		Explanation:   &explanation,
	})
	if err != nil {
		return WeekResult{}, fmt.Errorf("save weekly signal: %w", err)
	}

	s.logger.Info("weekly signal computed",
		slog.String("week_start", week.Format(dateLayout)),
		slog.String("overall_status", string(signal.OverallStatus)),
		slog.Int("risk_count", signal.RiskCount),
		slog.Int("indicators", len(readings)),
	)

	if s.broadcaster != nil {
		s.broadcaster.Broadcast(notifications.Event{
			Type: EventSignalUpdated,
			Data: map[string]interface{}{
				"week_start":     week.Format(dateLayout),
				"overall_status": signal.OverallStatus,
				"risk_count":     signal.RiskCount,
			},
		})
	}

	return WeekResult{Signal: signal, Readings: readings}, nil
}

func (s *Service) explain(ctx context.Context, overall OverallSignal, readings []models.IndicatorReading) string {
	draft := BuildExplanation(overall, readings)
	if s.explainer == nil {
		return draft
	}

	text, err := s.explainer.ExplainSignal(ctx, overall.Status, readings, draft)
	if err != nil {
		s.logger.Warn("ai explanation fallback used", slog.String("error", err.Error()))
		return draft
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return draft
	}

	return text
}
