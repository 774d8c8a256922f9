package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job выполняет одну итерацию недельного пересчета.
type Job func(ctx context.Context) error

type Status struct {
	Schedule  string     `json:"schedule"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	LastError *string    `json:"last_error,omitempty"`
	NextRunAt *time.Time `json:"next_run_at,omitempty"`
	RunCount  int        `json:"run_count"`
	FailCount int        `json:"fail_count"`
}

// Scheduler запускает Job по cron-расписанию в UTC. Перекрывающиеся запуски пропускаются.
type Scheduler struct {
	cron     *cron.Cron
	entry    cron.EntryID
	schedule string
	job      Job
	timeout  time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	status Status
}

// New создает планировщик; расписание в стандартном 5-польном формате cron.
func New(schedule string, job Job, timeout time.Duration, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		schedule: schedule,
		job:      job,
		timeout:  timeout,
		logger:   logger,
		status:   Status{Schedule: schedule},
	}

	s.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	entry, err := s.cron.AddFunc(schedule, s.run)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", schedule, err)
	}
	s.entry = entry

	return s, nil
}

// Start запускает расписание в фоне.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", slog.String("schedule", s.schedule))
}

// Stop останавливает расписание и ждет завершения текущего запуска или отмены ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

// Status возвращает сведения о последних запусках.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	status := s.status
	s.mu.Unlock()

	if next := s.cron.Entry(s.entry).Next; !next.IsZero() {
		status.NextRunAt = &next
	}

	return status
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	started := time.Now().UTC()
	err := s.job(ctx)

	s.mu.Lock()
	s.status.LastRunAt = &started
	s.status.RunCount++
	s.status.LastError = nil
	if err != nil {
		message := err.Error()
		s.status.LastError = &message
		s.status.FailCount++
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("scheduled signal run failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(started)),
		)
		return
	}

	s.logger.Info("scheduled signal run finished", slog.Duration("elapsed", time.Since(started)))
}
