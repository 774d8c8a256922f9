package signals

import (
	"context"
	"log/slog"
	"time"

	"example.com/cost-signal/backend/internal/models"
)

const (
	gasChangeThreshold          = 8.0
	cpiChangeThreshold          = 0.6
	interestRatePointThreshold  = 0.25
	unemploymentChangeThreshold = 0.3

	gasTrendStreak     = 3
	defaultTrendStreak = 2

	gasTrendWindow     = 4
	defaultTrendWindow = 3
)

// HistoryReader отдает предыдущие показания индикатора, от свежих к старым.
type HistoryReader interface {
	RecentReadings(ctx context.Context, indicator models.IndicatorType, before time.Time, limit int) ([]models.IndicatorReading, error)
}

// Evaluator оценивает индикатор, подгружая историю для трендовых правил.
type Evaluator struct {
	history HistoryReader
	logger  *slog.Logger
}

// NewEvaluator создает оценщик поверх источника истории.
func NewEvaluator(history HistoryReader, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Evaluator{history: history, logger: logger}
}

// Evaluate классифицирует показание недели weekStart. Ошибка чтения истории не прерывает
// оценку: трендовое правило просто не срабатывает.
func (e *Evaluator) Evaluate(ctx context.Context, indicator models.IndicatorType, weekStart time.Time, current float64, previous *float64) models.IndicatorStatus {
	if previous == nil {
		return models.StatusOK
	}

	var recent []models.IndicatorReading
	if e.history != nil {
		readings, err := e.history.RecentReadings(ctx, indicator, weekStart, TrendWindow(indicator))
		if err != nil {
			e.logger.Warn("indicator history unavailable",
				slog.String("indicator", string(indicator)),
				slog.String("error", err.Error()),
			)
		} else {
			recent = readings
		}
	}

	return Evaluate(indicator, current, previous, recent)
}

// TrendWindow возвращает, сколько предыдущих показаний просматривает трендовое правило.
func TrendWindow(indicator models.IndicatorType) int {
	if indicator == models.IndicatorGas {
		return gasTrendWindow
	}

	return defaultTrendWindow
}

// Evaluate применяет правило индикатора к текущему значению и недавней истории.
func Evaluate(indicator models.IndicatorType, current float64, previous *float64, recent []models.IndicatorReading) models.IndicatorStatus {
	switch indicator {
	case models.IndicatorGas:
		return EvaluateGas(current, previous, recent)
	case models.IndicatorCPI:
		return EvaluateCPI(current, previous, recent)
	case models.IndicatorInterestRate:
		return EvaluateInterestRate(current, previous, recent)
	case models.IndicatorUnemployment:
		return EvaluateUnemployment(current, previous, recent)
	default:
		return models.StatusOK
	}
}

// EvaluateGas: рост цены бензина больше 8% за неделю или три недели роста подряд.
func EvaluateGas(current float64, previous *float64, recent []models.IndicatorReading) models.IndicatorStatus {
	return evaluatePercent(current, previous, recent, gasChangeThreshold, gasTrendWindow, gasTrendStreak)
}

// EvaluateCPI: рост CPI больше 0.6% за месяц или два месяца роста подряд.
func EvaluateCPI(current float64, previous *float64, recent []models.IndicatorReading) models.IndicatorStatus {
	return evaluatePercent(current, previous, recent, cpiChangeThreshold, defaultTrendWindow, defaultTrendStreak)
}

// EvaluateInterestRate: ставка выросла на 0.25 п.п. и больше или росла два раза подряд.
func EvaluateInterestRate(current float64, previous *float64, recent []models.IndicatorReading) models.IndicatorStatus {
	if previous == nil {
		return models.StatusOK
	}

	if current-*previous >= interestRatePointThreshold {
		return models.StatusRisk
	}

	return trendStatus(recent, defaultTrendWindow, defaultTrendStreak)
}

// EvaluateUnemployment: безработица выросла больше чем на 0.3% или росла два раза подряд.
func EvaluateUnemployment(current float64, previous *float64, recent []models.IndicatorReading) models.IndicatorStatus {
	return evaluatePercent(current, previous, recent, unemploymentChangeThreshold, defaultTrendWindow, defaultTrendStreak)
}

func evaluatePercent(current float64, previous *float64, recent []models.IndicatorReading, threshold float64, window, streak int) models.IndicatorStatus {
	if previous == nil {
		return models.StatusOK
	}

	if change := models.ChangePercent(current, previous); change != nil && *change > threshold {
		return models.StatusRisk
	}

	return trendStatus(recent, window, streak)
}

func trendStatus(recent []models.IndicatorReading, window, streak int) models.IndicatorStatus {
	if ConsecutiveIncreases(recent, window) >= streak {
		return models.StatusRisk
	}

	return models.StatusOK
}

// ConsecutiveIncreases считает подряд идущие росты, начиная с самого свежего показания.
// Рост определяется по полю previous_value самой строки, а не сравнением соседних строк:
// если previous_value в строке устарел, счет может расходиться с фактической последовательностью.
func ConsecutiveIncreases(recent []models.IndicatorReading, window int) int {
	if window > 0 && len(recent) > window {
		recent = recent[:window]
	}

	count := 0
	for _, reading := range recent {
		if reading.PreviousValue == nil || reading.Value <= *reading.PreviousValue {
			break
		}
		count++
	}

	return count
}
