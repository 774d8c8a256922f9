package impact

import (
	"math"

	"github.com/shopspring/decimal"

	"example.com/cost-signal/backend/internal/models"
)

const (
	avgTankSizeGallons     = 13.5
	defaultMonthlySpending = 5000.0
	rentToSpendingFactor   = 3.0
	weeksPerMonth          = 4.33
	weeksPerYear           = 52.0
	assumedDebtPrincipal   = 50000.0

	highImpactThreshold   = 3.0
	mediumImpactThreshold = 1.0
)

type Level string

const (
	LevelNone   Level = "NONE"
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// Breakdown описывает вклад одного индикатора в недельные расходы пользователя, $/неделю.
type Breakdown struct {
	Indicator models.IndicatorType `json:"indicator"`
	Impact    float64              `json:"impact"`
	Level     Level                `json:"level"`
}

type Analysis struct {
	TotalWeeklyChange    float64              `json:"total_weekly_change"`
	Breakdown            []Breakdown          `json:"breakdown"`
	Insights             []Insight            `json:"insights"`
	Predictions          []Prediction         `json:"predictions"`
	SavingsOpportunities []SavingsOpportunity `json:"savings_opportunities"`
}

// Calculate строит персональный анализ влияния для показаний недели.
// Без профиля расходов все влияния нулевые, а списки рекомендаций пустые.
func Calculate(readings []models.IndicatorReading, pattern *models.SpendingPattern) Analysis {
	byType := indexReadings(readings)

	analysis := Analysis{
		Breakdown:            make([]Breakdown, 0, len(models.AllIndicatorTypes)),
		Insights:             []Insight{},
		Predictions:          []Prediction{},
		SavingsOpportunities: []SavingsOpportunity{},
	}

	total := decimal.Zero
	for _, indicator := range models.AllIndicatorTypes {
		value := 0.0
		if reading, ok := byType[indicator]; ok {
			value = readingImpact(reading, pattern)
		}

		total = total.Add(decimal.NewFromFloat(value))
		analysis.Breakdown = append(analysis.Breakdown, Breakdown{
			Indicator: indicator,
			Impact:    value,
			Level:     ImpactLevel(value),
		})
	}
	analysis.TotalWeeklyChange = round2(total.InexactFloat64())

	if pattern == nil {
		return analysis
	}

	analysis.Insights = GenerateInsights(readings, analysis.Breakdown, pattern)
	analysis.Predictions = GeneratePredictions(readings, analysis.Breakdown)
	analysis.SavingsOpportunities = GenerateSavingsOpportunities(analysis.Insights)
	return analysis
}

func readingImpact(reading models.IndicatorReading, pattern *models.SpendingPattern) float64 {
	switch reading.IndicatorType {
	case models.IndicatorGas:
		return CalculateGasImpact(reading.Value, reading.PreviousValue, pattern)
	case models.IndicatorCPI:
		return CalculateCPIImpact(reading.ChangePercent, pattern)
	case models.IndicatorInterestRate:
		return CalculateInterestRateImpact(reading.Value, reading.PreviousValue, pattern)
	default:
		return CalculateUnemploymentImpact()
	}
}

// CalculateGasImpact: разница цены галлона × бак × заправки в неделю.
func CalculateGasImpact(current float64, previous *float64, pattern *models.SpendingPattern) float64 {
	if pattern == nil || previous == nil {
		return 0
	}

	fillUps := pattern.GasFrequency.FillUpsPerWeek()
	if fillUps == 0 {
		return 0
	}

	return round2((current - *previous) * avgTankSizeGallons * fillUps)
}

// CalculateCPIImpact переносит месячную инфляцию на недельную часть базовых расходов.
func CalculateCPIImpact(changePercent *float64, pattern *models.SpendingPattern) float64 {
	if pattern == nil || changePercent == nil {
		return 0
	}

	base := defaultMonthlySpending
	if pattern.MonthlyRent != nil && *pattern.MonthlyRent > 0 {
		base = *pattern.MonthlyRent * rentToSpendingFactor
	}

	return round2((base / weeksPerMonth) * (*changePercent / 100) * pattern.FoodRatio.FoodMultiplier())
}

// CalculateInterestRateImpact считает удорожание обслуживания долга за неделю.
func CalculateInterestRateImpact(current float64, previous *float64, pattern *models.SpendingPattern) float64 {
	if pattern == nil || previous == nil || pattern.HasDebt == nil || !*pattern.HasDebt {
		return 0
	}

	return round2(assumedDebtPrincipal * ((current - *previous) / 100) / weeksPerYear)
}

// CalculateUnemploymentImpact всегда ноль: безработица служит сигналом риска, а не статья расходов.
func CalculateUnemploymentImpact() float64 {
	return 0
}

// ImpactLevel относит влияние к уровню по модулю.
func ImpactLevel(impact float64) Level {
	magnitude := math.Abs(impact)
	switch {
	case impact == 0:
		return LevelNone
	case magnitude >= highImpactThreshold:
		return LevelHigh
	case magnitude >= mediumImpactThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// round2 округляет до центов, половину от нуля.
func round2(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}

func indexReadings(readings []models.IndicatorReading) map[models.IndicatorType]models.IndicatorReading {
	byType := make(map[models.IndicatorType]models.IndicatorReading, len(readings))
	for _, reading := range readings {
		if _, seen := byType[reading.IndicatorType]; seen {
			continue
		}
		byType[reading.IndicatorType] = reading
	}
	return byType
}

func breakdownFor(breakdown []Breakdown, indicator models.IndicatorType) Breakdown {
	for _, entry := range breakdown {
		if entry.Indicator == indicator {
			return entry
		}
	}
	return Breakdown{Indicator: indicator, Level: LevelNone}
}
