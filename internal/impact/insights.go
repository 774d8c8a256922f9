package impact

import (
	"fmt"

	"example.com/cost-signal/backend/internal/models"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Доля роста расходов, которую можно вернуть, следуя совету.
const (
	delayFillUpShare  = 0.50
	eatOutLessShare   = 0.40
	refinanceShare    = 0.20
	combineTripsShare = 0.25
)

type Insight struct {
	Indicator        models.IndicatorType `json:"indicator"`
	Title            string               `json:"title"`
	Action           string               `json:"action"`
	Priority         Priority             `json:"priority"`
	EstimatedSavings float64              `json:"estimated_savings"`
}

// GenerateInsights подбирает советы по правилам поверх разбивки влияния.
func GenerateInsights(readings []models.IndicatorReading, breakdown []Breakdown, pattern *models.SpendingPattern) []Insight {
	insights := []Insight{}
	if pattern == nil {
		return insights
	}

	gas := breakdownFor(breakdown, models.IndicatorGas)
	if gas.Impact > 0 && pattern.GasFrequency != "" && pattern.GasFrequency != models.GasFrequencyMonthly {
		insights = append(insights, Insight{
			Indicator:        models.IndicatorGas,
			Title:            "Gas prices are climbing",
			Action:           fmt.Sprintf("Fill up early in the week before prices rise further; gas is costing you about $%.2f more per week.", gas.Impact),
			Priority:         priorityFor(gas.Level),
			EstimatedSavings: round2(gas.Impact * delayFillUpShare),
		})
	}
	if gas.Impact > 0 && pattern.TransportMode == models.TransportCar {
		insights = append(insights, Insight{
			Indicator:        models.IndicatorGas,
			Title:            "Cut down on driving",
			Action:           "Combine errands into fewer trips or use transit for one commute a week.",
			Priority:         priorityFor(gas.Level),
			EstimatedSavings: round2(gas.Impact * combineTripsShare),
		})
	}

	cpi := breakdownFor(breakdown, models.IndicatorCPI)
	if cpi.Impact > 0 && pattern.FoodRatio == models.FoodRatioHigh {
		insights = append(insights, Insight{
			Indicator:        models.IndicatorCPI,
			Title:            "Prices are up and food is a big part of your budget",
			Action:           "Swap a couple of restaurant meals for home cooking this week.",
			Priority:         priorityFor(cpi.Level),
			EstimatedSavings: round2(cpi.Impact * eatOutLessShare),
		})
	}

	rate := breakdownFor(breakdown, models.IndicatorInterestRate)
	if rate.Impact > 0 && pattern.HasDebt != nil && *pattern.HasDebt {
		insights = append(insights, Insight{
			Indicator:        models.IndicatorInterestRate,
			Title:            "Borrowing just got more expensive",
			Action:           "Check whether variable-rate debt can be refinanced at a fixed rate, and avoid new card balances.",
			Priority:         priorityFor(rate.Level),
			EstimatedSavings: round2(rate.Impact * refinanceShare),
		})
	}

	for _, reading := range readings {
		if reading.IndicatorType != models.IndicatorUnemployment || reading.Status != models.StatusRisk {
			continue
		}
		insights = append(insights, Insight{
			Indicator: models.IndicatorUnemployment,
			Title:     "The job market is softening",
			Action:    "Top up your emergency fund toward three months of expenses.",
			Priority:  PriorityMedium,
		})
		break
	}

	return insights
}

func priorityFor(level Level) Priority {
	switch level {
	case LevelHigh:
		return PriorityHigh
	case LevelMedium:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
