package signals

import (
	"fmt"
	"strings"

	"example.com/cost-signal/backend/internal/models"
)

var indicatorLabels = map[models.IndicatorType]string{
	models.IndicatorGas:          "Gas prices",
	models.IndicatorCPI:          "Consumer prices (CPI)",
	models.IndicatorInterestRate: "Interest rates",
	models.IndicatorUnemployment: "Unemployment",
}

// IndicatorLabel возвращает человекочитаемое название индикатора.
func IndicatorLabel(indicator models.IndicatorType) string {
	if label, ok := indicatorLabels[indicator]; ok {
		return label
	}
	return string(indicator)
}

// BuildExplanation формирует детерминированное описание недельного сигнала.
func BuildExplanation(signal OverallSignal, readings []models.IndicatorReading) string {
	if len(readings) == 0 {
		return "No indicator data was available this week."
	}

	clauses := make([]string, 0, signal.RiskCount)
	for _, indicator := range models.AllIndicatorTypes {
		for _, reading := range readings {
			if reading.IndicatorType != indicator || reading.Status != models.StatusRisk {
				continue
			}
			clauses = append(clauses, riskClause(reading))
		}
	}

	var b strings.Builder
	switch signal.Status {
	case models.OverallRisk:
		fmt.Fprintf(&b, "%d indicators are flashing risk this week", signal.RiskCount)
	case models.OverallCaution:
		b.WriteString("One indicator is flashing risk this week")
	default:
		fmt.Fprintf(&b, "All %d tracked indicators look stable this week.", len(readings))
		return b.String()
	}

	b.WriteString(": ")
	b.WriteString(strings.Join(clauses, "; "))
	b.WriteString(".")
	return b.String()
}

var clauseLabels = map[models.IndicatorType]string{
	models.IndicatorGas:          "gas prices",
	models.IndicatorCPI:          "consumer prices (CPI)",
	models.IndicatorInterestRate: "interest rates",
	models.IndicatorUnemployment: "unemployment",
}

func riskClause(reading models.IndicatorReading) string {
	label, ok := clauseLabels[reading.IndicatorType]
	if !ok {
		label = string(reading.IndicatorType)
	}

	if reading.IndicatorType == models.IndicatorInterestRate && reading.PreviousValue != nil {
		if delta := reading.Value - *reading.PreviousValue; delta > 0 {
			return fmt.Sprintf("%s rose %.2f points", label, delta)
		}
	}

	if reading.ChangePercent != nil && *reading.ChangePercent > 0 {
		return fmt.Sprintf("%s rose %.1f%%", label, *reading.ChangePercent)
	}

	return label + " kept climbing"
}
