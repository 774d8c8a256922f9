package impact

import "example.com/cost-signal/backend/internal/models"

type SavingsOpportunity struct {
	Indicator      models.IndicatorType `json:"indicator"`
	Title          string               `json:"title"`
	WeeklySavings  float64              `json:"weekly_savings"`
	MonthlySavings float64              `json:"monthly_savings"`
	AnnualSavings  float64              `json:"annual_savings"`
}

// GenerateSavingsOpportunities переводит советы с ненулевой экономией в недельные, месячные и годовые суммы.
func GenerateSavingsOpportunities(insights []Insight) []SavingsOpportunity {
	opportunities := []SavingsOpportunity{}
	for _, insight := range insights {
		if insight.EstimatedSavings <= 0 {
			continue
		}

		weekly := insight.EstimatedSavings
		opportunities = append(opportunities, SavingsOpportunity{
			Indicator:      insight.Indicator,
			Title:          insight.Title,
			WeeklySavings:  weekly,
			MonthlySavings: round2(weekly * weeksPerMonth),
			AnnualSavings:  round2(weekly * weeksPerYear),
		})
	}
	return opportunities
}
