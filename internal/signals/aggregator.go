package signals

import "example.com/cost-signal/backend/internal/models"

type OverallSignal struct {
	Status    models.OverallStatus `json:"status"`
	RiskCount int                  `json:"risk_count"`
}

// CalculateOverallSignal сводит статусы индикаторов недели в общий сигнал.
func CalculateOverallSignal(statuses []models.IndicatorStatus) OverallSignal {
	riskCount := 0
	for _, status := range statuses {
		if status == models.StatusRisk {
			riskCount++
		}
	}

	return OverallSignal{Status: overallStatus(riskCount), RiskCount: riskCount}
}

// StatusesOf извлекает статусы из показаний.
func StatusesOf(readings []models.IndicatorReading) []models.IndicatorStatus {
	statuses := make([]models.IndicatorStatus, 0, len(readings))
	for _, reading := range readings {
		statuses = append(statuses, reading.Status)
	}
	return statuses
}

func overallStatus(riskCount int) models.OverallStatus {
	switch {
	case riskCount >= 2:
		return models.OverallRisk
	case riskCount == 1:
		return models.OverallCaution
	default:
		return models.OverallOK
	}
}
