package impact

import (
	"math"

	"example.com/cost-signal/backend/internal/models"
)

// Затухание изменения на следующую неделю. Это наивная эвристика, не прогнозная модель.
const (
	strongMoveThreshold   = 5.0
	moderateMoveThreshold = 2.0
	strongContinuation    = 0.5
	moderateContinuation  = 0.3
)

type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

type Confidence string

const (
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

type Prediction struct {
	Indicator              models.IndicatorType `json:"indicator"`
	CurrentValue           float64              `json:"current_value"`
	PredictedValue         float64              `json:"predicted_value"`
	PredictedChangePercent float64              `json:"predicted_change_percent"`
	Direction              Direction            `json:"direction"`
	Confidence             Confidence           `json:"confidence"`
	EstimatedImpact        float64              `json:"estimated_impact"`
}

// GeneratePredictions продлевает текущее изменение на следующую неделю с затуханием.
func GeneratePredictions(readings []models.IndicatorReading, breakdown []Breakdown) []Prediction {
	byType := indexReadings(readings)

	predictions := make([]Prediction, 0, len(byType))
	for _, indicator := range models.AllIndicatorTypes {
		reading, ok := byType[indicator]
		if !ok {
			continue
		}

		change := 0.0
		if reading.ChangePercent != nil {
			change = *reading.ChangePercent
		}
		factor, confidence := continuation(change)

		predictedChange := round2(change * factor)
		predictions = append(predictions, Prediction{
			Indicator:              indicator,
			CurrentValue:           reading.Value,
			PredictedValue:         round2(reading.Value * (1 + change*factor/100)),
			PredictedChangePercent: predictedChange,
			Direction:              directionOf(predictedChange),
			Confidence:             confidence,
			EstimatedImpact:        round2(breakdownFor(breakdown, indicator).Impact * factor),
		})
	}

	return predictions
}

func continuation(changePercent float64) (float64, Confidence) {
	magnitude := math.Abs(changePercent)
	switch {
	case magnitude > strongMoveThreshold:
		return strongContinuation, ConfidenceMedium
	case magnitude > moderateMoveThreshold:
		return moderateContinuation, ConfidenceLow
	default:
		return 0, ConfidenceLow
	}
}

func directionOf(change float64) Direction {
	switch {
	case change > 0:
		return DirectionUp
	case change < 0:
		return DirectionDown
	default:
		return DirectionStable
	}
}
