package impact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/cost-signal/backend/internal/models"
)

// Прогноз: наивное продление текущего изменения с затуханием. Тесты фиксируют
// только арифметику эвристики, точность прогноза не проверяется.

// TestGeneratePredictionsStrongMove проверяет продление на 50% при изменении больше 5%.
func TestGeneratePredictionsStrongMove(t *testing.T) {
	readings := []models.IndicatorReading{reading(models.IndicatorGas, 4.00, ptr(3.50), models.StatusRisk)}
	breakdown := []Breakdown{{Indicator: models.IndicatorGas, Impact: 6.75, Level: LevelHigh}}

	predictions := GeneratePredictions(readings, breakdown)

	require.Len(t, predictions, 1)
	got := predictions[0]
	assert.Equal(t, DirectionUp, got.Direction)
	assert.Equal(t, ConfidenceMedium, got.Confidence)
	assert.Equal(t, 7.14, got.PredictedChangePercent)
	assert.Equal(t, 4.29, got.PredictedValue)
	assert.Equal(t, 3.38, got.EstimatedImpact)
	assert.Equal(t, 4.00, got.CurrentValue)
}

// TestGeneratePredictionsModerateMove проверяет продление на 30% при изменении от 2 до 5%.
func TestGeneratePredictionsModerateMove(t *testing.T) {
	readings := []models.IndicatorReading{
		{IndicatorType: models.IndicatorGas, Value: 3.00, ChangePercent: ptr(-4.0)},
	}
	breakdown := []Breakdown{{Indicator: models.IndicatorGas, Impact: -2.0, Level: LevelMedium}}

	predictions := GeneratePredictions(readings, breakdown)

	require.Len(t, predictions, 1)
	got := predictions[0]
	assert.Equal(t, DirectionDown, got.Direction)
	assert.Equal(t, ConfidenceLow, got.Confidence)
	assert.Equal(t, -1.2, got.PredictedChangePercent)
	assert.Equal(t, 2.96, got.PredictedValue)
	assert.Equal(t, -0.6, got.EstimatedImpact)
}

// TestGeneratePredictionsStable проверяет плоский прогноз при малом изменении или его отсутствии.
func TestGeneratePredictionsStable(t *testing.T) {
	readings := []models.IndicatorReading{
		{IndicatorType: models.IndicatorCPI, Value: 310.0, ChangePercent: ptr(1.5)},
		{IndicatorType: models.IndicatorUnemployment, Value: 4.0},
	}

	predictions := GeneratePredictions(readings, nil)

	require.Len(t, predictions, 2)
	for _, got := range predictions {
		assert.Equal(t, DirectionStable, got.Direction)
		assert.Equal(t, got.CurrentValue, got.PredictedValue)
		assert.Zero(t, got.PredictedChangePercent)
		assert.Zero(t, got.EstimatedImpact)
	}
}

// TestGeneratePredictionsOrder проверяет порядок индикаторов в прогнозах.
func TestGeneratePredictionsOrder(t *testing.T) {
	readings := []models.IndicatorReading{
		{IndicatorType: models.IndicatorUnemployment, Value: 4.0},
		{IndicatorType: models.IndicatorGas, Value: 3.5},
	}

	predictions := GeneratePredictions(readings, nil)

	require.Len(t, predictions, 2)
	assert.Equal(t, models.IndicatorGas, predictions[0].Indicator)
	assert.Equal(t, models.IndicatorUnemployment, predictions[1].Indicator)
}
