package models

import "strings"

// GasFrequency задает, как часто пользователь заправляется. Пустое значение означает «не указано».
type GasFrequency string

type FoodRatio string

type TransportMode string

const (
	GasFrequencyDaily    GasFrequency = "daily"
	GasFrequencyWeekly   GasFrequency = "weekly"
	GasFrequencyBiweekly GasFrequency = "biweekly"
	GasFrequencyMonthly  GasFrequency = "monthly"

	FoodRatioLow    FoodRatio = "low"
	FoodRatioMedium FoodRatio = "medium"
	FoodRatioHigh   FoodRatio = "high"

	TransportCar    TransportMode = "car"
	TransportPublic TransportMode = "public"
	TransportMixed  TransportMode = "mixed"
)

// FillUpsPerWeek переводит частоту заправок в количество баков в неделю.
func (f GasFrequency) FillUpsPerWeek() float64 {
	switch f {
	case GasFrequencyDaily:
		return 7
	case GasFrequencyWeekly:
		return 1
	case GasFrequencyBiweekly:
		return 0.5
	case GasFrequencyMonthly:
		return 0.25
	default:
		return 0
	}
}

// FoodMultiplier возвращает поправку CPI-влияния на долю расходов на еду.
func (r FoodRatio) FoodMultiplier() float64 {
	switch r {
	case FoodRatioHigh:
		return 1.2
	case FoodRatioLow:
		return 0.8
	default:
		return 1.0
	}
}

func ParseGasFrequency(value string) (GasFrequency, bool) {
	switch GasFrequency(normalizeEnum(value)) {
	case "":
		return "", true
	case GasFrequencyDaily:
		return GasFrequencyDaily, true
	case GasFrequencyWeekly:
		return GasFrequencyWeekly, true
	case GasFrequencyBiweekly:
		return GasFrequencyBiweekly, true
	case GasFrequencyMonthly:
		return GasFrequencyMonthly, true
	default:
		return "", false
	}
}

func ParseFoodRatio(value string) (FoodRatio, bool) {
	switch FoodRatio(normalizeEnum(value)) {
	case "":
		return "", true
	case FoodRatioLow:
		return FoodRatioLow, true
	case FoodRatioMedium:
		return FoodRatioMedium, true
	case FoodRatioHigh:
		return FoodRatioHigh, true
	default:
		return "", false
	}
}

func ParseTransportMode(value string) (TransportMode, bool) {
	switch TransportMode(normalizeEnum(value)) {
	case "":
		return "", true
	case TransportCar:
		return TransportCar, true
	case TransportPublic:
		return TransportPublic, true
	case TransportMixed:
		return TransportMixed, true
	default:
		return "", false
	}
}

func normalizeEnum(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
