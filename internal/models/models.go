package models

import (
	"time"

	"github.com/google/uuid"
)

type IndicatorType string

type IndicatorStatus string

type OverallStatus string

type Plan string

const (
	IndicatorGas          IndicatorType = "gas"
	IndicatorCPI          IndicatorType = "cpi"
	IndicatorInterestRate IndicatorType = "interest_rate"
	IndicatorUnemployment IndicatorType = "unemployment"

	StatusOK   IndicatorStatus = "ok"
	StatusRisk IndicatorStatus = "risk"

	OverallOK      OverallStatus = "ok"
	OverallCaution OverallStatus = "caution"
	OverallRisk    OverallStatus = "risk"

	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// AllIndicatorTypes задает порядок индикаторов в ответах и выгрузках.
var AllIndicatorTypes = []IndicatorType{
	IndicatorGas,
	IndicatorCPI,
	IndicatorInterestRate,
	IndicatorUnemployment,
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	Plan      Plan      `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}

// IsPremium сообщает, открыт ли пользователю персональный анализ.
func (u User) IsPremium() bool {
	return u.Plan == PlanPremium
}

type IndicatorReading struct {
	ID            uuid.UUID       `json:"id"`
	WeekStart     time.Time       `json:"week_start"`
	IndicatorType IndicatorType   `json:"indicator_type"`
	Value         float64         `json:"value"`
	PreviousValue *float64        `json:"previous_value"`
	ChangePercent *float64        `json:"change_percent"`
	Status        IndicatorStatus `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

type WeeklySignal struct {
	ID            uuid.UUID     `json:"id"`
	WeekStart     time.Time     `json:"week_start"`
	OverallStatus OverallStatus `json:"overall_status"`
	RiskCount     int           `json:"risk_count"`
	Explanation   *string       `json:"explanation"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type SpendingPattern struct {
	UserID        uuid.UUID     `json:"user_id"`
	GasFrequency  GasFrequency  `json:"gas_frequency,omitempty"`
	MonthlyRent   *float64      `json:"monthly_rent"`
	FoodRatio     FoodRatio     `json:"food_ratio,omitempty"`
	TransportMode TransportMode `json:"transport_mode,omitempty"`
	HasDebt       *bool         `json:"has_debt"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// ParseIndicatorType разбирает тип индикатора из строки запроса.
func ParseIndicatorType(value string) (IndicatorType, bool) {
	switch IndicatorType(value) {
	case IndicatorGas, IndicatorCPI, IndicatorInterestRate, IndicatorUnemployment:
		return IndicatorType(value), true
	default:
		return "", false
	}
}

// ChangePercent считает изменение в процентах; nil, если предыдущего значения нет или оно нулевое.
func ChangePercent(value float64, previous *float64) *float64 {
	if previous == nil || *previous == 0 {
		return nil
	}

	change := (value - *previous) / *previous * 100
	return &change
}

// WeekStart возвращает понедельник 00:00 UTC недели, в которую попадает t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}
