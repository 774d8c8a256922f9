package ai

import "time"

type IndicatorSnapshot struct {
	Indicator     string   `json:"indicator"`
	Value         float64  `json:"value"`
	PreviousValue *float64 `json:"previous_value,omitempty"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
	Status        string   `json:"status"`
}

type ExplainSignalInput struct {
	WeekStart     string              `json:"week_start,omitempty"`
	OverallStatus string              `json:"overall_status"`
	RiskCount     int                 `json:"risk_count"`
	Indicators    []IndicatorSnapshot `json:"indicators"`
	Draft         string              `json:"draft"`
}

// Exchange описывает одно обращение к модели для журнала.
type Exchange struct {
	RequestType  string
	Provider     string
	Model        string
	WeekStart    *time.Time
	Prompt       string
	RawResponse  []byte
	Success      bool
	ErrorMessage *string
}
