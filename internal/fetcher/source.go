package fetcher

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"example.com/cost-signal/backend/internal/models"
)

const userAgent = "cost-signal/1.0"

var ErrNoObservations = errors.New("no observations returned")

// Observation хранит последнее значение ряда и предыдущее значение того же ряда.
type Observation struct {
	Value         float64
	PreviousValue *float64
	ObservedAt    time.Time
}

// Source загружает последнее наблюдение одного индикатора.
type Source interface {
	Indicator() models.IndicatorType
	Latest(ctx context.Context) (Observation, error)
}

type datedValue struct {
	Date  time.Time
	Value float64
}

func newRestyClient(timeout time.Duration) *resty.Client {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(2)
	client.SetRetryWaitTime(500 * time.Millisecond)
	client.SetHeader("User-Agent", userAgent)
	return client
}

// latestObservation берет два самых свежих значения; values должны идти от свежих к старым.
func latestObservation(values []datedValue) (Observation, error) {
	if len(values) == 0 {
		return Observation{}, ErrNoObservations
	}

	observation := Observation{Value: values[0].Value, ObservedAt: values[0].Date}
	if len(values) > 1 {
		previous := values[1].Value
		observation.PreviousValue = &previous
	}

	return observation, nil
}

// parseValue разбирает числовое значение ряда; "." и "-" обозначают пропуск.
func parseValue(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "." || trimmed == "-" {
		return 0, false
	}

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}

	return value, true
}

func checkResponse(resp *resty.Response, source string) error {
	if resp.IsError() {
		return fmt.Errorf("%s: unexpected status code: %d", source, resp.StatusCode())
	}
	return nil
}
