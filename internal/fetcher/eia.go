package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"example.com/cost-signal/backend/internal/models"
)

// EIAGasSource загружает среднюю розничную цену бензина в США (EIA API v2, недельный ряд).
type EIAGasSource struct {
	apiKey  string
	baseURL string
	series  string
	client  *resty.Client
}

type eiaResponse struct {
	Response struct {
		Data []struct {
			Period string          `json:"period"`
			Value  json.RawMessage `json:"value"`
		} `json:"data"`
	} `json:"response"`
	Error string `json:"error,omitempty"`
}

// NewEIAGasSource создает клиент EIA.
func NewEIAGasSource(apiKey, baseURL, series string, timeout time.Duration) *EIAGasSource {
	return &EIAGasSource{
		apiKey:  apiKey,
		baseURL: baseURL,
		series:  series,
		client:  newRestyClient(timeout),
	}
}

func (s *EIAGasSource) Indicator() models.IndicatorType {
	return models.IndicatorGas
}

// Latest возвращает цену за последнюю неделю и за предыдущую.
func (s *EIAGasSource) Latest(ctx context.Context) (Observation, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api_key":            s.apiKey,
			"frequency":          "weekly",
			"data[0]":            "value",
			"facets[series][]":   s.series,
			"sort[0][column]":    "period",
			"sort[0][direction]": "desc",
			"offset":             "0",
			"length":             "5",
		}).
		Get(s.baseURL + "/petroleum/pri/gnd/data/")
	if err != nil {
		return Observation{}, fmt.Errorf("eia request failed: %w", err)
	}
	if err := checkResponse(resp, "eia"); err != nil {
		return Observation{}, err
	}

	values, err := parseEIA(resp.Body())
	if err != nil {
		return Observation{}, err
	}

	return latestObservation(values)
}

func parseEIA(body []byte) ([]datedValue, error) {
	var payload eiaResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("eia: decode response: %w", err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("eia: %s", payload.Error)
	}

	values := make([]datedValue, 0, len(payload.Response.Data))
	for _, row := range payload.Response.Data {
		period, err := time.Parse("2006-01-02", row.Period)
		if err != nil {
			continue
		}

		// EIA отдает value то числом, то строкой.
		raw := string(bytes.Trim(row.Value, `"`))
		value, ok := parseValue(raw)
		if !ok {
			continue
		}

		values = append(values, datedValue{Date: period, Value: value})
	}

	return values, nil
}
