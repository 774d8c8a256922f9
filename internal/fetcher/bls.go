package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"example.com/cost-signal/backend/internal/models"
)

const blsSucceeded = "REQUEST_SUCCEEDED"

// BLSCPISource загружает индекс потребительских цен (BLS API v2, месячный ряд).
type BLSCPISource struct {
	apiKey  string
	baseURL string
	series  string
	client  *resty.Client
	now     func() time.Time
}

type blsRequest struct {
	SeriesID        []string `json:"seriesid"`
	StartYear       string   `json:"startyear"`
	EndYear         string   `json:"endyear"`
	RegistrationKey string   `json:"registrationkey,omitempty"`
}

type blsResponse struct {
	Status  string   `json:"status"`
	Message []string `json:"message"`
	Results struct {
		Series []struct {
			SeriesID string `json:"seriesID"`
			Data     []struct {
				Year   string `json:"year"`
				Period string `json:"period"`
				Value  string `json:"value"`
			} `json:"data"`
		} `json:"series"`
	} `json:"Results"`
}

// NewBLSCPISource создает клиент BLS.
func NewBLSCPISource(apiKey, baseURL, series string, timeout time.Duration) *BLSCPISource {
	return &BLSCPISource{
		apiKey:  apiKey,
		baseURL: baseURL,
		series:  series,
		client:  newRestyClient(timeout),
		now:     time.Now,
	}
}

func (s *BLSCPISource) Indicator() models.IndicatorType {
	return models.IndicatorCPI
}

// Latest возвращает индекс за последний опубликованный месяц и за предыдущий.
func (s *BLSCPISource) Latest(ctx context.Context) (Observation, error) {
	year := s.now().UTC().Year()
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(blsRequest{
			SeriesID:        []string{s.series},
			StartYear:       strconv.Itoa(year - 1),
			EndYear:         strconv.Itoa(year),
			RegistrationKey: s.apiKey,
		}).
		Post(s.baseURL + "/timeseries/data/")
	if err != nil {
		return Observation{}, fmt.Errorf("bls request failed: %w", err)
	}
	if err := checkResponse(resp, "bls"); err != nil {
		return Observation{}, err
	}

	values, err := parseBLS(resp.Body())
	if err != nil {
		return Observation{}, err
	}

	return latestObservation(values)
}

func parseBLS(body []byte) ([]datedValue, error) {
	var payload blsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("bls: decode response: %w", err)
	}
	if payload.Status != blsSucceeded {
		return nil, fmt.Errorf("bls: %s: %s", payload.Status, strings.Join(payload.Message, "; "))
	}
	if len(payload.Results.Series) == 0 {
		return nil, ErrNoObservations
	}

	data := payload.Results.Series[0].Data
	values := make([]datedValue, 0, len(data))
	for _, row := range data {
		// M13 содержит среднегодовое значение, а не месяц.
		if !strings.HasPrefix(row.Period, "M") || row.Period == "M13" {
			continue
		}

		date, err := time.Parse("2006-01", row.Year+"-"+strings.TrimPrefix(row.Period, "M"))
		if err != nil {
			continue
		}

		value, ok := parseValue(row.Value)
		if !ok {
			continue
		}

		values = append(values, datedValue{Date: date, Value: value})
	}

	return values, nil
}
