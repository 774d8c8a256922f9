package fetcher

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/go-resty/resty/v2"

	"example.com/cost-signal/backend/internal/models"
)

// FREDSource загружает ряд FRED в формате XML (ставка ФРС, безработица).
type FREDSource struct {
	indicator models.IndicatorType
	apiKey    string
	baseURL   string
	seriesID  string
	client    *resty.Client
}

// NewFREDSource создает клиент для одного ряда FRED.
func NewFREDSource(indicator models.IndicatorType, apiKey, baseURL, seriesID string, timeout time.Duration) *FREDSource {
	return &FREDSource{
		indicator: indicator,
		apiKey:    apiKey,
		baseURL:   baseURL,
		seriesID:  seriesID,
		client:    newRestyClient(timeout),
	}
}

func (s *FREDSource) Indicator() models.IndicatorType {
	return s.indicator
}

// Latest возвращает последнее и предыдущее наблюдения ряда.
func (s *FREDSource) Latest(ctx context.Context) (Observation, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"series_id":  s.seriesID,
			"api_key":    s.apiKey,
			"file_type":  "xml",
			"sort_order": "desc",
			"limit":      strconv.Itoa(6),
		}).
		Get(s.baseURL + "/series/observations")
	if err != nil {
		return Observation{}, fmt.Errorf("fred %s request failed: %w", s.seriesID, err)
	}
	if err := checkResponse(resp, "fred "+s.seriesID); err != nil {
		return Observation{}, err
	}

	values, err := parseFRED(resp.Body())
	if err != nil {
		return Observation{}, fmt.Errorf("fred %s: %w", s.seriesID, err)
	}

	return latestObservation(values)
}

func parseFRED(body []byte) ([]datedValue, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}

	if root := doc.Root(); root != nil && root.Tag == "error" {
		return nil, fmt.Errorf("api error: %s", root.SelectAttrValue("message", "unknown"))
	}

	observations := doc.FindElements("//observation")
	values := make([]datedValue, 0, len(observations))
	for _, el := range observations {
		date, err := time.Parse("2006-01-02", el.SelectAttrValue("date", ""))
		if err != nil {
			continue
		}

		// FRED помечает пропуски точкой.
		value, ok := parseValue(el.SelectAttrValue("value", "."))
		if !ok {
			continue
		}

		values = append(values, datedValue{Date: date, Value: value})
	}

	return values, nil
}
