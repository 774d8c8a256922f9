package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"example.com/cost-signal/backend/internal/models"
)

const (
	requestTypeExplainSignal = "explain_signal"
	maxExplanationLength     = 600
	dateLayout               = "2006-01-02"
)

// Recorder сохраняет журнал обращений к модели.
type Recorder interface {
	RecordExchange(ctx context.Context, exchange Exchange) error
}

type Service struct {
	client   Client
	provider string
	model    string
	recorder Recorder
	logger   *slog.Logger
}

// NewService создает сервис работы с AI-клиентом. recorder может быть nil.
func NewService(client Client, provider, model string, recorder Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		client:   client,
		provider: provider,
		model:    model,
		recorder: recorder,
		logger:   logger,
	}
}

// ExplainSignal просит модель пересказать черновик объяснения недели простым языком.
func (s *Service) ExplainSignal(ctx context.Context, status models.OverallStatus, readings []models.IndicatorReading, draft string) (string, error) {
	input := buildExplainInput(status, readings, draft)

	prompt, err := buildExplainPrompt(input)
	if err != nil {
		return "", err
	}

	messages := []Message{
		{Role: "system", Content: "You are a calm personal-finance assistant. Answer in plain English without markdown."},
		{Role: "user", Content: prompt},
	}

	content, raw, err := s.client.Chat(ctx, messages)
	if err == nil {
		content, err = normalizeExplanation(content)
	}

	s.record(ctx, input, readings, prompt, raw, err)
	if err != nil {
		return "", err
	}

	return content, nil
}

func (s *Service) record(ctx context.Context, input ExplainSignalInput, readings []models.IndicatorReading, prompt string, raw []byte, chatErr error) {
	if s.recorder == nil {
		return
	}

	exchange := Exchange{
		RequestType: requestTypeExplainSignal,
		Provider:    s.provider,
		Model:       s.model,
		Prompt:      prompt,
		RawResponse: raw,
		Success:     chatErr == nil,
	}
	if len(readings) > 0 {
		week := readings[0].WeekStart
		exchange.WeekStart = &week
	}
	if chatErr != nil {
		message := chatErr.Error()
		exchange.ErrorMessage = &message
	}

	if err := s.recorder.RecordExchange(ctx, exchange); err != nil {
		s.logger.Warn("ai exchange not recorded",
			slog.String("request_type", requestTypeExplainSignal),
			slog.String("overall_status", input.OverallStatus),
			slog.String("error", err.Error()),
		)
	}
}

func buildExplainInput(status models.OverallStatus, readings []models.IndicatorReading, draft string) ExplainSignalInput {
	input := ExplainSignalInput{
		OverallStatus: string(status),
		Indicators:    make([]IndicatorSnapshot, 0, len(readings)),
		Draft:         draft,
	}

	for _, reading := range readings {
		if input.WeekStart == "" && !reading.WeekStart.IsZero() {
			input.WeekStart = reading.WeekStart.Format(dateLayout)
		}
		if reading.Status == models.StatusRisk {
			input.RiskCount++
		}
		input.Indicators = append(input.Indicators, IndicatorSnapshot{
			Indicator:     string(reading.IndicatorType),
			Value:         reading.Value,
			PreviousValue: reading.PreviousValue,
			ChangePercent: reading.ChangePercent,
			Status:        string(reading.Status),
		})
	}

	return input
}

func buildExplainPrompt(input ExplainSignalInput) (string, error) {
	payload, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`Rewrite the weekly cost-of-living signal for a household.

Requirements:
- Exactly two sentences, at most 60 words.
- First sentence: what moved this week and whether it is a risk.
- Second sentence: one practical thing to watch next week.
- Keep every number from the input as is; do not invent figures.
- No markdown, no lists, no quotes.

Input:
%s`, string(payload))

	return prompt, nil
}

// normalizeExplanation снимает обертки, которые модели иногда добавляют к тексту.
func normalizeExplanation(content string) (string, error) {
	text := strings.TrimSpace(content)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	text = strings.Trim(text, "\"'")
	text = strings.Join(strings.Fields(text), " ")

	if text == "" {
		return "", errors.New("ai explanation is empty")
	}
	if len(text) > maxExplanationLength {
		return "", errors.New("ai explanation is too long")
	}

	return text, nil
}
