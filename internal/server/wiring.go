package server

import (
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/cost-signal/backend/internal/ai"
	"example.com/cost-signal/backend/internal/config"
	"example.com/cost-signal/backend/internal/fetcher"
	"example.com/cost-signal/backend/internal/models"
	"example.com/cost-signal/backend/internal/repository"
	"example.com/cost-signal/backend/internal/signals"
)

// NewSources создает источники всех четырех индикаторов.
func NewSources(cfg config.SourcesConfig) []fetcher.Source {
	return []fetcher.Source{
		fetcher.NewEIAGasSource(cfg.EIAAPIKey, cfg.EIABaseURL, cfg.EIAGasSeries, cfg.Timeout),
		fetcher.NewBLSCPISource(cfg.BLSAPIKey, cfg.BLSBaseURL, cfg.BLSCPISeries, cfg.Timeout),
		fetcher.NewFREDSource(models.IndicatorInterestRate, cfg.FREDAPIKey, cfg.FREDBaseURL, cfg.InterestRateSeries, cfg.Timeout),
		fetcher.NewFREDSource(models.IndicatorUnemployment, cfg.FREDAPIKey, cfg.FREDBaseURL, cfg.UnemploymentSeries, cfg.Timeout),
	}
}

// NewExplainer возвращает AI-сервис объяснений или nil, если ключ не задан.
func NewExplainer(cfg config.AIConfig, recorder ai.Recorder, logger *slog.Logger) signals.Explainer {
	if !cfg.Enabled() {
		return nil
	}

	var client ai.Client
	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		client = ai.NewGeminiClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, cfg.MaxOutputTokens)
	default:
		client = ai.NewGroqClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, cfg.MaxOutputTokens)
	}

	return ai.NewService(client, cfg.Provider, cfg.Model, recorder, logger)
}

// NewSignalService собирает недельный конвейер поверх Postgres. broadcaster может быть nil.
func NewSignalService(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool, broadcaster signals.Broadcaster) *signals.Service {
	explainer := NewExplainer(cfg.AI, repository.NewAIRepository(db), logger)

	service := signals.NewService(
		NewSources(cfg.Sources),
		repository.NewIndicatorRepository(db),
		repository.NewSignalRepository(db),
		explainer,
		broadcaster,
		logger,
	)
	service.SetRunTimeout(cfg.Scheduler.RunTimeout)

	return service
}
