package usecase

import (
	"context"
	"fmt"

	"IndexPulse/internal/domain/models"
	domrepo "IndexPulse/internal/domain/repository"
	forecastsvc "IndexPulse/internal/services/forecast"
	applogger "IndexPulse/pkg/logger"
)

// ForecastUseCase orchestrates one prediction: history through the cache,
// sentiment through the cache, engine run, then the ledger write.
type ForecastUseCase struct {
	registry  *Registry
	history   *HistoryUseCase
	sentiment *SentimentUseCase
	engine    *forecastsvc.Engine
	ledger    domrepo.PredictionStore
	metrics   domrepo.Metrics
	l         *applogger.Logger

	defaultHorizon  int
	maxHorizon      int
	historyPeriod   string
	historyInterval string
}

type ForecastConfig struct {
	DefaultHorizonDays int
	MaxHorizonDays     int
	HistoryPeriod      string
	HistoryInterval    string
}

func NewForecastUseCase(
	registry *Registry,
	history *HistoryUseCase,
	sentiment *SentimentUseCase,
	engine *forecastsvc.Engine,
	ledger domrepo.PredictionStore,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	cfg ForecastConfig,
) *ForecastUseCase {
	if cfg.DefaultHorizonDays <= 0 {
		cfg.DefaultHorizonDays = 7
	}
	if cfg.MaxHorizonDays <= 0 {
		cfg.MaxHorizonDays = 30
	}
	if cfg.HistoryPeriod == "" {
		cfg.HistoryPeriod = "3mo"
	}
	if cfg.HistoryInterval == "" {
		cfg.HistoryInterval = "1d"
	}
	return &ForecastUseCase{
		registry:        registry,
		history:         history,
		sentiment:       sentiment,
		engine:          engine,
		ledger:          ledger,
		metrics:         metrics,
		l:               l,
		defaultHorizon:  cfg.DefaultHorizonDays,
		maxHorizon:      cfg.MaxHorizonDays,
		historyPeriod:   cfg.HistoryPeriod,
		historyInterval: cfg.HistoryInterval,
	}
}

func (uc *ForecastUseCase) Predict(ctx context.Context, indexID string, horizonDays int) (*models.Forecast, error) {
	idx, ok := uc.registry.Lookup(indexID)
	if !ok {
		return nil, fmt.Errorf("index %q: %w", indexID, ErrUnknownIndex)
	}
	if horizonDays <= 0 {
		horizonDays = uc.defaultHorizon
	}
	if horizonDays > uc.maxHorizon {
		horizonDays = uc.maxHorizon
	}

	history, _, err := uc.history.Series(ctx, idx, uc.historyPeriod, uc.historyInterval)
	if err != nil {
		return nil, err
	}

	// A dead sentiment pipeline degrades the forecast to technicals-only
	// rather than failing it.
	sent := models.SentimentSummary{Label: models.SentimentNeutral}
	if snap, err := uc.sentiment.GetSentiment(ctx, idx.ID); err != nil {
		if uc.l != nil {
			uc.l.Warn("sentiment unavailable, forecasting on technicals only",
				applogger.String("index_id", idx.ID),
				applogger.Error(err),
			)
		}
	} else {
		sent = snap.SentimentSummary
	}

	forecast, err := uc.engine.Forecast(idx, horizonDays, history, sent)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", idx.ID, err)
	}
	uc.metrics.RecordForecast(idx.ID, string(forecast.Direction))

	// The ledger write is best-effort: a forecast the caller already has
	// is not failed retroactively.
	if err := uc.ledger.Log(ctx, ledgerEntries(forecast)); err != nil {
		if uc.l != nil {
			uc.l.Warn("prediction ledger write failed",
				applogger.String("index_id", idx.ID),
				applogger.Int("entries", len(forecast.Predictions)),
				applogger.Error(err),
			)
		}
	}
	return forecast, nil
}

// ledgerEntries flattens a forecast into one Pending ledger row per
// horizon day.
func ledgerEntries(f *models.Forecast) []models.PredictionEntry {
	entries := make([]models.PredictionEntry, 0, len(f.Predictions))
	for _, p := range f.Predictions {
		changePct := 0.0
		if f.CurrentPrice != 0 {
			changePct = (p.PredictedClose - f.CurrentPrice) / f.CurrentPrice * 100
		}
		entries = append(entries, models.PredictionEntry{
			IndexID:            f.IndexID,
			PredictionDate:     f.PredictionDate,
			TargetDate:         p.TargetDate,
			HorizonDays:        f.HorizonDays,
			CurrentPrice:       f.CurrentPrice,
			PredictedPrice:     p.PredictedClose,
			PredictedDirection: f.Direction,
			PredictedChangePct: changePct,
			Confidence:         p.Confidence,
			Technical:          f.Factors.Technical,
			Sentiment:          f.Factors.Sentiment,
			CombinedSignal:     f.Factors.CombinedSignal,
			Status:             models.PredictionPending,
		})
	}
	return entries
}
