package usecase

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"IndexPulse/internal/domain/models"
	forecastsvc "IndexPulse/internal/services/forecast"
	sentimentsvc "IndexPulse/internal/services/sentiment"
	"IndexPulse/pkg/logger"
)

type failingNews struct{}

func (failingNews) Fetch(ctx context.Context, query string) ([]models.Article, error) {
	return nil, errors.New("news upstream down")
}

type neutralClassifier struct{}

func (neutralClassifier) Classify(ctx context.Context, text string) (models.SentimentLabel, float64, error) {
	return models.SentimentNeutral, 0.5, nil
}

func forecastFixtures(t *testing.T, store *fakeMarketStore, ledger *fakePredictionStore) (*ForecastUseCase, *fakeMetrics) {
	t.Helper()
	registry := testRegistry()
	metrics := newFakeMetrics()
	l := logger.Nop()
	history := NewHistoryUseCase(registry, store, &fakeSource{}, metrics, l)
	analyzer := sentimentsvc.NewAnalyzer(failingNews{}, neutralClassifier{}, nil, time.Minute, l)
	sentiment := NewSentimentUseCase(registry, store, analyzer, metrics, l)
	engine := forecastsvc.NewEngine(
		forecastsvc.WithClock(func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }),
		forecastsvc.WithRandSource(rand.NewSource(1)),
	)
	uc := NewForecastUseCase(registry, history, sentiment, engine, ledger, metrics, l, ForecastConfig{
		DefaultHorizonDays: 7,
		MaxHorizonDays:     30,
		HistoryPeriod:      "3mo",
		HistoryInterval:    "1d",
	})
	return uc, metrics
}

func TestPredict_LogsOneLedgerRowPerDay(t *testing.T) {
	store := newFakeMarketStore()
	store.series[seriesKey("sp500", "3mo", "1d")] = dailyPoints(40, 100, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
	snap := &models.SentimentSnapshot{IndexID: "sp500", Query: "q", AnalyzedAt: time.Now()}
	snap.Label = models.SentimentPositive
	snap.Score = 0.3
	store.sentiment["sp500"] = snap

	ledger := &fakePredictionStore{}
	uc, metrics := forecastFixtures(t, store, ledger)

	f, err := uc.Predict(context.Background(), "sp500", 7)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(f.Predictions) != 7 {
		t.Fatalf("expected 7 daily predictions, got %d", len(f.Predictions))
	}
	if f.SentimentScore != 0.3 {
		t.Errorf("sentiment score not threaded through: %v", f.SentimentScore)
	}
	if len(ledger.rows) != 7 {
		t.Fatalf("expected 7 ledger rows, got %d", len(ledger.rows))
	}
	for i, row := range ledger.rows {
		if row.Status != models.PredictionPending {
			t.Errorf("row %d should start pending", i)
		}
		if row.PredictedPrice != f.Predictions[i].PredictedClose {
			t.Errorf("row %d price mismatch", i)
		}
		if row.TargetDate != f.Predictions[i].TargetDate {
			t.Errorf("row %d target mismatch", i)
		}
	}
	if metrics.forecasts != 1 {
		t.Errorf("forecast metric not recorded: %d", metrics.forecasts)
	}
}

func TestPredict_HorizonDefaultsAndCap(t *testing.T) {
	store := newFakeMarketStore()
	store.series[seriesKey("sp500", "3mo", "1d")] = dailyPoints(40, 100, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
	uc, _ := forecastFixtures(t, store, &fakePredictionStore{})

	f, err := uc.Predict(context.Background(), "sp500", 0)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(f.Predictions) != 7 {
		t.Errorf("zero horizon should default to 7, got %d", len(f.Predictions))
	}

	f, err = uc.Predict(context.Background(), "sp500", 90)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(f.Predictions) != 30 {
		t.Errorf("horizon should cap at 30, got %d", len(f.Predictions))
	}
}

func TestPredict_SentimentFailureDegradesToNeutral(t *testing.T) {
	// No cached sentiment and the news source is down: the forecast
	// proceeds on technicals alone.
	store := newFakeMarketStore()
	store.series[seriesKey("sp500", "3mo", "1d")] = dailyPoints(40, 100, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
	uc, _ := forecastFixtures(t, store, &fakePredictionStore{})

	f, err := uc.Predict(context.Background(), "sp500", 7)
	if err != nil {
		t.Fatalf("predict should survive a dead sentiment pipeline: %v", err)
	}
	if f.OverallSentiment != models.SentimentNeutral {
		t.Errorf("expected neutral fallback, got %s", f.OverallSentiment)
	}
	if f.SentimentScore != 0 {
		t.Errorf("expected zero sentiment score, got %v", f.SentimentScore)
	}
}

func TestPredict_LedgerFailureIsSwallowed(t *testing.T) {
	store := newFakeMarketStore()
	store.series[seriesKey("sp500", "3mo", "1d")] = dailyPoints(40, 100, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
	ledger := &fakePredictionStore{logErr: errors.New("ledger down")}
	uc, _ := forecastFixtures(t, store, ledger)

	f, err := uc.Predict(context.Background(), "sp500", 7)
	if err != nil {
		t.Fatalf("a failed ledger write must not fail the forecast: %v", err)
	}
	if len(f.Predictions) != 7 {
		t.Errorf("forecast should be complete, got %d days", len(f.Predictions))
	}
}

func TestPredict_NoHistoryFails(t *testing.T) {
	uc, _ := forecastFixtures(t, newFakeMarketStore(), &fakePredictionStore{})
	if _, err := uc.Predict(context.Background(), "sp500", 7); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestPredict_UnknownIndex(t *testing.T) {
	uc, _ := forecastFixtures(t, newFakeMarketStore(), &fakePredictionStore{})
	if _, err := uc.Predict(context.Background(), "nope", 7); !errors.Is(err, ErrUnknownIndex) {
		t.Fatalf("expected ErrUnknownIndex, got %v", err)
	}
}
