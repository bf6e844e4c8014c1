package usecase

import (
	"context"
	"testing"
	"time"

	"IndexPulse/internal/domain/models"
	"IndexPulse/pkg/logger"
)

func TestKafkaClosesHandler_EvaluatesMatchingRows(t *testing.T) {
	uc, ledger, _, _, asOf := evalFixtures(t)
	ctx := context.Background()
	if err := ledger.Log(ctx, []models.PredictionEntry{{
		IndexID:            "sp500",
		PredictionDate:     asOf.AddDate(0, 0, -2),
		TargetDate:         time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		CurrentPrice:       100,
		PredictedPrice:     101,
		PredictedDirection: models.DirectionBullish,
	}}); err != nil {
		t.Fatalf("log: %v", err)
	}

	h := NewKafkaClosesHandler("market.closes", uc)
	if h.Topic() != "market.closes" {
		t.Errorf("topic: got %q", h.Topic())
	}
	msg := []byte(`{"index_id":"sp500","date":"2026-03-02","close":102.5}`)
	if err := h.Handle(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if ledger.rows[0].Status != models.PredictionEvaluated {
		t.Fatal("row should be evaluated from the feed message")
	}
	if ledger.rows[0].Outcome.ActualPrice != 102.5 {
		t.Errorf("actual price: got %v", ledger.rows[0].Outcome.ActualPrice)
	}
}

func TestKafkaClosesHandler_RejectsMalformed(t *testing.T) {
	history := NewHistoryUseCase(testRegistry(), newFakeMarketStore(), &fakeSource{}, newFakeMetrics(), logger.Nop())
	uc := NewEvaluatorUseCase(testRegistry(), history, &fakePredictionStore{}, nil, newFakeMetrics(), logger.Nop())
	h := NewKafkaClosesHandler("market.closes", uc)

	for _, msg := range []string{
		`not json`,
		`{"index_id":"","date":"2026-03-02","close":1}`,
		`{"index_id":"sp500","date":"bad-date","close":1}`,
		`{"index_id":"sp500","date":"2026-03-02","close":0}`,
	} {
		if err := h.Handle(context.Background(), []byte(msg)); err == nil {
			t.Errorf("expected error for %q", msg)
		}
	}
}
