package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"IndexPulse/internal/domain/models"
	"IndexPulse/pkg/logger"
)

func summaryFixtures(store *fakeMarketStore, source *fakeSource) *SummaryUseCase {
	metrics := newFakeMetrics()
	quotes := NewQuoteUseCase(testRegistry(), store, source, metrics, logger.Nop())
	history := NewHistoryUseCase(testRegistry(), store, source, metrics, logger.Nop())
	return NewSummaryUseCase(testRegistry(), quotes, history, logger.Nop())
}

func TestGetSummary_CombinesQuoteAndMovingAverages(t *testing.T) {
	store := newFakeMarketStore()
	store.quotes["sp500"] = &models.Quote{
		IndexID:       "sp500",
		Symbol:        "^GSPC",
		Price:         5100,
		PreviousClose: 5050,
		Change:        50,
		ChangePercent: 0.99,
		DayHigh:       5120,
		DayLow:        5040,
	}
	start := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	store.series[seriesKey("sp500", "1y", "1d")] = dailyPoints(60, 100, start)

	uc := summaryFixtures(store, &fakeSource{})
	got, err := uc.GetSummary(context.Background(), "sp500")
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if got.Name != "S&P 500" || got.Symbol != "^GSPC" {
		t.Errorf("registry metadata missing: %+v", got.Index)
	}
	if got.CurrentPrice != 5100 || got.PreviousClose != 5050 {
		t.Errorf("quote fields: price=%v prev=%v", got.CurrentPrice, got.PreviousClose)
	}
	// Closes run 100..159: last 50 average 134.5, all 60 average 129.5.
	if got.FiftyDayAvg != 134.5 {
		t.Errorf("50-day average: got %v want 134.5", got.FiftyDayAvg)
	}
	if got.TwoHundredDayAvg != 129.5 {
		t.Errorf("200-day average over short history: got %v want 129.5", got.TwoHundredDayAvg)
	}
}

func TestGetSummary_DegradesWithoutHistory(t *testing.T) {
	store := newFakeMarketStore()
	store.quotes["nifty50"] = &models.Quote{IndexID: "nifty50", Symbol: "^NSEI", Price: 22000}

	uc := summaryFixtures(store, &fakeSource{err: errors.New("rate limited")})
	got, err := uc.GetSummary(context.Background(), "nifty50")
	if err != nil {
		t.Fatalf("missing history must not fail the summary: %v", err)
	}
	if got.FiftyDayAvg != 0 || got.TwoHundredDayAvg != 0 {
		t.Errorf("averages should degrade to zero, got %v / %v", got.FiftyDayAvg, got.TwoHundredDayAvg)
	}
}

func TestGetSummary_UnknownIndex(t *testing.T) {
	uc := summaryFixtures(newFakeMarketStore(), &fakeSource{})
	if _, err := uc.GetSummary(context.Background(), "nope"); !errors.Is(err, ErrUnknownIndex) {
		t.Fatalf("expected ErrUnknownIndex, got %v", err)
	}
}

func TestGetSummary_QuoteFailureFails(t *testing.T) {
	uc := summaryFixtures(newFakeMarketStore(), &fakeSource{err: errors.New("upstream down")})
	if _, err := uc.GetSummary(context.Background(), "sp500"); err == nil {
		t.Fatal("a summary without a quote is an error")
	}
}
