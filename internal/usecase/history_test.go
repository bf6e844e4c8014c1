package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"IndexPulse/internal/domain/models"
	"IndexPulse/pkg/logger"
)

func TestGetHistory_CacheHitSkipsUpstream(t *testing.T) {
	store := newFakeMarketStore()
	source := &fakeSource{}
	metrics := newFakeMetrics()
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	store.series[seriesKey("sp500", "3mo", "1d")] = dailyPoints(10, 100, start)

	uc := NewHistoryUseCase(testRegistry(), store, source, metrics, logger.Nop())
	got, err := uc.GetHistory(context.Background(), GetHistoryParams{IndexID: "sp500", Period: "3mo", Interval: "1d"})
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if !got.FromCache {
		t.Error("expected cache hit")
	}
	if source.seriesCalls != 0 {
		t.Errorf("upstream should not be called on a hit, got %d calls", source.seriesCalls)
	}
	if metrics.hits["daily_data"] != 1 {
		t.Errorf("expected 1 daily cache hit, got %d", metrics.hits["daily_data"])
	}
	if got.CurrentPrice != 109 {
		t.Errorf("current price: got %v want 109", got.CurrentPrice)
	}
	// last two closes are 108 and 109
	wantChange := (109.0 - 108.0) / 108.0 * 100
	if got.ChangePercent != wantChange {
		t.Errorf("change percent: got %v want %v", got.ChangePercent, wantChange)
	}
}

func TestGetHistory_MissFetchesAndRefills(t *testing.T) {
	store := newFakeMarketStore()
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{points: dailyPoints(5, 200, start)}
	metrics := newFakeMetrics()

	uc := NewHistoryUseCase(testRegistry(), store, source, metrics, logger.Nop())
	got, err := uc.GetHistory(context.Background(), GetHistoryParams{IndexID: "nifty50", Period: "1mo", Interval: "1d"})
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if got.FromCache {
		t.Error("expected a miss")
	}
	if source.seriesCalls != 1 {
		t.Errorf("expected 1 upstream call, got %d", source.seriesCalls)
	}
	if store.seriesWrites != 1 {
		t.Errorf("expected 1 cache refill, got %d", store.seriesWrites)
	}
	if metrics.misses["daily_data"] != 1 || metrics.fetches["market_data/ok"] != 1 {
		t.Errorf("metrics not recorded: misses=%v fetches=%v", metrics.misses, metrics.fetches)
	}
}

func TestGetHistory_IntradayClassUsedForShortIntervals(t *testing.T) {
	store := newFakeMarketStore()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	source := &fakeSource{points: dailyPoints(5, 200, start)}
	metrics := newFakeMetrics()

	uc := NewHistoryUseCase(testRegistry(), store, source, metrics, logger.Nop())
	if _, err := uc.GetHistory(context.Background(), GetHistoryParams{IndexID: "sp500", Period: "1d", Interval: "15m"}); err != nil {
		t.Fatalf("get history: %v", err)
	}
	if metrics.misses["intraday_data"] != 1 {
		t.Errorf("expected intraday class for 15m, got misses=%v", metrics.misses)
	}
}

func TestGetHistory_EmptyUpstreamIsNoData(t *testing.T) {
	uc := NewHistoryUseCase(testRegistry(), newFakeMarketStore(), &fakeSource{}, newFakeMetrics(), logger.Nop())
	_, err := uc.GetHistory(context.Background(), GetHistoryParams{IndexID: "sp500", Period: "3mo", Interval: "1d"})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestGetHistory_UpstreamErrorDoesNotRefill(t *testing.T) {
	store := newFakeMarketStore()
	source := &fakeSource{err: errors.New("rate limited")}
	uc := NewHistoryUseCase(testRegistry(), store, source, newFakeMetrics(), logger.Nop())
	if _, err := uc.GetHistory(context.Background(), GetHistoryParams{IndexID: "sp500", Period: "3mo", Interval: "1d"}); err == nil {
		t.Fatal("expected error")
	}
	if store.seriesWrites != 0 {
		t.Errorf("failed fetch must not write the cache, got %d writes", store.seriesWrites)
	}
}

func TestGetHistory_UnknownIndex(t *testing.T) {
	uc := NewHistoryUseCase(testRegistry(), newFakeMarketStore(), &fakeSource{}, newFakeMetrics(), logger.Nop())
	_, err := uc.GetHistory(context.Background(), GetHistoryParams{IndexID: "nope", Period: "3mo", Interval: "1d"})
	if !errors.Is(err, ErrUnknownIndex) {
		t.Fatalf("expected ErrUnknownIndex, got %v", err)
	}
}

func TestGetHistory_CacheRefillFailureStillServes(t *testing.T) {
	store := newFakeMarketStore()
	store.writeErr = errors.New("disk full")
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{points: dailyPoints(5, 100, start)}

	uc := NewHistoryUseCase(testRegistry(), store, source, newFakeMetrics(), logger.Nop())
	got, err := uc.GetHistory(context.Background(), GetHistoryParams{IndexID: "sp500", Period: "3mo", Interval: "1d"})
	if err != nil {
		t.Fatalf("a failed refill must not fail the request: %v", err)
	}
	if len(got.Points) != 5 {
		t.Errorf("expected the fetched points, got %d", len(got.Points))
	}
}

func TestGetQuote_MissFetchesAndCaches(t *testing.T) {
	store := newFakeMarketStore()
	source := &fakeSource{quote: &models.Quote{Symbol: "^GSPC", Price: 5100}}
	metrics := newFakeMetrics()

	uc := NewQuoteUseCase(testRegistry(), store, source, metrics, logger.Nop())
	got, err := uc.GetQuote(context.Background(), "sp500")
	if err != nil {
		t.Fatalf("get quote: %v", err)
	}
	if got.IndexID != "sp500" {
		t.Errorf("index id should be stamped, got %q", got.IndexID)
	}
	if store.quoteWrites != 1 {
		t.Errorf("expected 1 quote write, got %d", store.quoteWrites)
	}

	// Second call hits the fake store.
	if _, err := uc.GetQuote(context.Background(), "sp500"); err != nil {
		t.Fatalf("second get quote: %v", err)
	}
	if source.quoteCalls != 1 {
		t.Errorf("expected 1 upstream quote call, got %d", source.quoteCalls)
	}
	if metrics.hits["quote"] != 1 {
		t.Errorf("expected 1 quote cache hit, got %d", metrics.hits["quote"])
	}
}

func TestRefreshAll_SkipsFailures(t *testing.T) {
	store := newFakeMarketStore()
	source := &fakeSource{quote: &models.Quote{Price: 1}}
	uc := NewQuoteUseCase(testRegistry(), store, source, newFakeMetrics(), logger.Nop())
	uc.RefreshAll(context.Background())
	if store.quoteWrites != 2 {
		t.Errorf("expected a write per registered index, got %d", store.quoteWrites)
	}
}

func TestApplyStreamQuote_MapsSymbolToIndex(t *testing.T) {
	store := newFakeMarketStore()
	uc := NewQuoteUseCase(testRegistry(), store, &fakeSource{}, newFakeMetrics(), logger.Nop())
	if err := uc.ApplyStreamQuote(context.Background(), &models.Quote{Symbol: "^NSEI", Price: 22000}); err != nil {
		t.Fatalf("apply stream quote: %v", err)
	}
	q, ok := store.quotes["nifty50"]
	if !ok || q.Price != 22000 {
		t.Fatalf("stream quote not upserted under mapped index: %+v", store.quotes)
	}

	// Unknown symbols are dropped silently.
	if err := uc.ApplyStreamQuote(context.Background(), &models.Quote{Symbol: "^UNKNOWN", Price: 1}); err != nil {
		t.Fatalf("unknown symbol should be dropped, got %v", err)
	}
	if len(store.quotes) != 1 {
		t.Errorf("unknown symbol should not be stored, got %d quotes", len(store.quotes))
	}
}

func TestGetHistory_EmptyCachedBatchIsAMiss(t *testing.T) {
	store := newFakeMarketStore()
	// A pinned generation pruned away between store queries surfaces as an
	// empty batch; it must fall through to the upstream, not be served.
	store.series[seriesKey("sp500", "3mo", "1d")] = []models.TimeSeriesPoint{}
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{points: dailyPoints(5, 100, start)}

	uc := NewHistoryUseCase(testRegistry(), store, source, newFakeMetrics(), logger.Nop())
	got, err := uc.GetHistory(context.Background(), GetHistoryParams{IndexID: "sp500", Period: "3mo", Interval: "1d"})
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if got.FromCache {
		t.Error("an empty batch must not count as a hit")
	}
	if source.seriesCalls != 1 {
		t.Errorf("expected 1 upstream call, got %d", source.seriesCalls)
	}
	if len(got.Points) != 5 {
		t.Errorf("expected the fetched points, got %d", len(got.Points))
	}
}

func TestGetAll_SkipsFailingIndices(t *testing.T) {
	store := newFakeMarketStore()
	// sp500 is served from the cache; nifty50 has no cached quote and the
	// upstream is down, so it drops out of the board.
	store.quotes["sp500"] = &models.Quote{IndexID: "sp500", Symbol: "^GSPC", Price: 5100}
	source := &fakeSource{err: errors.New("upstream down")}

	uc := NewQuoteUseCase(testRegistry(), store, source, newFakeMetrics(), logger.Nop())
	quotes := uc.GetAll(context.Background())
	if len(quotes) != 1 {
		t.Fatalf("expected 1 quote on the board, got %d", len(quotes))
	}
	if quotes[0].IndexID != "sp500" {
		t.Errorf("unexpected quote: %+v", quotes[0])
	}
}
