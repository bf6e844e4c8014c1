package usecase

import (
	"context"
	"sync"
	"time"

	"IndexPulse/internal/domain/models"
)

// fakeMarketStore is an in-memory MarketStore with forced miss/error knobs.
type fakeMarketStore struct {
	mu        sync.Mutex
	series    map[string][]models.TimeSeriesPoint
	quotes    map[string]*models.Quote
	sentiment map[string]*models.SentimentSnapshot
	trend     []models.SentimentTrendPoint

	seriesWrites    int
	quoteWrites     int
	sentimentWrites int
	writeErr        error
}

func newFakeMarketStore() *fakeMarketStore {
	return &fakeMarketStore{
		series:    make(map[string][]models.TimeSeriesPoint),
		quotes:    make(map[string]*models.Quote),
		sentiment: make(map[string]*models.SentimentSnapshot),
	}
}

func seriesKey(indexID, period, interval string) string {
	return indexID + "|" + period + "|" + interval
}

func (f *fakeMarketStore) ReadSeries(ctx context.Context, indexID, period, interval string) ([]models.TimeSeriesPoint, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pts, ok := f.series[seriesKey(indexID, period, interval)]
	return pts, ok, nil
}

func (f *fakeMarketStore) WriteSeries(ctx context.Context, indexID, symbol, period, interval string, points []models.TimeSeriesPoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seriesWrites++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.series[seriesKey(indexID, period, interval)] = points
	return nil
}

func (f *fakeMarketStore) ReadQuote(ctx context.Context, indexID string) (*models.Quote, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quotes[indexID]
	return q, ok, nil
}

func (f *fakeMarketStore) WriteQuote(ctx context.Context, q *models.Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quoteWrites++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.quotes[q.IndexID] = q
	return nil
}

func (f *fakeMarketStore) ReadSentiment(ctx context.Context, indexID string) (*models.SentimentSnapshot, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sentiment[indexID]
	return s, ok, nil
}

func (f *fakeMarketStore) WriteSentiment(ctx context.Context, snap *models.SentimentSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentimentWrites++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.sentiment[snap.IndexID] = snap
	return nil
}

func (f *fakeMarketStore) SentimentTrend(ctx context.Context, indexID string, since time.Time) ([]models.SentimentTrendPoint, error) {
	return f.trend, nil
}

// fakePredictionStore holds ledger rows in a slice.
type fakePredictionStore struct {
	mu      sync.Mutex
	rows    []models.PredictionEntry
	nextID  int64
	logErr  error
	markErr error
}

func (f *fakePredictionStore) Log(ctx context.Context, entries []models.PredictionEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logErr != nil {
		return f.logErr
	}
	for _, e := range entries {
		f.nextID++
		e.ID = f.nextID
		e.Status = models.PredictionPending
		f.rows = append(f.rows, e)
	}
	return nil
}

func (f *fakePredictionStore) PendingDue(ctx context.Context, indexID string, asOf time.Time) ([]models.PredictionEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PredictionEntry
	for _, e := range f.rows {
		if e.IndexID == indexID && e.Status == models.PredictionPending && !e.TargetDate.After(asOf) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakePredictionStore) MarkEvaluated(ctx context.Context, id int64, outcome models.PredictionOutcome) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return false, f.markErr
	}
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].Status == models.PredictionPending {
			f.rows[i].Status = models.PredictionEvaluated
			out := outcome
			f.rows[i].Outcome = &out
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePredictionStore) History(ctx context.Context, indexID string, since time.Time, limit int) ([]models.PredictionEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PredictionEntry
	for i := len(f.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if f.rows[i].IndexID == indexID && !f.rows[i].PredictionDate.Before(since) {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

func (f *fakePredictionStore) AccuracyStats(ctx context.Context, indexID string) (*models.AccuracyStats, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &models.AccuracyStats{}
	var scoreSum float64
	for _, e := range f.rows {
		if e.IndexID != indexID || e.Status != models.PredictionEvaluated || !e.Outcome.Scored {
			continue
		}
		stats.Total++
		if e.Outcome.WasCorrect {
			stats.Correct++
		}
		scoreSum += e.Outcome.AccuracyScore
		if e.Outcome.EvaluatedAt.After(stats.LastEvaluated) {
			stats.LastEvaluated = e.Outcome.EvaluatedAt
		}
	}
	if stats.Total == 0 {
		return nil, false, nil
	}
	stats.DirectionAccuracyPct = float64(stats.Correct) / float64(stats.Total) * 100
	stats.PriceAccuracyPct = scoreSum / float64(stats.Total) * 100
	return stats, true, nil
}

// fakeSource is a scriptable MarketDataSource.
type fakeSource struct {
	seriesCalls int
	quoteCalls  int
	points      []models.TimeSeriesPoint
	quote       *models.Quote
	err         error
}

func (f *fakeSource) FetchSeries(ctx context.Context, symbol, period, interval string) ([]models.TimeSeriesPoint, error) {
	f.seriesCalls++
	return f.points, f.err
}

func (f *fakeSource) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	f.quoteCalls++
	return f.quote, f.err
}

// fakeMetrics counts recorder calls.
type fakeMetrics struct {
	mu          sync.Mutex
	hits        map[string]int
	misses      map[string]int
	fetches     map[string]int
	forecasts   int
	evaluations int
	correct     int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		hits:    make(map[string]int),
		misses:  make(map[string]int),
		fetches: make(map[string]int),
	}
}

func (m *fakeMetrics) RecordCacheHit(resource string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[resource]++
}

func (m *fakeMetrics) RecordCacheMiss(resource string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.misses[resource]++
}

func (m *fakeMetrics) RecordUpstreamFetch(source, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches[source+"/"+result]++
}

func (m *fakeMetrics) RecordForecast(indexID, direction string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forecasts++
}

func (m *fakeMetrics) RecordEvaluation(indexID string, correct bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluations++
	if correct {
		m.correct++
	}
}

func (m *fakeMetrics) RecordLastPrice(indexID string, price float64) {}
func (m *fakeMetrics) RecordLatency(op string, seconds float64)      {}

// fakePublisher records published outcomes and the batches they came in.
type fakePublisher struct {
	mu        sync.Mutex
	published []models.PredictionEntry
	batches   int
	err       error
}

func (p *fakePublisher) PublishOutcomes(ctx context.Context, entries []models.PredictionEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.batches++
	p.published = append(p.published, entries...)
	return nil
}

func testRegistry() *Registry {
	return NewRegistry([]models.Index{
		{ID: "sp500", Symbol: "^GSPC", Name: "S&P 500", Country: "US"},
		{ID: "nifty50", Symbol: "^NSEI", Name: "NIFTY 50", Country: "India"},
	})
}

func dailyPoints(n int, base float64, start time.Time) []models.TimeSeriesPoint {
	out := make([]models.TimeSeriesPoint, n)
	for i := range out {
		out[i] = models.TimeSeriesPoint{Date: start.AddDate(0, 0, i), Close: base + float64(i)}
	}
	return out
}
