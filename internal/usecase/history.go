package usecase

import (
	"context"
	"fmt"

	"IndexPulse/internal/domain/models"
	domrepo "IndexPulse/internal/domain/repository"
	domservice "IndexPulse/internal/domain/service"
	applogger "IndexPulse/pkg/logger"
)

// HistoryUseCase serves price series through the TTL cache: fresh cache
// generations are returned as-is, anything else falls through to the
// upstream and refills the cache on non-empty success.
type HistoryUseCase struct {
	registry *Registry
	store    domrepo.MarketStore
	source   domservice.MarketDataSource
	metrics  domrepo.Metrics
	l        *applogger.Logger
}

func NewHistoryUseCase(registry *Registry, store domrepo.MarketStore, source domservice.MarketDataSource, metrics domrepo.Metrics, l *applogger.Logger) *HistoryUseCase {
	return &HistoryUseCase{registry: registry, store: store, source: source, metrics: metrics, l: l}
}

type GetHistoryParams struct {
	IndexID  string
	Period   string
	Interval string
}

type GetHistoryResult struct {
	Index         models.Index
	Period        string
	Interval      string
	Points        []models.TimeSeriesPoint
	CurrentPrice  float64
	ChangePercent float64
	FromCache     bool
}

func (uc *HistoryUseCase) GetHistory(ctx context.Context, p GetHistoryParams) (*GetHistoryResult, error) {
	idx, ok := uc.registry.Lookup(p.IndexID)
	if !ok {
		return nil, fmt.Errorf("index %q: %w", p.IndexID, ErrUnknownIndex)
	}

	points, fromCache, err := uc.Series(ctx, idx, p.Period, p.Interval)
	if err != nil {
		return nil, err
	}

	result := &GetHistoryResult{
		Index:     idx,
		Period:    p.Period,
		Interval:  p.Interval,
		Points:    points,
		FromCache: fromCache,
	}
	last := points[len(points)-1]
	result.CurrentPrice = last.Close
	if len(points) > 1 {
		prev := points[len(points)-2].Close
		if prev != 0 {
			result.ChangePercent = (last.Close - prev) / prev * 100
		}
	}
	return result, nil
}

// Series returns a fresh series for the index, reading through the cache.
// It is the shared read path for the history endpoint, the forecaster and
// the evaluator.
func (uc *HistoryUseCase) Series(ctx context.Context, idx models.Index, period, interval string) ([]models.TimeSeriesPoint, bool, error) {
	class := string(domrepo.SeriesClass(interval))

	cached, ok, err := uc.store.ReadSeries(ctx, idx.ID, period, interval)
	if err != nil {
		return nil, false, fmt.Errorf("read cached series: %w", err)
	}
	// An empty batch is never a usable hit, whatever the store claims.
	if ok && len(cached) > 0 {
		uc.metrics.RecordCacheHit(class)
		return cached, true, nil
	}
	uc.metrics.RecordCacheMiss(class)

	points, err := uc.source.FetchSeries(ctx, idx.Symbol, period, interval)
	if err != nil {
		uc.metrics.RecordUpstreamFetch("market_data", "error")
		return nil, false, fmt.Errorf("fetch series for %s: %w", idx.Symbol, err)
	}
	if len(points) == 0 {
		uc.metrics.RecordUpstreamFetch("market_data", "empty")
		return nil, false, fmt.Errorf("series for %s %s/%s: %w", idx.ID, period, interval, ErrNoData)
	}
	uc.metrics.RecordUpstreamFetch("market_data", "ok")

	// A failed cache refill must not fail the request that fetched good
	// data.
	if err := uc.store.WriteSeries(ctx, idx.ID, idx.Symbol, period, interval, points); err != nil {
		if uc.l != nil {
			uc.l.Warn("series cache refill failed",
				applogger.String("index_id", idx.ID),
				applogger.String("period", period),
				applogger.String("interval", interval),
				applogger.Error(err),
			)
		}
	}
	return points, false, nil
}
