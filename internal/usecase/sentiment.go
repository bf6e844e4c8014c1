package usecase

import (
	"context"
	"fmt"
	"time"

	"IndexPulse/internal/domain/models"
	domrepo "IndexPulse/internal/domain/repository"
	sentimentsvc "IndexPulse/internal/services/sentiment"
	applogger "IndexPulse/pkg/logger"
)

// SentimentUseCase serves sentiment snapshots through the TTL cache.
// Snapshots are append-only; a fresh one within the window short-circuits
// the analyzer.
type SentimentUseCase struct {
	registry *Registry
	store    domrepo.MarketStore
	analyzer *sentimentsvc.Analyzer
	metrics  domrepo.Metrics
	l        *applogger.Logger
	now      func() time.Time
}

func NewSentimentUseCase(registry *Registry, store domrepo.MarketStore, analyzer *sentimentsvc.Analyzer, metrics domrepo.Metrics, l *applogger.Logger) *SentimentUseCase {
	return &SentimentUseCase{
		registry: registry,
		store:    store,
		analyzer: analyzer,
		metrics:  metrics,
		l:        l,
		now:      time.Now,
	}
}

// SetClock overrides the trend-window clock.
func (uc *SentimentUseCase) SetClock(now func() time.Time) { uc.now = now }

func (uc *SentimentUseCase) GetSentiment(ctx context.Context, indexID string) (*models.SentimentSnapshot, error) {
	idx, ok := uc.registry.Lookup(indexID)
	if !ok {
		return nil, fmt.Errorf("index %q: %w", indexID, ErrUnknownIndex)
	}

	cached, ok, err := uc.store.ReadSentiment(ctx, idx.ID)
	if err != nil {
		return nil, fmt.Errorf("read cached sentiment: %w", err)
	}
	if ok {
		uc.metrics.RecordCacheHit(string(domrepo.ResourceSentiment))
		return cached, nil
	}
	uc.metrics.RecordCacheMiss(string(domrepo.ResourceSentiment))

	snap, err := uc.analyzer.Analyze(ctx, idx)
	if err != nil {
		uc.metrics.RecordUpstreamFetch("sentiment", "error")
		return nil, fmt.Errorf("analyze sentiment for %s: %w", idx.ID, err)
	}
	uc.metrics.RecordUpstreamFetch("sentiment", "ok")

	if err := uc.store.WriteSentiment(ctx, snap); err != nil {
		if uc.l != nil {
			uc.l.Warn("sentiment snapshot write failed",
				applogger.String("index_id", idx.ID),
				applogger.Error(err),
			)
		}
	}
	return snap, nil
}

type SentimentTrendResult struct {
	Index  models.Index
	Days   int
	Points []models.SentimentTrendPoint
}

func (uc *SentimentUseCase) GetTrend(ctx context.Context, indexID string, days int) (*SentimentTrendResult, error) {
	idx, ok := uc.registry.Lookup(indexID)
	if !ok {
		return nil, fmt.Errorf("index %q: %w", indexID, ErrUnknownIndex)
	}
	if days <= 0 {
		days = 7
	}
	since := uc.now().AddDate(0, 0, -days)
	points, err := uc.store.SentimentTrend(ctx, idx.ID, since)
	if err != nil {
		return nil, fmt.Errorf("sentiment trend: %w", err)
	}
	return &SentimentTrendResult{Index: idx, Days: days, Points: points}, nil
}
