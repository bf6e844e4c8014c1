package usecase

import (
	"context"
	"fmt"

	"IndexPulse/internal/domain/models"
	domrepo "IndexPulse/internal/domain/repository"
	domservice "IndexPulse/internal/domain/service"
	applogger "IndexPulse/pkg/logger"
)

// QuoteUseCase serves live quote snapshots through the TTL cache and
// applies push updates from the quote stream.
type QuoteUseCase struct {
	registry *Registry
	store    domrepo.MarketStore
	source   domservice.MarketDataSource
	metrics  domrepo.Metrics
	l        *applogger.Logger
}

func NewQuoteUseCase(registry *Registry, store domrepo.MarketStore, source domservice.MarketDataSource, metrics domrepo.Metrics, l *applogger.Logger) *QuoteUseCase {
	return &QuoteUseCase{registry: registry, store: store, source: source, metrics: metrics, l: l}
}

func (uc *QuoteUseCase) GetQuote(ctx context.Context, indexID string) (*models.Quote, error) {
	idx, ok := uc.registry.Lookup(indexID)
	if !ok {
		return nil, fmt.Errorf("index %q: %w", indexID, ErrUnknownIndex)
	}

	cached, ok, err := uc.store.ReadQuote(ctx, idx.ID)
	if err != nil {
		return nil, fmt.Errorf("read cached quote: %w", err)
	}
	if ok {
		uc.metrics.RecordCacheHit(string(domrepo.ResourceQuote))
		return cached, nil
	}
	uc.metrics.RecordCacheMiss(string(domrepo.ResourceQuote))

	q, err := uc.source.FetchQuote(ctx, idx.Symbol)
	if err != nil {
		uc.metrics.RecordUpstreamFetch("market_data", "error")
		return nil, fmt.Errorf("fetch quote for %s: %w", idx.Symbol, err)
	}
	if q == nil {
		uc.metrics.RecordUpstreamFetch("market_data", "empty")
		return nil, fmt.Errorf("quote for %s: %w", idx.ID, ErrNoData)
	}
	uc.metrics.RecordUpstreamFetch("market_data", "ok")

	q.IndexID = idx.ID
	uc.metrics.RecordLastPrice(idx.ID, q.Price)
	if err := uc.store.WriteQuote(ctx, q); err != nil {
		if uc.l != nil {
			uc.l.Warn("quote cache refill failed",
				applogger.String("index_id", idx.ID),
				applogger.Error(err),
			)
		}
	}
	return q, nil
}

// GetAll returns quotes for every registered index, skipping indices
// whose quote cannot be served right now.
func (uc *QuoteUseCase) GetAll(ctx context.Context) []*models.Quote {
	out := make([]*models.Quote, 0, len(uc.registry.List()))
	for _, idx := range uc.registry.List() {
		q, err := uc.GetQuote(ctx, idx.ID)
		if err != nil {
			if uc.l != nil {
				uc.l.Warn("bulk quote skipped",
					applogger.String("index_id", idx.ID),
					applogger.Error(err),
				)
			}
			continue
		}
		out = append(out, q)
	}
	return out
}

// RefreshAll fetches and upserts quotes for every registered index. Used
// by the scheduler; per-index failures are logged and skipped.
func (uc *QuoteUseCase) RefreshAll(ctx context.Context) {
	for _, idx := range uc.registry.List() {
		q, err := uc.source.FetchQuote(ctx, idx.Symbol)
		if err != nil || q == nil {
			uc.metrics.RecordUpstreamFetch("market_data", "error")
			if uc.l != nil {
				uc.l.Warn("quote refresh failed",
					applogger.String("index_id", idx.ID),
					applogger.Error(err),
				)
			}
			continue
		}
		uc.metrics.RecordUpstreamFetch("market_data", "ok")
		q.IndexID = idx.ID
		uc.metrics.RecordLastPrice(idx.ID, q.Price)
		if err := uc.store.WriteQuote(ctx, q); err != nil {
			if uc.l != nil {
				uc.l.Warn("quote refresh write failed",
					applogger.String("index_id", idx.ID),
					applogger.Error(err),
				)
			}
		}
	}
}

// ApplyStreamQuote upserts one push update from the streaming feed. The
// symbol is mapped back to a registered index; unknown symbols are
// dropped.
func (uc *QuoteUseCase) ApplyStreamQuote(ctx context.Context, q *models.Quote) error {
	if q == nil {
		return nil
	}
	if q.IndexID == "" {
		for _, idx := range uc.registry.List() {
			if idx.Symbol == q.Symbol {
				q.IndexID = idx.ID
				break
			}
		}
	}
	if q.IndexID == "" {
		return nil
	}
	uc.metrics.RecordLastPrice(q.IndexID, q.Price)
	if err := uc.store.WriteQuote(ctx, q); err != nil {
		return fmt.Errorf("apply stream quote: %w", err)
	}
	return nil
}
