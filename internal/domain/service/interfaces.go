package service

import (
	"context"

	"IndexPulse/internal/domain/models"
)

// MarketDataSource fetches raw bars and quotes from an upstream provider.
// It may fail or return empty; cache writes happen only on non-empty
// success.
type MarketDataSource interface {
	FetchSeries(ctx context.Context, symbol, period, interval string) ([]models.TimeSeriesPoint, error)
	FetchQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// NewsSource fetches recent articles for a query. Implementations may fall
// back to synthetic articles when the upstream is unavailable.
type NewsSource interface {
	Fetch(ctx context.Context, query string) ([]models.Article, error)
}

// SentimentClassifier labels one text. It is a black box and potentially
// slow; callers decide about caching and batching.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (models.SentimentLabel, float64, error)
}

// QuoteStream is an optional push feed of live quote updates.
type QuoteStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Quote, <-chan error)
	Close() error
}
