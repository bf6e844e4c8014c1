package repository

import (
	"context"
	"time"

	"IndexPulse/internal/domain/models"
)

// MarketStore owns the perishable cache tables: series generations, quote
// snapshots, and sentiment history. All freshness decisions live behind it.
type MarketStore interface {
	// ReadSeries returns the newest fresh generation for the key, or
	// ok=false on a miss (absent or stale).
	ReadSeries(ctx context.Context, indexID, period, interval string) ([]models.TimeSeriesPoint, bool, error)
	// WriteSeries inserts one new generation atomically and prunes old
	// generations beyond MaxSeriesGenerations.
	WriteSeries(ctx context.Context, indexID, symbol, period, interval string, points []models.TimeSeriesPoint) error

	// ReadQuote returns the live quote row if fresh.
	ReadQuote(ctx context.Context, indexID string) (*models.Quote, bool, error)
	// WriteQuote upserts the single live quote row for an index.
	WriteQuote(ctx context.Context, q *models.Quote) error

	// ReadSentiment returns the newest sentiment snapshot if fresh.
	ReadSentiment(ctx context.Context, indexID string) (*models.SentimentSnapshot, bool, error)
	// WriteSentiment appends a snapshot; history is never overwritten.
	WriteSentiment(ctx context.Context, snap *models.SentimentSnapshot) error
	// SentimentTrend lists snapshots since a point in time, oldest first.
	SentimentTrend(ctx context.Context, indexID string, since time.Time) ([]models.SentimentTrendPoint, error)
}

// PredictionStore owns the prediction ledger.
type PredictionStore interface {
	// Log inserts the per-day entries of one forecast in one transaction.
	Log(ctx context.Context, entries []models.PredictionEntry) error
	// PendingDue lists Pending entries whose target date is not after asOf.
	PendingDue(ctx context.Context, indexID string, asOf time.Time) ([]models.PredictionEntry, error)
	// MarkEvaluated applies the Pending->Evaluated transition. It only
	// touches rows still missing an actual price, so repeated calls for
	// the same entry are no-ops; it reports whether the row transitioned.
	MarkEvaluated(ctx context.Context, id int64, outcome models.PredictionOutcome) (bool, error)
	// History lists entries made since a point in time, newest first.
	History(ctx context.Context, indexID string, since time.Time, limit int) ([]models.PredictionEntry, error)
	// AccuracyStats aggregates evaluated entries; ok=false when none exist.
	AccuracyStats(ctx context.Context, indexID string) (*models.AccuracyStats, bool, error)
}

// Metrics abstracts the Prometheus recorder for the domain layer.
type Metrics interface {
	RecordCacheHit(resource string)
	RecordCacheMiss(resource string)
	RecordUpstreamFetch(source, result string)
	RecordForecast(indexID, direction string)
	RecordEvaluation(indexID string, correct bool)
	RecordLastPrice(indexID string, price float64)
	RecordLatency(op string, seconds float64)
}
