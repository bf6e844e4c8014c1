package usecase

import (
	"context"
	"fmt"

	"IndexPulse/internal/domain/models"
	applogger "IndexPulse/pkg/logger"
)

// SummaryUseCase assembles the detailed single-index view from the quote
// cache and the daily series.
type SummaryUseCase struct {
	registry *Registry
	quotes   *QuoteUseCase
	history  *HistoryUseCase
	l        *applogger.Logger
}

func NewSummaryUseCase(registry *Registry, quotes *QuoteUseCase, history *HistoryUseCase, l *applogger.Logger) *SummaryUseCase {
	return &SummaryUseCase{registry: registry, quotes: quotes, history: history, l: l}
}

// GetSummary returns registry metadata, the live quote and moving
// averages for one index. Missing daily history degrades the averages
// to zero instead of failing the summary.
func (uc *SummaryUseCase) GetSummary(ctx context.Context, indexID string) (*models.IndexSummary, error) {
	idx, ok := uc.registry.Lookup(indexID)
	if !ok {
		return nil, fmt.Errorf("index %q: %w", indexID, ErrUnknownIndex)
	}

	q, err := uc.quotes.GetQuote(ctx, idx.ID)
	if err != nil {
		return nil, err
	}

	s := &models.IndexSummary{
		Index:            idx,
		CurrentPrice:     q.Price,
		PreviousClose:    q.PreviousClose,
		Change:           q.Change,
		ChangePercent:    q.ChangePercent,
		Volume:           q.Volume,
		DayHigh:          q.DayHigh,
		DayLow:           q.DayLow,
		FiftyTwoWeekHigh: q.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  q.FiftyTwoWeekLow,
		UpdatedAt:        q.UpdatedAt,
	}

	points, _, err := uc.history.Series(ctx, idx, "1y", "1d")
	if err != nil {
		if uc.l != nil {
			uc.l.Warn("summary without moving averages",
				applogger.String("index_id", idx.ID),
				applogger.Error(err),
			)
		}
		return s, nil
	}
	s.FiftyDayAvg = trailingAverage(points, 50)
	s.TwoHundredDayAvg = trailingAverage(points, 200)
	return s, nil
}

// trailingAverage is the mean close of the last n points, or of all of
// them when fewer are available.
func trailingAverage(points []models.TimeSeriesPoint, n int) float64 {
	if len(points) == 0 {
		return 0
	}
	if n > len(points) {
		n = len(points)
	}
	sum := 0.0
	for _, p := range points[len(points)-n:] {
		sum += p.Close
	}
	return sum / float64(n)
}
