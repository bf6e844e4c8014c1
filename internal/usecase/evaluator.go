package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"IndexPulse/internal/domain/models"
	domrepo "IndexPulse/internal/domain/repository"
	applogger "IndexPulse/pkg/logger"
	"IndexPulse/pkg/util"
)

// realizedDirectionThreshold is the percent move below which a realized
// outcome counts as neutral. Wider than the forecast threshold on
// purpose: realized noise is larger than signal noise.
const realizedDirectionThreshold = 0.5

// OutcomePublisher pushes evaluated predictions to downstream consumers.
// One call covers one evaluation pass, so a pass lands as a single batch.
type OutcomePublisher interface {
	PublishOutcomes(ctx context.Context, entries []models.PredictionEntry) error
}

// EvaluatorUseCase reconciles Pending ledger rows against realized close
// prices. Prices arrive either from fresh cached daily series (scheduler
// path) or from close-price feed messages (Kafka path); both funnel into
// EvaluateWithPrices.
type EvaluatorUseCase struct {
	registry  *Registry
	history   *HistoryUseCase
	ledger    domrepo.PredictionStore
	publisher OutcomePublisher
	metrics   domrepo.Metrics
	l         *applogger.Logger
	now       func() time.Time

	historyPeriod   string
	historyInterval string
}

func NewEvaluatorUseCase(
	registry *Registry,
	history *HistoryUseCase,
	ledger domrepo.PredictionStore,
	publisher OutcomePublisher,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *EvaluatorUseCase {
	return &EvaluatorUseCase{
		registry:        registry,
		history:         history,
		ledger:          ledger,
		publisher:       publisher,
		metrics:         metrics,
		l:               l,
		now:             time.Now,
		historyPeriod:   "3mo",
		historyInterval: "1d",
	}
}

// SetClock overrides the as-of clock.
func (uc *EvaluatorUseCase) SetClock(now func() time.Time) { uc.now = now }

// EvaluateIndex runs one evaluation pass for an index, sourcing actual
// closes from a fresh daily series. Returns the number of rows that
// transitioned.
func (uc *EvaluatorUseCase) EvaluateIndex(ctx context.Context, indexID string) (int, error) {
	idx, ok := uc.registry.Lookup(indexID)
	if !ok {
		return 0, fmt.Errorf("index %q: %w", indexID, ErrUnknownIndex)
	}

	points, _, err := uc.history.Series(ctx, idx, uc.historyPeriod, uc.historyInterval)
	if err != nil {
		return 0, err
	}
	closes := make(map[string]float64, len(points))
	for _, p := range points {
		closes[util.DayKey(p.Date)] = p.Close
	}
	return uc.EvaluateWithPrices(ctx, idx.ID, closes)
}

// EvaluateAll runs EvaluateIndex over the whole registry, skipping
// per-index failures.
func (uc *EvaluatorUseCase) EvaluateAll(ctx context.Context) {
	for _, idx := range uc.registry.List() {
		n, err := uc.EvaluateIndex(ctx, idx.ID)
		if err != nil {
			if uc.l != nil {
				uc.l.Warn("evaluation pass failed",
					applogger.String("index_id", idx.ID),
					applogger.Error(err),
				)
			}
			continue
		}
		if n > 0 && uc.l != nil {
			uc.l.Info("evaluation pass done",
				applogger.String("index_id", idx.ID),
				applogger.Int("evaluated", n),
			)
		}
	}
}

// EvaluateWithPrices reconciles pending rows against a map of closes
// keyed by UTC day. Rows whose target day has no close yet stay Pending.
func (uc *EvaluatorUseCase) EvaluateWithPrices(ctx context.Context, indexID string, closesByDay map[string]float64) (int, error) {
	// Feed messages may carry the id in any case; ledger rows are keyed
	// by the canonical one.
	if idx, ok := uc.registry.Lookup(indexID); ok {
		indexID = idx.ID
	}
	pending, err := uc.ledger.PendingDue(ctx, indexID, uc.now())
	if err != nil {
		return 0, fmt.Errorf("pending due: %w", err)
	}

	evaluated := 0
	var transitioned []models.PredictionEntry
	for _, e := range pending {
		actual, ok := closesByDay[util.DayKey(e.TargetDate)]
		if !ok || actual == 0 {
			continue
		}

		outcome := scoreOutcome(e, actual, uc.now())
		changed, err := uc.ledger.MarkEvaluated(ctx, e.ID, outcome)
		if err != nil {
			return evaluated, fmt.Errorf("mark evaluated %d: %w", e.ID, err)
		}
		if !changed {
			// Lost the race to another evaluator; the row already holds
			// its outcome.
			continue
		}
		evaluated++
		if outcome.Scored {
			uc.metrics.RecordEvaluation(indexID, outcome.WasCorrect)
		}

		o := outcome
		e.Status = models.PredictionEvaluated
		e.Outcome = &o
		transitioned = append(transitioned, e)
	}

	if uc.publisher != nil && len(transitioned) > 0 {
		if err := uc.publisher.PublishOutcomes(ctx, transitioned); err != nil && uc.l != nil {
			uc.l.Warn("outcome publish failed",
				applogger.String("index_id", indexID),
				applogger.Int("rows", len(transitioned)),
				applogger.Error(err),
			)
		}
	}
	return evaluated, nil
}

// Stats aggregates the evaluated rows for one index.
func (uc *EvaluatorUseCase) Stats(ctx context.Context, indexID string) (*models.AccuracyStats, error) {
	idx, ok := uc.registry.Lookup(indexID)
	if !ok {
		return nil, fmt.Errorf("index %q: %w", indexID, ErrUnknownIndex)
	}
	stats, ok, err := uc.ledger.AccuracyStats(ctx, idx.ID)
	if err != nil {
		return nil, fmt.Errorf("accuracy stats: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("index %q: %w", indexID, ErrNoEvaluations)
	}
	return stats, nil
}

// StatsAll aggregates accuracy across the whole registry. Indices with
// no evaluated rows are left out of the map; the overall aggregate sums
// the rest.
func (uc *EvaluatorUseCase) StatsAll(ctx context.Context) (*models.AccuracyRollup, error) {
	rollup := &models.AccuracyRollup{
		Indices: make(map[string]*models.AccuracyStats),
	}
	for _, idx := range uc.registry.List() {
		stats, ok, err := uc.ledger.AccuracyStats(ctx, idx.ID)
		if err != nil {
			return nil, fmt.Errorf("accuracy stats for %s: %w", idx.ID, err)
		}
		if !ok {
			continue
		}
		rollup.Indices[idx.ID] = stats
		rollup.Overall.Total += stats.Total
		rollup.Overall.Correct += stats.Correct
	}
	if rollup.Overall.Total > 0 {
		rollup.Overall.DirectionAccuracyPct =
			math.Round(float64(rollup.Overall.Correct)/float64(rollup.Overall.Total)*10000) / 100
	}
	return rollup, nil
}

type PredictionHistoryParams struct {
	IndexID string
	Days    int
	Limit   int
}

// History lists recent ledger rows, newest first.
func (uc *EvaluatorUseCase) History(ctx context.Context, p PredictionHistoryParams) ([]models.PredictionEntry, error) {
	idx, ok := uc.registry.Lookup(p.IndexID)
	if !ok {
		return nil, fmt.Errorf("index %q: %w", p.IndexID, ErrUnknownIndex)
	}
	if p.Days <= 0 {
		p.Days = 30
	}
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 100
	}
	since := uc.now().AddDate(0, 0, -p.Days)
	entries, err := uc.ledger.History(ctx, idx.ID, since, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("prediction history: %w", err)
	}
	return entries, nil
}

// scoreOutcome computes the realized side of one prediction.
func scoreOutcome(e models.PredictionEntry, actual float64, evaluatedAt time.Time) models.PredictionOutcome {
	outcome := models.PredictionOutcome{
		ActualPrice: actual,
		EvaluatedAt: evaluatedAt,
	}
	if e.CurrentPrice == 0 {
		// No entry price was recorded, so the realized move is undefined.
		// The row still transitions (it must not be retried) but carries
		// no verdict.
		return outcome
	}

	changePct := (actual - e.CurrentPrice) / e.CurrentPrice * 100

	direction := models.DirectionNeutral
	switch {
	case changePct > realizedDirectionThreshold:
		direction = models.DirectionBullish
	case changePct < -realizedDirectionThreshold:
		direction = models.DirectionBearish
	}

	outcome.Scored = true
	outcome.ActualChangePct = changePct
	outcome.ActualDirection = direction
	outcome.WasCorrect = direction == e.PredictedDirection
	if e.PredictedPrice != 0 {
		// Price error as a fraction of the realized price, 10% off = zero.
		errPct := math.Abs(e.PredictedPrice-actual) / actual * 100
		outcome.AccuracyScore = math.Max(0, 1-errPct/10)
	}
	return outcome
}
