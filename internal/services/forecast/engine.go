package forecast

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"IndexPulse/internal/domain/models"
	"IndexPulse/internal/services/indicators"
)

// ErrNoHistory is returned when there is no price history to forecast
// from. Absent data is a hard failure, unlike thin data, which degrades
// to a low-confidence forecast.
var ErrNoHistory = errors.New("forecast: no price history")

// Signal-combination policy constants. The 0.1 direction threshold here is
// intentionally different from the evaluator's 0.5 realized-direction
// threshold; both are independently tuned.
const (
	trendWeight        = 0.4
	momentumWeight     = 0.6
	technicalWeight    = 0.6
	sentimentWeight    = 0.4
	rsiDampening       = 0.7
	directionThreshold = 0.1
	decayFactor        = 0.9
	noiseScale         = 0.3
	tradingDays        = 252
)

// Engine combines technical indicators with news sentiment into a
// multi-day forecast. The Gaussian noise term makes production forecasts
// intentionally non-reproducible between runs; tests inject a seeded
// source for determinism.
type Engine struct {
	now func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures Engine.
type Option func(*Engine)

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRandSource injects the noise source.
func WithRandSource(src rand.Source) Option {
	return func(e *Engine) {
		if src != nil {
			e.rng = rand.New(src)
		}
	}
}

// NewEngine creates a forecast engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now: time.Now,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Forecast produces a horizon-day prediction for one index.
func (e *Engine) Forecast(index models.Index, horizonDays int, history []models.TimeSeriesPoint, sent models.SentimentSummary) (*models.Forecast, error) {
	if len(history) == 0 {
		return nil, ErrNoHistory
	}

	ind := indicators.Compute(history)
	currentPrice := history[len(history)-1].Close

	techSignal := ind.Trend*trendWeight + ind.Momentum*momentumWeight
	combined := techSignal*technicalWeight + sent.Score*sentimentWeight

	// Overbought/oversold de-risking, applied regardless of sign.
	if ind.RSI > 70 || ind.RSI < 30 {
		combined *= rsiDampening
	}

	direction := models.DirectionNeutral
	switch {
	case combined > directionThreshold:
		direction = models.DirectionBullish
	case combined < -directionThreshold:
		direction = models.DirectionBearish
	}

	// 2-sigma estimate of a single-day move, in fractional terms.
	maxDailyChange := ind.Volatility / math.Sqrt(tradingDays) * 2
	baseChange := combined * maxDailyChange * 100

	predictionDate := e.now()
	predictions := make([]models.DailyPrediction, 0, horizonDays)
	cumulativeChange := 0.0

	for i := 1; i <= horizonDays; i++ {
		dailyChange := baseChange * math.Pow(decayFactor, float64(i))
		noise := e.gaussian() * maxDailyChange * noiseScale
		cumulativeChange += dailyChange + noise*100

		predictions = append(predictions, models.DailyPrediction{
			TargetDate:         predictionDate.AddDate(0, 0, i),
			PredictedClose:     currentPrice * (1 + cumulativeChange/100),
			Confidence:         dayConfidence(i),
			SentimentInfluence: sent.Score * sentimentWeight,
		})
	}

	finalPrice := predictions[len(predictions)-1].PredictedClose
	totalChangePct := 0.0
	if currentPrice != 0 {
		totalChangePct = (finalPrice - currentPrice) / currentPrice * 100
	}

	// Signal strength raises confidence, volatility suppresses it.
	confidence := math.Min(0.85, 0.5+math.Abs(combined)*0.5) * (1 - ind.Volatility*0.5)

	last := len(history)
	if last > 30 {
		last = 30
	}

	return &models.Forecast{
		IndexID:            index.ID,
		Name:               index.Name,
		CurrentPrice:       currentPrice,
		PredictionDate:     predictionDate,
		HorizonDays:        horizonDays,
		Direction:          direction,
		PredictedChangePct: totalChangePct,
		Confidence:         confidence,
		OverallSentiment:   sent.Label,
		SentimentScore:     sent.Score,
		Predictions:        predictions,
		Factors: models.ForecastFactors{
			Technical: models.TechnicalFactors{
				Trend:      ind.Trend,
				Momentum:   ind.Momentum,
				RSI:        ind.RSI,
				Volatility: ind.Volatility * 100,
				SMA5:       ind.SMA5,
				SMA20:      ind.SMA20,
			},
			Sentiment: models.SentimentFactors{
				Score:            sent.Score,
				Label:            sent.Label,
				PositiveArticles: sent.PositiveCount,
				NegativeArticles: sent.NegativeCount,
				NeutralArticles:  sent.NeutralCount,
			},
			CombinedSignal: combined,
		},
		HistoricalData: history[len(history)-last:],
	}, nil
}

// dayConfidence decreases with horizon distance, floored at 0.3.
func dayConfidence(day int) float64 {
	return math.Max(0.3, 0.85-float64(day)*0.07)
}

func (e *Engine) gaussian() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.NormFloat64()
}
