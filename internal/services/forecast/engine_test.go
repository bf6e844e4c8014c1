package forecast

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"IndexPulse/internal/domain/models"
)

var testIndex = models.Index{ID: "sp500", Symbol: "^GSPC", Name: "S&P 500"}

func fixedNow() time.Time { return time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC) }

func flatHistory(n int) []models.TimeSeriesPoint {
	out := make([]models.TimeSeriesPoint, n)
	for i := range out {
		out[i] = models.TimeSeriesPoint{
			Date:  fixedNow().AddDate(0, 0, i-n),
			Close: 100,
		}
	}
	return out
}

func risingHistory(n int) []models.TimeSeriesPoint {
	out := make([]models.TimeSeriesPoint, n)
	for i := range out {
		out[i] = models.TimeSeriesPoint{
			Date:  fixedNow().AddDate(0, 0, i-n),
			Close: 100 + float64(i),
		}
	}
	return out
}

func neutralSentiment() models.SentimentSummary {
	return models.SentimentSummary{Label: models.SentimentNeutral}
}

func TestForecast_NoHistoryIsHardError(t *testing.T) {
	e := NewEngine(WithClock(fixedNow), WithRandSource(rand.NewSource(1)))
	if _, err := e.Forecast(testIndex, 7, nil, neutralSentiment()); err != ErrNoHistory {
		t.Fatalf("expected ErrNoHistory, got %v", err)
	}
}

func TestForecast_FlatSeriesIsDeterministicNeutral(t *testing.T) {
	// Zero volatility kills both the decayed drift and the noise term, so
	// every predicted close equals the current price exactly.
	e := NewEngine(WithClock(fixedNow), WithRandSource(rand.NewSource(42)))
	f, err := e.Forecast(testIndex, 7, flatHistory(30), neutralSentiment())
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}

	if f.Direction != models.DirectionNeutral {
		t.Errorf("direction: got %s want neutral", f.Direction)
	}
	if f.CurrentPrice != 100 {
		t.Errorf("current price: got %v", f.CurrentPrice)
	}
	if len(f.Predictions) != 7 {
		t.Fatalf("expected 7 daily predictions, got %d", len(f.Predictions))
	}
	for i, p := range f.Predictions {
		if p.PredictedClose != 100 {
			t.Errorf("day %d: predicted close %v, want 100", i+1, p.PredictedClose)
		}
	}
	// Zero signal, zero volatility: overall confidence bottoms at 0.5.
	if math.Abs(f.Confidence-0.5) > 1e-9 {
		t.Errorf("confidence: got %v want 0.5", f.Confidence)
	}
}

func TestForecast_PerDayConfidenceDecaysToFloor(t *testing.T) {
	e := NewEngine(WithClock(fixedNow), WithRandSource(rand.NewSource(1)))
	f, err := e.Forecast(testIndex, 10, flatHistory(30), neutralSentiment())
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	want := []float64{0.78, 0.71, 0.64, 0.57, 0.50, 0.43, 0.36, 0.30, 0.30, 0.30}
	for i, p := range f.Predictions {
		if math.Abs(p.Confidence-want[i]) > 1e-9 {
			t.Errorf("day %d confidence: got %v want %v", i+1, p.Confidence, want[i])
		}
	}
}

func TestForecast_TargetDatesFollowPredictionDate(t *testing.T) {
	e := NewEngine(WithClock(fixedNow), WithRandSource(rand.NewSource(1)))
	f, err := e.Forecast(testIndex, 3, flatHistory(30), neutralSentiment())
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if !f.PredictionDate.Equal(fixedNow()) {
		t.Errorf("prediction date not from injected clock: %v", f.PredictionDate)
	}
	for i, p := range f.Predictions {
		want := fixedNow().AddDate(0, 0, i+1)
		if !p.TargetDate.Equal(want) {
			t.Errorf("day %d target: got %v want %v", i+1, p.TargetDate, want)
		}
	}
}

func TestForecast_RSIDampeningAppliesWhenOverbought(t *testing.T) {
	// Strictly rising closes push RSI to 100, which triggers the
	// overbought dampening on the combined signal.
	history := risingHistory(20)
	e := NewEngine(WithClock(fixedNow), WithRandSource(rand.NewSource(1)))
	f, err := e.Forecast(testIndex, 7, history, neutralSentiment())
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if f.Factors.Technical.RSI != 100 {
		t.Fatalf("expected saturated RSI, got %v", f.Factors.Technical.RSI)
	}

	// Undampened signal for this series: (trend*0.4 + momentum*0.6) * 0.6
	trend := (117.0 - 109.5) / 109.5 * 10
	momentum := (119.0 - 115.0) / 115.0 * 5
	undampened := (trend*0.4 + momentum*0.6) * 0.6
	want := undampened * 0.7
	if math.Abs(f.Factors.CombinedSignal-want) > 1e-9 {
		t.Errorf("combined signal: got %v want %v (undampened %v)", f.Factors.CombinedSignal, want, undampened)
	}
	if f.Direction != models.DirectionBullish {
		t.Errorf("direction: got %s want bullish", f.Direction)
	}
}

func TestForecast_SentimentShiftsDirection(t *testing.T) {
	// Flat technicals with strongly negative sentiment: the combined
	// signal is sentiment alone, -0.8 * 0.4 = -0.32.
	sent := models.SentimentSummary{Score: -0.8, Label: models.SentimentNegative}
	e := NewEngine(WithClock(fixedNow), WithRandSource(rand.NewSource(1)))
	f, err := e.Forecast(testIndex, 7, flatHistory(30), sent)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if f.Direction != models.DirectionBearish {
		t.Errorf("direction: got %s want bearish", f.Direction)
	}
	// Flat series still saturates RSI, so the dampening applies here too.
	want := -0.8 * 0.4 * 0.7
	if math.Abs(f.Factors.CombinedSignal-want) > 1e-9 {
		t.Errorf("combined signal: got %v want %v", f.Factors.CombinedSignal, want)
	}
	for _, p := range f.Predictions {
		if p.SentimentInfluence != -0.8*0.4 {
			t.Errorf("sentiment influence: got %v", p.SentimentInfluence)
		}
	}
}

func TestForecast_SameSeedSameForecast(t *testing.T) {
	history := risingHistory(40)
	sent := models.SentimentSummary{Score: 0.3, Label: models.SentimentPositive}

	a, err := NewEngine(WithClock(fixedNow), WithRandSource(rand.NewSource(7))).Forecast(testIndex, 7, history, sent)
	if err != nil {
		t.Fatalf("forecast a: %v", err)
	}
	b, err := NewEngine(WithClock(fixedNow), WithRandSource(rand.NewSource(7))).Forecast(testIndex, 7, history, sent)
	if err != nil {
		t.Fatalf("forecast b: %v", err)
	}
	for i := range a.Predictions {
		if a.Predictions[i].PredictedClose != b.Predictions[i].PredictedClose {
			t.Fatalf("day %d differs across identical seeds: %v vs %v",
				i+1, a.Predictions[i].PredictedClose, b.Predictions[i].PredictedClose)
		}
	}

	c, err := NewEngine(WithClock(fixedNow), WithRandSource(rand.NewSource(8))).Forecast(testIndex, 7, history, sent)
	if err != nil {
		t.Fatalf("forecast c: %v", err)
	}
	same := true
	for i := range a.Predictions {
		if a.Predictions[i].PredictedClose != c.Predictions[i].PredictedClose {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds should produce different noise paths")
	}
}

func TestForecast_ConfidenceCapAndVolatilityPenalty(t *testing.T) {
	// Max out the signal: strong technicals and sentiment both positive.
	history := risingHistory(40)
	sent := models.SentimentSummary{Score: 1, Label: models.SentimentPositive}
	e := NewEngine(WithClock(fixedNow), WithRandSource(rand.NewSource(1)))
	f, err := e.Forecast(testIndex, 7, history, sent)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if f.Confidence > 0.85 {
		t.Errorf("confidence above cap: %v", f.Confidence)
	}
	vol := f.Factors.Technical.Volatility / 100
	wantMax := 0.85 * (1 - vol*0.5)
	if f.Confidence > wantMax+1e-9 {
		t.Errorf("volatility penalty not applied: got %v, max %v", f.Confidence, wantMax)
	}
}

func TestForecast_HistoricalDataCappedAt30(t *testing.T) {
	e := NewEngine(WithClock(fixedNow), WithRandSource(rand.NewSource(1)))
	f, err := e.Forecast(testIndex, 7, risingHistory(90), neutralSentiment())
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(f.HistoricalData) != 30 {
		t.Fatalf("expected 30 trailing points, got %d", len(f.HistoricalData))
	}
	if f.HistoricalData[29].Close != 189 {
		t.Errorf("expected the newest point last, got close %v", f.HistoricalData[29].Close)
	}
}

func TestForecast_ThinHistoryStillForecasts(t *testing.T) {
	// Under 20 points the indicators degrade to zero but a forecast is
	// still produced.
	e := NewEngine(WithClock(fixedNow), WithRandSource(rand.NewSource(1)))
	f, err := e.Forecast(testIndex, 5, flatHistory(5), neutralSentiment())
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(f.Predictions) != 5 {
		t.Fatalf("expected 5 predictions, got %d", len(f.Predictions))
	}
	if f.Factors.Technical.RSI != 50 {
		t.Errorf("thin history should report neutral RSI, got %v", f.Factors.Technical.RSI)
	}
}
