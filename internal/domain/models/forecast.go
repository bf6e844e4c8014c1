package models

import "time"

// Direction is a forecast or realized market direction.
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)

// Indicators are the technical signals derived from a price series.
// With fewer than 20 points all momentum-style values are zero and RSI
// falls back to its neutral 50.
type Indicators struct {
	Trend        float64 `json:"trend"`    // [-1, 1]
	Momentum     float64 `json:"momentum"` // [-1, 1]
	Volatility   float64 `json:"volatility"`
	RSI          float64 `json:"rsi"`
	SMA5         float64 `json:"sma_5"`
	SMA20        float64 `json:"sma_20"`
	CurrentPrice float64 `json:"current_price"`
}

// DailyPrediction is one horizon day of a forecast.
type DailyPrediction struct {
	TargetDate         time.Time `json:"date"`
	PredictedClose     float64   `json:"predicted_close"`
	Confidence         float64   `json:"confidence"`
	SentimentInfluence float64   `json:"sentiment_influence"`
}

// TechnicalFactors is the indicator breakdown persisted with each forecast.
type TechnicalFactors struct {
	Trend      float64 `json:"trend"`
	Momentum   float64 `json:"momentum"`
	RSI        float64 `json:"rsi"`
	Volatility float64 `json:"volatility"` // percent
	SMA5       float64 `json:"sma_5"`
	SMA20      float64 `json:"sma_20"`
}

// SentimentFactors is the sentiment breakdown persisted with each forecast.
type SentimentFactors struct {
	Score            float64        `json:"score"`
	Label            SentimentLabel `json:"label"`
	PositiveArticles int            `json:"positive_articles"`
	NegativeArticles int            `json:"negative_articles"`
	NeutralArticles  int            `json:"neutral_articles"`
}

// ForecastFactors bundles the audit trail behind a forecast.
type ForecastFactors struct {
	Technical      TechnicalFactors `json:"technical"`
	Sentiment      SentimentFactors `json:"sentiment"`
	CombinedSignal float64          `json:"combined_signal"`
}

// Forecast is a full multi-day prediction for one index.
type Forecast struct {
	IndexID            string            `json:"index_id"`
	Name               string            `json:"name"`
	CurrentPrice       float64           `json:"current_price"`
	PredictionDate     time.Time         `json:"prediction_date"`
	HorizonDays        int               `json:"prediction_days"`
	Direction          Direction         `json:"predicted_direction"`
	PredictedChangePct float64           `json:"predicted_change_percent"`
	Confidence         float64           `json:"confidence"`
	OverallSentiment   SentimentLabel    `json:"overall_sentiment"`
	SentimentScore     float64           `json:"sentiment_score"`
	Predictions        []DailyPrediction `json:"predictions"`
	Factors            ForecastFactors   `json:"factors"`
	HistoricalData     []TimeSeriesPoint `json:"historical_data,omitempty"`
}
