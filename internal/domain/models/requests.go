package models

// HistoryRequest selects a cached (or refetched) price series.
type HistoryRequest struct {
	IndexID  string `param:"id" validate:"required"`
	Period   string `query:"period" default:"1mo" validate:"oneof=1d 5d 1mo 3mo 6mo 1y 2y 5y max"`
	Interval string `query:"interval" default:"1d" validate:"oneof=1m 5m 15m 30m 1h 1d 1wk 1mo"`
}

// PredictRequest asks for a multi-day forecast.
type PredictRequest struct {
	IndexID string `param:"id" validate:"required"`
	Days    int    `query:"days" default:"7" validate:"gte=1,lte=30"`
}

// SentimentRequest asks for the current aggregate sentiment.
type SentimentRequest struct {
	IndexID string `param:"id" validate:"required"`
}

// SentimentTrendRequest asks for the sentiment history window.
type SentimentTrendRequest struct {
	IndexID string `param:"id" validate:"required"`
	Days    int    `query:"days" default:"7" validate:"gte=1,lte=90"`
}

// AccuracyRequest asks for aggregate prediction accuracy.
type AccuracyRequest struct {
	IndexID string `param:"id" validate:"required"`
}

// PredictionHistoryRequest lists recent logged predictions.
type PredictionHistoryRequest struct {
	IndexID string `param:"id" validate:"required"`
	Days    int    `query:"days" default:"30" validate:"gte=1,lte=365"`
}
