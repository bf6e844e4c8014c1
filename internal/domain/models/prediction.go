package models

import "time"

// PredictionStatus tags the ledger state machine: a row is created Pending
// and moves to Evaluated exactly once.
type PredictionStatus string

const (
	PredictionPending   PredictionStatus = "pending"
	PredictionEvaluated PredictionStatus = "evaluated"
)

// PredictionOutcome holds the fields set by the single Pending->Evaluated
// transition. Scored is false when the entry carried no price at
// prediction time: the row still transitions (ActualPrice and
// EvaluatedAt are set) but the realized move is undefined, so the
// verdict fields stay unset and the row never counts toward accuracy.
type PredictionOutcome struct {
	ActualPrice     float64   `json:"actual_price"`
	Scored          bool      `json:"scored"`
	ActualChangePct float64   `json:"actual_change_percent"`
	ActualDirection Direction `json:"actual_direction,omitempty"`
	WasCorrect      bool      `json:"was_correct"`
	AccuracyScore   float64   `json:"accuracy_score"`
	EvaluatedAt     time.Time `json:"evaluated_at"`
}

// PredictionEntry is one logged per-day prediction. Re-forecasting may
// create several entries for the same target date with different
// prediction dates; they are never deduplicated.
type PredictionEntry struct {
	ID                 int64            `json:"id"`
	IndexID            string           `json:"index_id"`
	PredictionDate     time.Time        `json:"prediction_date"`
	TargetDate         time.Time        `json:"target_date"`
	HorizonDays        int              `json:"horizon_days"`
	CurrentPrice       float64          `json:"current_price"`
	PredictedPrice     float64          `json:"predicted_price"`
	PredictedDirection Direction        `json:"predicted_direction"`
	PredictedChangePct float64          `json:"predicted_change_percent"`
	Confidence         float64          `json:"confidence"`
	Technical          TechnicalFactors `json:"technical_factors"`
	Sentiment          SentimentFactors `json:"sentiment_factors"`
	CombinedSignal     float64          `json:"combined_signal"`

	Status  PredictionStatus   `json:"status"`
	Outcome *PredictionOutcome `json:"outcome,omitempty"`
}

// AccuracyStats aggregates evaluated predictions for one index.
type AccuracyStats struct {
	Total                int       `json:"total_predictions"`
	Correct              int       `json:"correct_predictions"`
	DirectionAccuracyPct float64   `json:"direction_accuracy"`
	PriceAccuracyPct     float64   `json:"price_accuracy"`
	LastEvaluated        time.Time `json:"last_evaluated"`
}

// AccuracyOverall sums evaluated predictions across indices.
type AccuracyOverall struct {
	Total                int     `json:"total_predictions"`
	Correct              int     `json:"correct_predictions"`
	DirectionAccuracyPct float64 `json:"direction_accuracy"`
}

// AccuracyRollup is the all-indices accuracy view: per-index stats for
// every index with at least one evaluated row, plus the overall sum.
type AccuracyRollup struct {
	Overall AccuracyOverall           `json:"overall"`
	Indices map[string]*AccuracyStats `json:"indices"`
}
