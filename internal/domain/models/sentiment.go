package models

import "time"

// SentimentLabel is a classifier verdict for a single text or an aggregate.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// ArticleSentiment is one classified headline. Score is the signed
// confidence: +confidence for positive, -confidence for negative, 0 for
// neutral.
type ArticleSentiment struct {
	Headline    string         `json:"headline"`
	Source      string         `json:"source"`
	PublishedAt time.Time      `json:"published_at"`
	URL         string         `json:"url"`
	Sentiment   SentimentLabel `json:"sentiment"`
	Confidence  float64        `json:"confidence"`
	Score       float64        `json:"score"`
}

// SentimentSummary aggregates article-level sentiment into one score.
type SentimentSummary struct {
	Score         float64            `json:"score"` // mean signed score in [-1, 1]
	Label         SentimentLabel     `json:"label"`
	PositiveCount int                `json:"positive_count"`
	NegativeCount int                `json:"negative_count"`
	NeutralCount  int                `json:"neutral_count"`
	Articles      []ArticleSentiment `json:"articles"`
}

// SentimentSnapshot is one persisted analysis run for an index.
// Rows are append-only; readers take the newest by AnalyzedAt.
type SentimentSnapshot struct {
	IndexID    string    `json:"index_id"`
	Query      string    `json:"query"`
	AnalyzedAt time.Time `json:"analyzed_at"`
	SentimentSummary
}

// SentimentTrendPoint is one row of the read-side trend aggregation.
type SentimentTrendPoint struct {
	Date         time.Time      `json:"date"`
	Label        SentimentLabel `json:"sentiment"`
	Score        float64        `json:"score"`
	ArticleCount int            `json:"article_count"`
}
