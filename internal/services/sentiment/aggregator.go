package sentiment

import "IndexPulse/internal/domain/models"

// labelThreshold separates positive/negative aggregates from neutral.
const labelThreshold = 0.1

// Aggregate folds per-article judgments into one summary. With no
// articles it returns the explicit neutral default rather than an error.
func Aggregate(articles []models.ArticleSentiment) models.SentimentSummary {
	summary := models.SentimentSummary{
		Label:    models.SentimentNeutral,
		Articles: articles,
	}
	if len(articles) == 0 {
		summary.Articles = []models.ArticleSentiment{}
		return summary
	}

	var sum float64
	for _, a := range articles {
		sum += a.Score
		switch a.Sentiment {
		case models.SentimentPositive:
			summary.PositiveCount++
		case models.SentimentNegative:
			summary.NegativeCount++
		default:
			summary.NeutralCount++
		}
	}

	summary.Score = sum / float64(len(articles))
	switch {
	case summary.Score > labelThreshold:
		summary.Label = models.SentimentPositive
	case summary.Score < -labelThreshold:
		summary.Label = models.SentimentNegative
	}
	return summary
}

// SignedScore converts a classifier verdict into the signed per-article
// score: +confidence, -confidence, or 0.
func SignedScore(label models.SentimentLabel, confidence float64) float64 {
	switch label {
	case models.SentimentPositive:
		return confidence
	case models.SentimentNegative:
		return -confidence
	default:
		return 0
	}
}
