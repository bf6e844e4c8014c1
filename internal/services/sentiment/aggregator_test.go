package sentiment

import (
	"math"
	"testing"

	"IndexPulse/internal/domain/models"
)

func TestAggregate_EmptyIsExplicitNeutral(t *testing.T) {
	got := Aggregate(nil)
	if got.Label != models.SentimentNeutral {
		t.Errorf("label: got %s want neutral", got.Label)
	}
	if got.Score != 0 {
		t.Errorf("score: got %v want 0", got.Score)
	}
	if got.Articles == nil {
		t.Error("articles should be an empty slice, not nil")
	}
	if got.PositiveCount+got.NegativeCount+got.NeutralCount != 0 {
		t.Error("counts should all be zero")
	}
}

func TestAggregate_MeanAndCounts(t *testing.T) {
	articles := []models.ArticleSentiment{
		{Sentiment: models.SentimentPositive, Confidence: 0.9, Score: 0.9},
		{Sentiment: models.SentimentPositive, Confidence: 0.6, Score: 0.6},
		{Sentiment: models.SentimentNegative, Confidence: 0.3, Score: -0.3},
		{Sentiment: models.SentimentNeutral, Confidence: 0.8, Score: 0},
	}
	got := Aggregate(articles)

	want := (0.9 + 0.6 - 0.3 + 0) / 4
	if math.Abs(got.Score-want) > 1e-9 {
		t.Errorf("score: got %v want %v", got.Score, want)
	}
	if got.Label != models.SentimentPositive {
		t.Errorf("label: got %s want positive", got.Label)
	}
	if got.PositiveCount != 2 || got.NegativeCount != 1 || got.NeutralCount != 1 {
		t.Errorf("counts: got %d/%d/%d", got.PositiveCount, got.NegativeCount, got.NeutralCount)
	}
}

func TestAggregate_LabelThresholds(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  models.SentimentLabel
	}{
		{"just above threshold", 0.11, models.SentimentPositive},
		{"at threshold stays neutral", 0.1, models.SentimentNeutral},
		{"zero", 0, models.SentimentNeutral},
		{"at negative threshold stays neutral", -0.1, models.SentimentNeutral},
		{"just below threshold", -0.11, models.SentimentNegative},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate([]models.ArticleSentiment{{Score: tt.score}})
			if got.Label != tt.want {
				t.Errorf("score %v: got %s want %s", tt.score, got.Label, tt.want)
			}
		})
	}
}

func TestSignedScore(t *testing.T) {
	if got := SignedScore(models.SentimentPositive, 0.7); got != 0.7 {
		t.Errorf("positive: got %v", got)
	}
	if got := SignedScore(models.SentimentNegative, 0.7); got != -0.7 {
		t.Errorf("negative: got %v", got)
	}
	if got := SignedScore(models.SentimentNeutral, 0.7); got != 0 {
		t.Errorf("neutral: got %v", got)
	}
}
