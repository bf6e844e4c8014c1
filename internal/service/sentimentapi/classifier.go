package sentimentapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"IndexPulse/internal/domain/models"
	domservice "IndexPulse/internal/domain/service"
	xhttp "IndexPulse/pkg/http"
)

// Classifier calls the sentiment model service over HTTP JSON. The model
// is a black box; this client only shapes the request and validates the
// verdict.
type Classifier struct {
	baseURL string
	client  *xhttp.Client
	retries int
}

func NewClassifier(httpClient *xhttp.Client, baseURL string, retries int) *Classifier {
	if retries <= 0 {
		retries = 1
	}
	return &Classifier{baseURL: baseURL, client: httpClient, retries: retries}
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

func (c *Classifier) Classify(ctx context.Context, text string) (models.SentimentLabel, float64, error) {
	if c.baseURL == "" {
		return "", 0, fmt.Errorf("sentiment service URL not configured")
	}

	var resp classifyResponse
	var err error
	for attempt := 1; attempt <= c.retries; attempt++ {
		err = c.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodPost,
			URL:    c.baseURL + "/classify",
			Headers: map[string]string{
				"Content-Type": "application/json",
			},
			Body: classifyRequest{Text: text},
		}, &resp)
		if err == nil {
			break
		}
		select {
		case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
		case <-ctx.Done():
			return "", 0, ctx.Err()
		}
	}
	if err != nil {
		return "", 0, fmt.Errorf("classify: %w", err)
	}

	label, err := parseLabel(resp.Label)
	if err != nil {
		return "", 0, err
	}
	confidence := resp.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return label, confidence, nil
}

func parseLabel(s string) (models.SentimentLabel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return models.SentimentPositive, nil
	case "negative":
		return models.SentimentNegative, nil
	case "neutral", "":
		return models.SentimentNeutral, nil
	default:
		return "", fmt.Errorf("classify: unknown label %q", s)
	}
}

var _ domservice.SentimentClassifier = (*Classifier)(nil)
