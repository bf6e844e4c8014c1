package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pkgkafka "IndexPulse/pkg/kafka"
	"IndexPulse/pkg/util"
)

// KafkaClosesHandler consumes realized close-price messages and feeds the
// evaluator one index and day at a time.
type KafkaClosesHandler struct {
	topic     string
	evaluator *EvaluatorUseCase
}

func NewKafkaClosesHandler(topic string, evaluator *EvaluatorUseCase) *KafkaClosesHandler {
	return &KafkaClosesHandler{topic: topic, evaluator: evaluator}
}

func (h *KafkaClosesHandler) Topic() string { return h.topic }

// incoming message schema: {index_id, date, close}
func (h *KafkaClosesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		IndexID string  `json:"index_id"`
		Date    string  `json:"date"`
		Close   float64 `json:"close"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("unmarshal close message: %w", err)
	}
	if m.IndexID == "" || m.Close == 0 {
		return fmt.Errorf("close message missing index_id or close")
	}
	day, err := time.Parse(util.DayFormat, m.Date)
	if err != nil {
		return fmt.Errorf("parse close date %q: %w", m.Date, err)
	}

	_, err = h.evaluator.EvaluateWithPrices(ctx, m.IndexID, map[string]float64{
		util.DayKey(day): m.Close,
	})
	return err
}

var _ pkgkafka.MessageHandler = (*KafkaClosesHandler)(nil)
