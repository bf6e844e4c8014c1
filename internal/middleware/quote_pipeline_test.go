package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"IndexPulse/internal/domain/models"
)

type fakeSink struct {
	applied []*models.Quote
	err     error
}

func (f *fakeSink) ApplyStreamQuote(ctx context.Context, q *models.Quote) error {
	if f.err != nil {
		return f.err
	}
	f.applied = append(f.applied, q)
	return nil
}

type noopMetrics struct{}

func (noopMetrics) RecordCacheHit(string)              {}
func (noopMetrics) RecordCacheMiss(string)             {}
func (noopMetrics) RecordUpstreamFetch(string, string) {}
func (noopMetrics) RecordForecast(string, string)      {}
func (noopMetrics) RecordEvaluation(string, bool)      {}
func (noopMetrics) RecordLastPrice(string, float64)    {}
func (noopMetrics) RecordLatency(string, float64)      {}

func TestQuotePipeline_ForwardsValidQuotes(t *testing.T) {
	sink := &fakeSink{}
	p := NewQuotePipeline(sink, noopMetrics{})

	q := &models.Quote{Symbol: "^GSPC", Price: 5000}
	if err := p.Process(context.Background(), q); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(sink.applied) != 1 || sink.applied[0] != q {
		t.Fatalf("quote not forwarded: %+v", sink.applied)
	}
}

func TestQuotePipeline_RejectsInvalidQuotes(t *testing.T) {
	sink := &fakeSink{}
	p := NewQuotePipeline(sink, noopMetrics{})

	cases := []*models.Quote{
		nil,
		{Symbol: "", Price: 100},
		{Symbol: "^GSPC", Price: -1},
	}
	for _, q := range cases {
		if err := p.Process(context.Background(), q); err == nil {
			t.Errorf("expected validation error for %+v", q)
		}
	}
	if len(sink.applied) != 0 {
		t.Fatalf("invalid quotes reached the sink: %+v", sink.applied)
	}
}

func TestQuotePipeline_ThrottlesPerSymbol(t *testing.T) {
	sink := &fakeSink{}
	p := NewQuotePipeline(sink, noopMetrics{}, WithMaxRPS(1))

	// Two updates for one symbol inside the same second: second is dropped
	// silently. A different symbol is unaffected.
	for i := 0; i < 2; i++ {
		if err := p.Process(context.Background(), &models.Quote{Symbol: "^GSPC", Price: 5000}); err != nil {
			t.Fatalf("process: %v", err)
		}
	}
	if err := p.Process(context.Background(), &models.Quote{Symbol: "^NSEI", Price: 22000}); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(sink.applied) != 2 {
		t.Fatalf("expected 2 applied quotes, got %d", len(sink.applied))
	}
}

func TestQuotePipeline_BuffersOnDownstreamError(t *testing.T) {
	sink := &fakeSink{err: errors.New("store down")}
	p := NewQuotePipeline(sink, noopMetrics{}, WithBufferSize(4))

	q := &models.Quote{Symbol: "^GSPC", Price: 5000}
	if err := p.Process(context.Background(), q); err == nil {
		t.Fatal("expected downstream error")
	}

	// Recover the sink and start the flusher: the buffered quote drains.
	sink.err = nil
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	deadline := time.After(2 * time.Second)
	for len(sink.applied) == 0 {
		select {
		case <-deadline:
			t.Fatal("buffered quote never flushed")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
