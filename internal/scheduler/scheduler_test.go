package scheduler

import (
	"context"
	"testing"

	"IndexPulse/internal/usecase"
)

func TestScheduler_RegisterRejectsBadSpec(t *testing.T) {
	s := New(context.Background(), &usecase.QuoteUseCase{}, &usecase.EvaluatorUseCase{}, nil)
	if err := s.Register("not a cron spec", ""); err == nil {
		t.Fatal("expected error for malformed quote refresh spec")
	}
	if err := s.Register("", "61 * * * *"); err == nil {
		t.Fatal("expected error for malformed evaluate spec")
	}
}

func TestScheduler_RegisterAcceptsEmptyAndValidSpecs(t *testing.T) {
	s := New(context.Background(), &usecase.QuoteUseCase{}, &usecase.EvaluatorUseCase{}, nil)
	if err := s.Register("", ""); err != nil {
		t.Fatalf("empty specs should be accepted: %v", err)
	}
	if err := s.Register("*/5 * * * *", "30 0 * * *"); err != nil {
		t.Fatalf("valid specs rejected: %v", err)
	}
}
