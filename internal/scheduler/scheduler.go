package scheduler

import (
	"context"
	"fmt"

	"IndexPulse/internal/usecase"
	applogger "IndexPulse/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler drives the periodic passes: quote refresh and prediction
// evaluation. Both are also reachable on demand through their usecases;
// cron only supplies the trigger.
type Scheduler struct {
	cron      *cron.Cron
	quotes    *usecase.QuoteUseCase
	evaluator *usecase.EvaluatorUseCase
	l         *applogger.Logger
	ctx       context.Context
}

func New(ctx context.Context, quotes *usecase.QuoteUseCase, evaluator *usecase.EvaluatorUseCase, l *applogger.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		quotes:    quotes,
		evaluator: evaluator,
		l:         l,
		ctx:       ctx,
	}
}

// Register wires the cron expressions. Empty expressions disable the
// corresponding pass.
func (s *Scheduler) Register(quoteRefreshSpec, evaluateSpec string) error {
	if quoteRefreshSpec != "" {
		if _, err := s.cron.AddFunc(quoteRefreshSpec, s.quoteRefresh); err != nil {
			return fmt.Errorf("register quote refresh: %w", err)
		}
	}
	if evaluateSpec != "" {
		if _, err := s.cron.AddFunc(evaluateSpec, s.evaluatePass); err != nil {
			return fmt.Errorf("register evaluate pass: %w", err)
		}
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	if s.l != nil {
		s.l.Info("scheduler started")
	}
}

func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	if s.l != nil {
		s.l.Info("scheduler stopped")
	}
}

func (s *Scheduler) quoteRefresh() {
	if s.l != nil {
		s.l.Debug("running quote refresh pass")
	}
	s.quotes.RefreshAll(s.ctx)
}

func (s *Scheduler) evaluatePass() {
	if s.l != nil {
		s.l.Debug("running evaluation pass")
	}
	s.evaluator.EvaluateAll(s.ctx)
}
