package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	domservice "IndexPulse/internal/domain/service"
	mid "IndexPulse/internal/middleware"
	"IndexPulse/internal/scheduler"
	"IndexPulse/internal/usecase"
	pkgcache "IndexPulse/pkg/cache"
	"IndexPulse/pkg/config"
	xhttp "IndexPulse/pkg/http"
	pkgkafka "IndexPulse/pkg/kafka"
	applogger "IndexPulse/pkg/logger"
	pkgsqlite "IndexPulse/pkg/sqlite"
)

// App encapsulates the entire application lifecycle: HTTP API, cron
// passes, the optional Kafka surface, and the optional quote stream.
type App struct {
	cfg           *config.Config
	l             *applogger.Logger
	handler       xhttp.Handler
	quotes        *usecase.QuoteUseCase
	evaluator     *usecase.EvaluatorUseCase
	consumer      *pkgkafka.Consumer
	closesHandler *usecase.KafkaClosesHandler
	producer      *pkgkafka.Producer
	stream        domservice.QuoteStream
	pipeline      *mid.QuotePipeline
	sqliteClient  *pkgsqlite.Client
	cache         pkgcache.Service

	httpServer *xhttp.Server
	sched      *scheduler.Scheduler
}

// New creates a new App instance with all dependencies. Kafka consumer,
// producer, closes handler, and quote stream may be nil when disabled.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	quotes *usecase.QuoteUseCase,
	evaluator *usecase.EvaluatorUseCase,
	consumer *pkgkafka.Consumer,
	closesHandler *usecase.KafkaClosesHandler,
	producer *pkgkafka.Producer,
	stream domservice.QuoteStream,
	pipeline *mid.QuotePipeline,
	sqliteClient *pkgsqlite.Client,
	cache pkgcache.Service,
) *App {
	return &App{
		cfg:           cfg,
		l:             l,
		handler:       handler,
		quotes:        quotes,
		evaluator:     evaluator,
		consumer:      consumer,
		closesHandler: closesHandler,
		producer:      producer,
		stream:        stream,
		pipeline:      pipeline,
		sqliteClient:  sqliteClient,
		cache:         cache,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithServerLogger(a.l),
	)

	if a.cfg.Scheduler.Enabled {
		a.sched = scheduler.New(ctx, a.quotes, a.evaluator, a.l)
		if err := a.sched.Register(a.cfg.Scheduler.QuoteRefresh, a.cfg.Scheduler.EvaluatePass); err != nil {
			return err
		}
		a.sched.Start()
	}

	if a.consumer != nil && a.closesHandler != nil {
		a.consumer.RegisterHandler(a.closesHandler)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.l.Info("kafka consumer started", applogger.String("topic", a.closesHandler.Topic()))
	}

	if a.stream != nil && a.pipeline != nil {
		a.pipeline.Start(ctx)
		go a.runStream(ctx)
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// runStream connects the quote feed and pumps updates through the
// pipeline, reconnecting with a fixed delay on failures.
func (a *App) runStream(ctx context.Context) {
	delay := a.cfg.QuoteStream.ReconnectDelay
	if delay <= 0 {
		delay = 5 * time.Second
	}

	for {
		if err := a.connectAndPump(ctx); err != nil {
			a.l.Warn("quote stream disconnected", applogger.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (a *App) connectAndPump(ctx context.Context) error {
	if err := a.stream.Connect(ctx); err != nil {
		return err
	}
	if err := a.stream.Subscribe(ctx); err != nil {
		_ = a.stream.Close()
		return err
	}
	a.l.Info("quote stream connected")

	quotes, errs := a.stream.Read(ctx)
	for {
		select {
		case <-ctx.Done():
			_ = a.stream.Close()
			return nil
		case q, ok := <-quotes:
			if !ok {
				return nil
			}
			if err := a.pipeline.Process(ctx, q); err != nil {
				a.l.Warn("stream quote dropped", applogger.Error(err))
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			_ = a.stream.Close()
			return err
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	if a.sched != nil {
		a.sched.Stop()
	}

	if a.pipeline != nil {
		a.pipeline.Stop()
	}
	if a.stream != nil {
		if err := a.stream.Close(); err != nil {
			a.l.Warn("quote stream close error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.l.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.l.Warn("cache close error", applogger.Error(err))
		}
	}
	if a.sqliteClient != nil {
		if err := a.sqliteClient.Close(); err != nil {
			a.l.Warn("sqlite close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
