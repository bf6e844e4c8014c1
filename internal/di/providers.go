package di

import (
	"context"
	"fmt"
	"sort"
	"time"

	"IndexPulse/internal/domain/models"
	domrepo "IndexPulse/internal/domain/repository"
	domservice "IndexPulse/internal/domain/service"
	"IndexPulse/internal/handler/api"
	mid "IndexPulse/internal/middleware"
	internalrepo "IndexPulse/internal/repository"
	"IndexPulse/internal/service/marketdata"
	"IndexPulse/internal/service/news"
	"IndexPulse/internal/service/ratelimit"
	"IndexPulse/internal/service/sentimentapi"
	forecastsvc "IndexPulse/internal/services/forecast"
	sentimentsvc "IndexPulse/internal/services/sentiment"
	"IndexPulse/internal/usecase"
	pkgcache "IndexPulse/pkg/cache"
	"IndexPulse/pkg/config"
	xhttp "IndexPulse/pkg/http"
	pkgkafka "IndexPulse/pkg/kafka"
	applogger "IndexPulse/pkg/logger"
	"IndexPulse/pkg/metrics"
	"IndexPulse/pkg/server"
	pkgsqlite "IndexPulse/pkg/sqlite"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideSQLiteClient opens the cache database and applies the schema.
func ProvideSQLiteClient(cfg *config.Config) (*pkgsqlite.Client, error) {
	opts := []pkgsqlite.ClientOption{pkgsqlite.WithPath(cfg.SQLite.Path)}
	if cfg.SQLite.BusyTimeout > 0 {
		opts = append(opts, pkgsqlite.WithBusyTimeout(cfg.SQLite.BusyTimeout))
	}
	client, err := pkgsqlite.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("sqlite client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.Schema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return client, nil
}

// ProvideCache picks the transient cache backend from config.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	if cfg.Cache.Backend == "redis" {
		c, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
			pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
			pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
			pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	}
	opts := []pkgcache.MemoryOption{}
	if cfg.Cache.MaxEntries > 0 {
		opts = append(opts, pkgcache.WithMemoryMaxSize(cfg.Cache.MaxEntries))
	}
	return pkgcache.NewMemoryCache(opts...), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideRegistry builds the index registry from configuration.
func ProvideRegistry(cfg *config.Config) *usecase.Registry {
	ids := make([]string, 0, len(cfg.Indices))
	for id := range cfg.Indices {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	indices := make([]models.Index, 0, len(ids))
	for _, id := range ids {
		info := cfg.Indices[id]
		indices = append(indices, models.Index{
			ID:      id,
			Symbol:  info.Symbol,
			Name:    info.Name,
			Country: info.Country,
		})
	}
	return usecase.NewRegistry(indices)
}

// ProvideMarketStore creates the SQLite-backed market cache store.
func ProvideMarketStore(client *pkgsqlite.Client, l *applogger.Logger) domrepo.MarketStore {
	store := internalrepo.NewSQLiteMarketStore(client)
	store.SetLogger(l)
	return store
}

// ProvidePredictionStore creates the SQLite-backed prediction ledger.
func ProvidePredictionStore(client *pkgsqlite.Client, l *applogger.Logger) domrepo.PredictionStore {
	store := internalrepo.NewSQLitePredictionStore(client)
	store.SetLogger(l)
	return store
}

// ProvideMarketDataSource creates the rate-limited chart API client.
func ProvideMarketDataSource(cfg *config.Config, l *applogger.Logger) domservice.MarketDataSource {
	timeout := cfg.MarketData.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	opts := []marketdata.YahooOption{
		marketdata.WithRateLimit(cfg.MarketData.RatePerSec, cfg.MarketData.Burst),
		marketdata.WithLogger(l),
	}
	if cfg.MarketData.BaseURL != "" {
		opts = append(opts, marketdata.WithBaseURL(cfg.MarketData.BaseURL))
	}
	return marketdata.NewYahooSource(
		xhttp.NewClient(xhttp.WithTimeout(timeout)),
		ratelimit.New(),
		opts...,
	)
}

// ProvideNewsSource creates the news API client. Without an API key it
// serves deterministic synthetic articles.
func ProvideNewsSource(cfg *config.Config, l *applogger.Logger) domservice.NewsSource {
	timeout := cfg.News.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	opts := []news.Option{
		news.WithAPIKey(cfg.News.APIKey),
		news.WithPageSize(cfg.News.PageSize),
		news.WithLogger(l),
	}
	if cfg.News.BaseURL != "" {
		opts = append(opts, news.WithBaseURL(cfg.News.BaseURL))
	}
	return news.NewClient(xhttp.NewClient(xhttp.WithTimeout(timeout)), opts...)
}

// ProvideClassifier creates the sentiment classifier client.
func ProvideClassifier(cfg *config.Config) domservice.SentimentClassifier {
	timeout := cfg.Sentiment.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return sentimentapi.NewClassifier(
		xhttp.NewClient(xhttp.WithTimeout(timeout)),
		cfg.Sentiment.ServiceURL,
		cfg.Sentiment.Retries,
	)
}

// ProvideAnalyzer wires news fetching, classification, and aggregation.
func ProvideAnalyzer(
	newsSource domservice.NewsSource,
	classifier domservice.SentimentClassifier,
	cache pkgcache.Service,
	cfg *config.Config,
	l *applogger.Logger,
) *sentimentsvc.Analyzer {
	return sentimentsvc.NewAnalyzer(newsSource, classifier, cache, cfg.News.CacheTTL, l)
}

// ProvideForecastEngine creates the forecast engine.
func ProvideForecastEngine() *forecastsvc.Engine {
	return forecastsvc.NewEngine()
}

// ProvideHistoryUseCase creates the series cache-or-fetch use case.
func ProvideHistoryUseCase(
	registry *usecase.Registry,
	store domrepo.MarketStore,
	source domservice.MarketDataSource,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.HistoryUseCase {
	return usecase.NewHistoryUseCase(registry, store, source, m, l)
}

// ProvideQuoteUseCase creates the quote use case.
func ProvideQuoteUseCase(
	registry *usecase.Registry,
	store domrepo.MarketStore,
	source domservice.MarketDataSource,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.QuoteUseCase {
	return usecase.NewQuoteUseCase(registry, store, source, m, l)
}

// ProvideSentimentUseCase creates the sentiment use case.
func ProvideSentimentUseCase(
	registry *usecase.Registry,
	store domrepo.MarketStore,
	analyzer *sentimentsvc.Analyzer,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.SentimentUseCase {
	return usecase.NewSentimentUseCase(registry, store, analyzer, m, l)
}

// ProvideForecastUseCase creates the forecast use case.
func ProvideForecastUseCase(
	registry *usecase.Registry,
	history *usecase.HistoryUseCase,
	sentiment *usecase.SentimentUseCase,
	engine *forecastsvc.Engine,
	ledger domrepo.PredictionStore,
	m domrepo.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.ForecastUseCase {
	return usecase.NewForecastUseCase(registry, history, sentiment, engine, ledger, m, l,
		usecase.ForecastConfig{
			DefaultHorizonDays: cfg.Forecast.DefaultHorizonDays,
			MaxHorizonDays:     cfg.Forecast.MaxHorizonDays,
			HistoryPeriod:      cfg.Forecast.HistoryPeriod,
			HistoryInterval:    cfg.Forecast.HistoryInterval,
		})
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is
// disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Producer.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.Producer.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideOutcomePublisher creates the evaluated-prediction publisher, or
// nil when Kafka is disabled.
func ProvideOutcomePublisher(producer *pkgkafka.Producer, cfg *config.Config) usecase.OutcomePublisher {
	if producer == nil || cfg.Kafka.Topics.Outcomes == "" {
		return nil
	}
	return usecase.NewKafkaOutcomePublisher(producer, cfg.Kafka.Topics.Outcomes)
}

// ProvideEvaluatorUseCase creates the prediction evaluator.
func ProvideEvaluatorUseCase(
	registry *usecase.Registry,
	history *usecase.HistoryUseCase,
	ledger domrepo.PredictionStore,
	publisher usecase.OutcomePublisher,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.EvaluatorUseCase {
	return usecase.NewEvaluatorUseCase(registry, history, ledger, publisher, m, l)
}

// ProvideKafkaConsumer creates a Kafka consumer, or nil when Kafka is
// disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	opts := []pkgkafka.ConsumerOption{
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
	}
	if cfg.Kafka.Consumer.DLQTopic != "" {
		opts = append(opts, pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic))
	}
	consumer, err := pkgkafka.NewConsumer(opts...)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideClosesHandler creates the close-price feed handler, or nil when
// Kafka is disabled.
func ProvideClosesHandler(cfg *config.Config, evaluator *usecase.EvaluatorUseCase) *usecase.KafkaClosesHandler {
	if !cfg.Kafka.Enabled || cfg.Kafka.Topics.Closes == "" {
		return nil
	}
	return usecase.NewKafkaClosesHandler(cfg.Kafka.Topics.Closes, evaluator)
}

// ProvideQuoteStream creates the websocket quote feed, or nil when
// streaming is disabled.
func ProvideQuoteStream(cfg *config.Config, registry *usecase.Registry, l *applogger.Logger) domservice.QuoteStream {
	if !cfg.QuoteStream.Enabled {
		return nil
	}
	symbols := make([]string, 0)
	for _, idx := range registry.List() {
		symbols = append(symbols, idx.Symbol)
	}
	return marketdata.NewStream(
		cfg.QuoteStream.APIKey,
		cfg.QuoteStream.URL,
		symbols,
		cfg.QuoteStream.ReconnectDelay,
		cfg.QuoteStream.PingInterval,
		l,
	)
}

// ProvideQuotePipeline creates the stream-to-store pipeline.
func ProvideQuotePipeline(quotes *usecase.QuoteUseCase, m domrepo.Metrics) *mid.QuotePipeline {
	return mid.NewQuotePipeline(quotes, m,
		mid.WithMaxRPS(20),
		mid.WithBufferSize(1000),
	)
}

// ProvideSummaryUseCase creates the single-index summary use case.
func ProvideSummaryUseCase(
	registry *usecase.Registry,
	quotes *usecase.QuoteUseCase,
	history *usecase.HistoryUseCase,
	l *applogger.Logger,
) *usecase.SummaryUseCase {
	return usecase.NewSummaryUseCase(registry, quotes, history, l)
}

// ProvideHTTPHandler creates the API handler.
func ProvideHTTPHandler(
	l *applogger.Logger,
	registry *usecase.Registry,
	history *usecase.HistoryUseCase,
	quotes *usecase.QuoteUseCase,
	summary *usecase.SummaryUseCase,
	sentiment *usecase.SentimentUseCase,
	forecast *usecase.ForecastUseCase,
	evaluator *usecase.EvaluatorUseCase,
) xhttp.Handler {
	return api.NewMarketHandler(l, registry, history, quotes, summary, sentiment, forecast, evaluator)
}

// ProvideApp assembles the application.
func ProvideApp(
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
) *server.App {
	return server.New(cfg, l, handler, quotes, evaluator, consumer, closesHandler, producer, stream, pipeline, sqliteClient, cache)
}
