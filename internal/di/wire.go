//go:build wireinject
// +build wireinject

package di

import (
	"IndexPulse/pkg/config"
	"IndexPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideSQLiteClient,
		ProvideCache,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Stores and upstream clients
		ProvideMarketStore,
		ProvidePredictionStore,
		ProvideMarketDataSource,
		ProvideNewsSource,
		ProvideClassifier,
		ProvideAnalyzer,
		ProvideForecastEngine,
		ProvideQuoteStream,

		// Use cases
		ProvideRegistry,
		ProvideHistoryUseCase,
		ProvideQuoteUseCase,
		ProvideSummaryUseCase,
		ProvideSentimentUseCase,
		ProvideForecastUseCase,
		ProvideOutcomePublisher,
		ProvideEvaluatorUseCase,
		ProvideClosesHandler,
		ProvideQuotePipeline,

		// Surfaces
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
