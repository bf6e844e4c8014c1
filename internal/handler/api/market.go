package api

import (
	"errors"

	models "IndexPulse/internal/domain/models"
	"IndexPulse/internal/usecase"
	xhttp "IndexPulse/pkg/http"
	xlogger "IndexPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MarketHandler exposes the index data, forecast and ledger endpoints.
type MarketHandler struct {
	logger    *xlogger.Logger
	registry  *usecase.Registry
	history   *usecase.HistoryUseCase
	quotes    *usecase.QuoteUseCase
	summary   *usecase.SummaryUseCase
	sentiment *usecase.SentimentUseCase
	forecast  *usecase.ForecastUseCase
	evaluator *usecase.EvaluatorUseCase
}

func NewMarketHandler(
	logger *xlogger.Logger,
	registry *usecase.Registry,
	history *usecase.HistoryUseCase,
	quotes *usecase.QuoteUseCase,
	summary *usecase.SummaryUseCase,
	sentiment *usecase.SentimentUseCase,
	forecast *usecase.ForecastUseCase,
	evaluator *usecase.EvaluatorUseCase,
) *MarketHandler {
	return &MarketHandler{
		logger:    logger,
		registry:  registry,
		history:   history,
		quotes:    quotes,
		summary:   summary,
		sentiment: sentiment,
		forecast:  forecast,
		evaluator: evaluator,
	}
}

func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/indices", h.Indices)
	g.GET("/quotes", h.Quotes)
	g.GET("/accuracy", h.AccuracyAll)
	g.GET("/indices/:id/history", h.History)
	g.GET("/indices/:id/quote", h.Quote)
	g.GET("/indices/:id/summary", h.Summary)
	g.GET("/indices/:id/sentiment", h.Sentiment)
	g.GET("/indices/:id/sentiment/trend", h.SentimentTrend)
	g.GET("/indices/:id/predict", h.Predict)
	g.GET("/indices/:id/accuracy", h.Accuracy)
	g.GET("/indices/:id/predictions", h.Predictions)
	g.POST("/indices/:id/evaluate", h.Evaluate)
}

func (h *MarketHandler) Indices(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.registry.List())
}

func (h *MarketHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.history.GetHistory(c.Request().Context(), usecase.GetHistoryParams{
		IndexID:  req.IndexID,
		Period:   req.Period,
		Interval: req.Interval,
	})
	if err != nil {
		h.logger.Error("history usecase error", xlogger.String("index_id", req.IndexID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, echo.Map{
		"index":          res.Index,
		"period":         res.Period,
		"interval":       res.Interval,
		"current_price":  res.CurrentPrice,
		"change_percent": res.ChangePercent,
		"from_cache":     res.FromCache,
		"data":           res.Points,
	})
}

func (h *MarketHandler) Quote(c echo.Context) error {
	indexID := c.Param("id")
	q, err := h.quotes.GetQuote(c.Request().Context(), indexID)
	if err != nil {
		h.logger.Error("quote usecase error", xlogger.String("index_id", indexID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, q)
}

// Quotes serves the whole board in one call; indices whose quote cannot
// be fetched right now are simply absent.
func (h *MarketHandler) Quotes(c echo.Context) error {
	quotes := h.quotes.GetAll(c.Request().Context())
	return xhttp.ListResponse(c, quotes, int64(len(quotes)))
}

func (h *MarketHandler) Summary(c echo.Context) error {
	indexID := c.Param("id")
	s, err := h.summary.GetSummary(c.Request().Context(), indexID)
	if err != nil {
		h.logger.Error("summary usecase error", xlogger.String("index_id", indexID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, s)
}

func (h *MarketHandler) Sentiment(c echo.Context) error {
	req := &models.SentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	snap, err := h.sentiment.GetSentiment(c.Request().Context(), req.IndexID)
	if err != nil {
		h.logger.Error("sentiment usecase error", xlogger.String("index_id", req.IndexID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, snap)
}

func (h *MarketHandler) SentimentTrend(c echo.Context) error {
	req := &models.SentimentTrendRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.sentiment.GetTrend(c.Request().Context(), req.IndexID, req.Days)
	if err != nil {
		h.logger.Error("sentiment trend usecase error", xlogger.String("index_id", req.IndexID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, echo.Map{
		"index": res.Index,
		"days":  res.Days,
		"trend": res.Points,
	})
}

func (h *MarketHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	f, err := h.forecast.Predict(c.Request().Context(), req.IndexID, req.Days)
	if err != nil {
		h.logger.Error("predict usecase error", xlogger.String("index_id", req.IndexID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, f)
}

func (h *MarketHandler) Accuracy(c echo.Context) error {
	req := &models.AccuracyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	stats, err := h.evaluator.Stats(c.Request().Context(), req.IndexID)
	if err != nil {
		if errors.Is(err, usecase.ErrNoEvaluations) {
			// Explicit empty marker rather than a zeroed aggregate.
			return xhttp.SuccessResponse(c, echo.Map{
				"index_id": req.IndexID,
				"no_data":  true,
				"message":  "no evaluated predictions yet",
			})
		}
		h.logger.Error("accuracy usecase error", xlogger.String("index_id", req.IndexID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, stats)
}

// AccuracyAll rolls accuracy up across every index. With nothing
// evaluated anywhere it answers the explicit empty marker instead of a
// zeroed aggregate.
func (h *MarketHandler) AccuracyAll(c echo.Context) error {
	rollup, err := h.evaluator.StatsAll(c.Request().Context())
	if err != nil {
		h.logger.Error("accuracy rollup error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	if rollup.Overall.Total == 0 {
		return xhttp.SuccessResponse(c, echo.Map{
			"no_data": true,
			"message": "no evaluated predictions yet",
			"indices": echo.Map{},
		})
	}
	return xhttp.SuccessResponse(c, rollup)
}

// Evaluate runs an on-demand evaluation pass for one index, sourcing
// closes from the daily series, and answers with the refreshed stats.
func (h *MarketHandler) Evaluate(c echo.Context) error {
	indexID := c.Param("id")
	n, err := h.evaluator.EvaluateIndex(c.Request().Context(), indexID)
	if err != nil {
		h.logger.Error("evaluate usecase error", xlogger.String("index_id", indexID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}

	resp := echo.Map{
		"index_id":  indexID,
		"evaluated": n,
	}
	stats, err := h.evaluator.Stats(c.Request().Context(), indexID)
	switch {
	case err == nil:
		resp["accuracy_stats"] = stats
	case errors.Is(err, usecase.ErrNoEvaluations):
		resp["no_data"] = true
	default:
		h.logger.Error("accuracy usecase error", xlogger.String("index_id", indexID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, resp)
}

func (h *MarketHandler) Predictions(c echo.Context) error {
	req := &models.PredictionHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	entries, err := h.evaluator.History(c.Request().Context(), usecase.PredictionHistoryParams{
		IndexID: req.IndexID,
		Days:    req.Days,
	})
	if err != nil {
		h.logger.Error("predictions usecase error", xlogger.String("index_id", req.IndexID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

// mapDomainError translates usecase sentinels into transport errors.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrUnknownIndex):
		return xhttp.NotFoundError("index not found").WithError(err)
	case errors.Is(err, usecase.ErrNoData):
		return xhttp.UnavailableError("market data unavailable").WithError(err)
	default:
		return err
	}
}
