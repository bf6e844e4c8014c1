package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"IndexPulse/internal/domain/models"
	domservice "IndexPulse/internal/domain/service"
	"IndexPulse/internal/service/ratelimit"
	xhttp "IndexPulse/pkg/http"
	applogger "IndexPulse/pkg/logger"
)

// ErrRateLimited is returned when the local token bucket refuses a call
// before it reaches the upstream.
var ErrRateLimited = fmt.Errorf("market data: local rate limit exceeded")

const limiterKey = "yahoo_chart"

// YahooSource fetches series and quotes from the Yahoo Finance chart API.
type YahooSource struct {
	baseURL string
	client  *xhttp.Client
	limiter *ratelimit.Limiter
	rate    float64
	burst   float64
	l       *applogger.Logger
}

type YahooOption func(*YahooSource)

// WithBaseURL overrides the chart API base URL (used in tests).
func WithBaseURL(u string) YahooOption {
	return func(s *YahooSource) {
		if u != "" {
			s.baseURL = u
		}
	}
}

// WithRateLimit sets the token bucket for outbound calls.
func WithRateLimit(perSec, burst float64) YahooOption {
	return func(s *YahooSource) {
		if perSec > 0 {
			s.rate = perSec
		}
		if burst > 0 {
			s.burst = burst
		}
	}
}

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) YahooOption {
	return func(s *YahooSource) { s.l = l }
}

func NewYahooSource(client *xhttp.Client, limiter *ratelimit.Limiter, opts ...YahooOption) *YahooSource {
	s := &YahooSource{
		baseURL: "https://query1.finance.yahoo.com/v8/finance/chart",
		client:  client,
		limiter: limiter,
		rate:    2,
		burst:   5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// chartResponse is the subset of the Yahoo chart payload we read. OHLCV
// arrays use pointers because Yahoo emits nulls for holiday bars.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string  `json:"symbol"`
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				ChartPreviousClose   float64 `json:"chartPreviousClose"`
				RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
				RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
				FiftyTwoWeekHigh     float64 `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow      float64 `json:"fiftyTwoWeekLow"`
				RegularMarketVolume  int64   `json:"regularMarketVolume"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (s *YahooSource) FetchSeries(ctx context.Context, symbol, period, interval string) ([]models.TimeSeriesPoint, error) {
	chart, err := s.fetchChart(ctx, symbol, period, interval)
	if err != nil {
		return nil, err
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	quote := result.Indicators.Quote[0]

	points := make([]models.TimeSeriesPoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			// null bar, holiday or halted session
			continue
		}
		p := models.TimeSeriesPoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			p.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			p.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			p.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			p.Volume = *quote.Volume[i]
		}
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	for i := 1; i < len(points); i++ {
		if prev := points[i-1].Close; prev != 0 {
			points[i].ChangePercent = (points[i].Close - prev) / prev * 100
		}
	}

	if s.l != nil {
		s.l.Debug("yahoo series fetched",
			applogger.String("symbol", symbol),
			applogger.String("period", period),
			applogger.String("interval", interval),
			applogger.Int("points", len(points)),
		)
	}
	return points, nil
}

func (s *YahooSource) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	chart, err := s.fetchChart(ctx, symbol, "1d", "1d")
	if err != nil {
		return nil, err
	}

	meta := chart.Chart.Result[0].Meta
	if meta.RegularMarketPrice == 0 {
		return nil, nil
	}
	q := &models.Quote{
		Symbol:           symbol,
		Price:            meta.RegularMarketPrice,
		PreviousClose:    meta.ChartPreviousClose,
		Volume:           meta.RegularMarketVolume,
		DayHigh:          meta.RegularMarketDayHigh,
		DayLow:           meta.RegularMarketDayLow,
		FiftyTwoWeekHigh: meta.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  meta.FiftyTwoWeekLow,
	}
	q.Change = q.Price - q.PreviousClose
	if q.PreviousClose != 0 {
		q.ChangePercent = q.Change / q.PreviousClose * 100
	}
	return q, nil
}

func (s *YahooSource) fetchChart(ctx context.Context, symbol, period, interval string) (*chartResponse, error) {
	if s.limiter != nil && !s.limiter.Allow(limiterKey, s.burst, s.rate) {
		return nil, ErrRateLimited
	}

	var chart chartResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/%s", s.baseURL, url.PathEscape(symbol)),
		Headers: map[string]string{
			"User-Agent": "Mozilla/5.0",
		},
		QueryParams: map[string][]string{
			"range":    {period},
			"interval": {interval},
		},
	}, &chart)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s", symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: empty result", symbol)
	}
	return &chart, nil
}

var _ domservice.MarketDataSource = (*YahooSource)(nil)
