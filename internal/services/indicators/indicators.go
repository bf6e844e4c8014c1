package indicators

import (
	"math"

	"IndexPulse/internal/domain/models"
)

// MinPoints is the series length below which Compute returns the
// degenerate zero-signal result instead of an error, so a low-confidence
// forecast can still be produced.
const MinPoints = 20

// RSIPeriod is the lookback for the relative strength index.
const RSIPeriod = 14

// Compute derives technical signals from a price series. It is pure:
// the same input always yields the same output.
func Compute(points []models.TimeSeriesPoint) models.Indicators {
	if len(points) < MinPoints {
		return models.Indicators{RSI: 50}
	}

	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}

	sma5 := mean(closes[len(closes)-5:])
	sma20 := mean(closes[len(closes)-20:])

	var trend float64
	if sma20 != 0 {
		trend = clamp((sma5-sma20)/sma20*10, -1, 1)
	}

	var momentum float64
	if ref := closes[len(closes)-5]; ref != 0 {
		momentum = clamp((closes[len(closes)-1]-ref)/ref*5, -1, 1)
	}

	return models.Indicators{
		Trend:        trend,
		Momentum:     momentum,
		Volatility:   annualizedVolatility(closes),
		RSI:          RSI(closes, RSIPeriod),
		SMA5:         sma5,
		SMA20:        sma20,
		CurrentPrice: closes[len(closes)-1],
	}
}

// RSI computes the relative strength index over simple average gain/loss
// of the trailing window. Returns 50 when fewer than period+1 closes are
// available and 100 when the average loss is zero.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 50
	}

	var avgGain, avgLoss float64
	for i := len(closes) - period; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// annualizedVolatility is the standard deviation of daily returns scaled
// by sqrt(252 trading days). Zero with fewer than 2 returns.
func annualizedVolatility(closes []float64) float64 {
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
	}
	if len(returns) < 2 {
		return 0
	}

	m := mean(returns)
	var sum2 float64
	for _, r := range returns {
		d := r - m
		sum2 += d * d
	}
	std := math.Sqrt(sum2 / float64(len(returns)))
	return std * math.Sqrt(252)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
