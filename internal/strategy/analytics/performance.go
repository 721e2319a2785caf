package analytics

import (
	"math"

	"adaptiveMABot/internal/domain"
)

// periodsPerYear is the fixed annualization factor for the Sharpe ratio
// (trading days per year). It is not configurable.
const periodsPerYear = 252

// Metrics holds the performance summary derived from one simulation run.
// All values are kept at full precision; rounding happens only at the
// reporting boundary.
type Metrics struct {
	TotalReturn float64 // compounded over closed trades, as a fraction
	MaxDrawdown float64 // most negative peak-to-trough fraction, always <= 0
	SharpeRatio float64 // annualized mean/stdev of daily equity returns
	WinRate     float64 // fraction of trades with positive net return, in [0,1]
	Trades      int
}

// Analyze derives Metrics from a trade ledger and an equity curve. Pure:
// it reads both inputs and mutates neither. With no trades, TotalReturn
// and WinRate are 0.
func Analyze(trades []*domain.Trade, equity []float64) *Metrics {
	m := &Metrics{Trades: len(trades)}

	if len(trades) > 0 {
		compounded := 1.0
		wins := 0
		for _, t := range trades {
			compounded *= 1 + t.NetReturn
			if t.NetReturn > 0 {
				wins++
			}
		}
		m.TotalReturn = compounded - 1
		m.WinRate = float64(wins) / float64(len(trades))
	}

	m.MaxDrawdown = maxDrawdown(equity)
	m.SharpeRatio = sharpeRatio(dailyReturns(equity))
	return m
}

// dailyReturns is the percentage change of the equity curve with the
// leading undefined entry filled with 0.
func dailyReturns(equity []float64) []float64 {
	if len(equity) == 0 {
		return nil
	}
	returns := make([]float64, len(equity))
	for i := 1; i < len(equity); i++ {
		if equity[i-1] != 0 {
			returns[i] = equity[i]/equity[i-1] - 1
		}
	}
	return returns
}

// maxDrawdown returns the worst decline from a running peak as a negative
// fraction (0 for a curve that never dips below its peak).
func maxDrawdown(equity []float64) float64 {
	worst := 0.0
	peak := math.Inf(-1)
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if dd := e/peak - 1; dd < worst {
			worst = dd
		}
	}
	return worst
}

// sharpeRatio annualizes mean/stdev of the daily returns, returning 0.0
// when the standard deviation is zero or undefined so a flat curve never
// produces NaN.
func sharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	stdDev := math.Sqrt(variance)

	if stdDev == 0 || math.IsNaN(stdDev) {
		return 0
	}
	return mean / stdDev * math.Sqrt(periodsPerYear)
}
