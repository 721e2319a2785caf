package domain

// ResultRow is one evaluated optimizer configuration together with its
// reported metrics. It is the unit persisted to CSV reports and the
// database; consumers read the first row of a ranked table as "best".
//
// Percent-scale fields (Return, WinRate, MaxDD, Volatility, TrendStrength)
// are stored on the percent scale rounded to two decimals; rounding happens
// only here, at the reporting boundary. Sharpe is a plain annualized ratio.
type ResultRow struct {
	Symbol        string
	MAType        MAType
	MAPair        string // "fast/slow"
	Volatility    float64
	TrendStrength float64
	Return        float64
	WinRate       float64
	Sharpe        float64
	MaxDD         float64
	Trades        int
}
