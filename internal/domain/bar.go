package domain

import "time"

// Bar represents a single daily OHLCV price record.
type Bar struct {
	Date   time.Time // Trading day, normalized to midnight UTC
	Open   float64   // Opening price
	High   float64   // Highest price
	Low    float64   // Lowest price
	Close  float64   // Closing price
	Volume float64   // Traded volume
}

// AnnotatedBar augments a Bar with the moving averages and the derived
// signal/crossover columns consumed by the trade simulator.
// MAFast/MASlow hold NaN during the warm-up window and Signal is 0 there,
// so a warm-up bar can be told apart from a genuinely flat signal by
// checking the averages.
type AnnotatedBar struct {
	Bar
	MAFast    float64
	MASlow    float64
	Signal    int // 1 when fast MA is above slow, -1 below, 0 on tie or warm-up
	Crossover int // Day-over-day delta of Signal: +2 bullish cross, -2 bearish
}
