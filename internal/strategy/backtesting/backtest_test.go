package backtesting

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"adaptiveMABot/internal/domain"
	"adaptiveMABot/internal/ports"
)

var testStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// annotatedSeries builds a daily series where every bar trades at the
// given price with the slow MA pinned well below it, so entries are only
// driven by the crossover flags set afterwards.
func annotatedSeries(prices ...float64) []*domain.AnnotatedBar {
	series := make([]*domain.AnnotatedBar, len(prices))
	for i, p := range prices {
		series[i] = &domain.AnnotatedBar{
			Bar: domain.Bar{
				Date:  testStart.AddDate(0, 0, i),
				Open:  p,
				High:  p,
				Low:   p,
				Close: p,
			},
			MAFast: p,
			MASlow: p - 10,
		}
	}
	return series
}

func timeConfig(holdDays int) Config {
	return Config{
		Symbol:   "BTCUSDT",
		ExitMode: domain.ExitOnTime,
		HoldDays: holdDays,
	}
}

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 0.0001
}

func TestSimulate_TimeExit(t *testing.T) {
	// Bullish cross on the second bar, entry filled at the third bar's
	// open, exit filled at the open of the first bar at least 5 calendar
	// days past entry.
	series := annotatedSeries(100, 101, 102, 103, 104, 105, 106, 107, 108, 109)
	series[1].Crossover = 2

	cfg := timeConfig(5)
	cfg.CostBps = 15

	result, err := Simulate(context.Background(), series, cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(result.Trades))
	}

	trade := result.Trades[0]
	if !trade.EntryDate.Equal(series[2].Date) {
		t.Errorf("Expected entry on %s, got %s", series[2].Date, trade.EntryDate)
	}
	if trade.EntryPrice != 102 {
		t.Errorf("Expected entry fill at open 102, got %f", trade.EntryPrice)
	}
	if !trade.ExitDate.Equal(series[7].Date) {
		t.Errorf("Expected exit on %s, got %s", series[7].Date, trade.ExitDate)
	}
	if days := int(trade.ExitDate.Sub(trade.EntryDate).Hours() / 24); days != 5 {
		t.Errorf("Expected exit 5 calendar days after entry, got %d", days)
	}
	if trade.CloseReason != domain.CloseReason("5-day exit") {
		t.Errorf("Expected close reason %q, got %q", "5-day exit", trade.CloseReason)
	}
	// Round-trip cost at 15bps is 0.003 against the gross return.
	wantNet := 107.0/102.0 - 1 - 0.003
	if !floatEquals(trade.NetReturn, wantNet) {
		t.Errorf("Expected net return %f, got %f", wantNet, trade.NetReturn)
	}
}

func TestSimulate_EntryRequiresCloseAboveSlowMA(t *testing.T) {
	series := annotatedSeries(100, 101, 102, 103, 104, 105)
	series[1].Crossover = 2
	series[1].MASlow = series[1].Close + 1 // cross without confirmation

	result, err := Simulate(context.Background(), series, timeConfig(2))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Trades) != 0 {
		t.Errorf("Expected no trades for an unconfirmed cross, got %d", len(result.Trades))
	}
}

func TestSimulate_OppositeExit(t *testing.T) {
	series := annotatedSeries(100, 101, 102, 103, 104, 105)
	series[1].Crossover = 2
	series[3].Crossover = -2

	cfg := Config{Symbol: "ETHUSDT", ExitMode: domain.ExitOnOpposite}
	result, err := Simulate(context.Background(), series, cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(result.Trades))
	}

	trade := result.Trades[0]
	if trade.CloseReason != domain.CloseReasonOpposite {
		t.Errorf("Expected close reason %q, got %q", domain.CloseReasonOpposite, trade.CloseReason)
	}
	// The bearish cross on the fourth bar fills at the fifth bar's open.
	if !trade.ExitDate.Equal(series[4].Date) {
		t.Errorf("Expected exit on %s, got %s", series[4].Date, trade.ExitDate)
	}
	if trade.ExitPrice != 104 {
		t.Errorf("Expected exit fill at open 104, got %f", trade.ExitPrice)
	}
}

func TestSimulate_StopLossBeatsBearishCrossInTimeMode(t *testing.T) {
	// In time mode a bearish cross is not an exit condition, so the 4%
	// drop hits the 3% stop first.
	series := annotatedSeries(100, 100, 100, 100, 100, 100)
	series[1].Crossover = 2
	series[3].Crossover = -2
	series[4].Low = 96 // 4% below the entry fill of 100
	series[4].Open = 97

	cfg := timeConfig(30)
	cfg.StopLoss = 0.03

	result, err := Simulate(context.Background(), series, cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(result.Trades))
	}

	trade := result.Trades[0]
	if trade.CloseReason != domain.CloseReason("Stop loss (3.0%)") {
		t.Errorf("Expected stop-loss close reason, got %q", trade.CloseReason)
	}
	// The fill is the bar's open, not the stop trigger price.
	if trade.ExitPrice != 97 {
		t.Errorf("Expected exit fill at open 97, got %f", trade.ExitPrice)
	}
}

func TestSimulate_TakeProfitExit(t *testing.T) {
	series := annotatedSeries(100, 100, 100, 100, 100, 100)
	series[1].Crossover = 2
	series[4].High = 106 // 6% above the entry fill of 100

	cfg := timeConfig(30)
	cfg.TakeProfit = 0.05

	result, err := Simulate(context.Background(), series, cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(result.Trades))
	}
	if result.Trades[0].CloseReason != domain.CloseReason("Take profit (5.0%)") {
		t.Errorf("Expected take-profit close reason, got %q", result.Trades[0].CloseReason)
	}
}

func TestSimulate_EntryBarNeverExitsSameBar(t *testing.T) {
	// The entry bar's own low is below the stop level; the exit check
	// still only runs from the following bar.
	series := annotatedSeries(100, 100, 100, 100, 100)
	series[1].Crossover = 2
	series[2].Low = 90
	series[3].Low = 90
	series[3].Open = 95

	cfg := timeConfig(30)
	cfg.StopLoss = 0.03

	result, err := Simulate(context.Background(), series, cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(result.Trades))
	}
	if !result.Trades[0].ExitDate.Equal(series[3].Date) {
		t.Errorf("Expected exit on the bar after entry, got %s", result.Trades[0].ExitDate)
	}
}

func TestSimulate_OpenPositionAtEndExcluded(t *testing.T) {
	series := annotatedSeries(100, 101, 102, 103)
	series[1].Crossover = 2

	result, err := Simulate(context.Background(), series, timeConfig(30))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Trades) != 0 {
		t.Errorf("Expected the still-open position to be excluded, got %d trades", len(result.Trades))
	}
	if len(result.Equity) != len(series) {
		t.Errorf("Expected %d equity points, got %d", len(series), len(result.Equity))
	}
}

func TestSimulate_FlatSeriesProducesNoTrades(t *testing.T) {
	series := annotatedSeries(100, 100, 100, 100, 100, 100)

	result, err := Simulate(context.Background(), series, timeConfig(7))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Trades) != 0 {
		t.Errorf("Expected no trades on a flat series, got %d", len(result.Trades))
	}
	for i, e := range result.Equity {
		if !floatEquals(e, 1.0) {
			t.Errorf("Equity point %d: expected 1.0, got %f", i, e)
		}
	}
}

func TestSimulate_EquityCurve(t *testing.T) {
	series := annotatedSeries(100, 110, 99, 108.9)

	result, err := Simulate(context.Background(), series, timeConfig(7))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []float64{1.0, 1.1, 0.99, 1.089}
	if len(result.Equity) != len(expected) {
		t.Fatalf("Expected %d equity points, got %d", len(expected), len(result.Equity))
	}
	for i := range expected {
		if !floatEquals(result.Equity[i], expected[i]) {
			t.Errorf("Equity point %d: expected %f, got %f", i, expected[i], result.Equity[i])
		}
	}
}

func TestSimulate_PositionGatedEquityStaysFlatWhileFlat(t *testing.T) {
	series := annotatedSeries(100, 110, 99, 108.9)

	cfg := timeConfig(7)
	cfg.PositionGatedEquity = true

	result, err := Simulate(context.Background(), series, cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i, e := range result.Equity {
		if !floatEquals(e, 1.0) {
			t.Errorf("Equity point %d: expected flat 1.0 with no position, got %f", i, e)
		}
	}
}

func TestSimulate_ConfigValidation(t *testing.T) {
	series := annotatedSeries(100, 101, 102)

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "unknown exit mode", cfg: Config{ExitMode: "trailing"}},
		{name: "time mode without hold days", cfg: Config{ExitMode: domain.ExitOnTime}},
		{name: "negative cost", cfg: Config{ExitMode: domain.ExitOnTime, HoldDays: 7, CostBps: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Simulate(context.Background(), series, tt.cfg)
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if !errors.Is(err, ports.ErrConfiguration) {
				t.Errorf("Expected configuration error, got %v", err)
			}
		})
	}
}

func TestSimulate_DataValidation(t *testing.T) {
	t.Run("too few bars", func(t *testing.T) {
		_, err := Simulate(context.Background(), annotatedSeries(100), timeConfig(7))
		if !errors.Is(err, ports.ErrInsufficientData) {
			t.Errorf("Expected insufficient data error, got %v", err)
		}
	})

	t.Run("duplicate dates", func(t *testing.T) {
		series := annotatedSeries(100, 101, 102)
		series[2].Date = series[1].Date
		_, err := Simulate(context.Background(), series, timeConfig(7))
		if !errors.Is(err, ports.ErrDataIntegrity) {
			t.Errorf("Expected data integrity error, got %v", err)
		}
	})

	t.Run("out of order dates", func(t *testing.T) {
		series := annotatedSeries(100, 101, 102)
		series[0].Date, series[1].Date = series[1].Date, series[0].Date
		_, err := Simulate(context.Background(), series, timeConfig(7))
		if !errors.Is(err, ports.ErrDataIntegrity) {
			t.Errorf("Expected data integrity error, got %v", err)
		}
	})
}
