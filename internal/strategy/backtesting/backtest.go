package backtesting

import (
	"context"
	"fmt"
	"time"

	"adaptiveMABot/internal/domain"
	"adaptiveMABot/internal/ports"
)

// Config holds the levers for one simulation run.
type Config struct {
	Symbol   string
	CostBps  float64 // one-way cost in basis points; round trip charges 2x
	ExitMode domain.ExitMode
	HoldDays int // calendar-day holding limit, ExitOnTime only

	// StopLoss/TakeProfit are fractions relative to the entry price; a
	// value <= 0 disables the rule. Both are active regardless of the
	// exit mode when enabled.
	StopLoss   float64
	TakeProfit float64

	// PositionGatedEquity advances the equity curve only while a position
	// is open. The default (false) matches the market-return
	// approximation: the curve follows raw close-to-close returns on
	// every bar regardless of position state.
	PositionGatedEquity bool
}

// Result holds the output of one simulation run: the trade ledger and the
// equity curve. An open position at series end is excluded from the
// ledger; that is deliberate policy, not an omission.
type Result struct {
	Trades []*domain.Trade
	Equity []float64 // capital multipliers, one per bar, seeded at 1.0
}

// Simulate runs the long-only crossover state machine over an annotated
// series, iterated once in date order starting at the second bar.
//
// Transitions read the PRIOR bar's crossover and price and fill at the
// CURRENT bar's open, a one-bar execution lag:
//
//   - FLAT -> LONG when the prior bar crossed bullish (+2) and its close
//     was above the slow MA (whipsaw confirmation).
//   - LONG -> FLAT on the first matching exit, in priority order:
//     opposite crossover (opposite mode, unconfirmed), calendar-day hold
//     (time mode), stop-loss on the current low, take-profit on the
//     current high. Exit fills use the current open, not the trigger
//     price.
//
// Every closed trade pays the round-trip cost 2*CostBps/10000 against its
// gross return.
func Simulate(ctx context.Context, series []*domain.AnnotatedBar, cfg Config) (*Result, error) {
	switch cfg.ExitMode {
	case domain.ExitOnOpposite:
	case domain.ExitOnTime:
		if cfg.HoldDays <= 0 {
			return nil, fmt.Errorf("%w: hold days must be positive in time exit mode, got %d", ports.ErrConfiguration, cfg.HoldDays)
		}
	default:
		return nil, fmt.Errorf("%w: unknown exit mode %q", ports.ErrConfiguration, cfg.ExitMode)
	}
	if cfg.CostBps < 0 {
		return nil, fmt.Errorf("%w: cost cannot be negative, got %.2f bps", ports.ErrConfiguration, cfg.CostBps)
	}
	if len(series) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 bars to simulate, got %d", ports.ErrInsufficientData, len(series))
	}
	for i := 1; i < len(series); i++ {
		if !series[i].Date.After(series[i-1].Date) {
			return nil, fmt.Errorf("%w: bar %d (%s) does not follow %s", ports.ErrDataIntegrity,
				i, series[i].Date.Format("2006-01-02"), series[i-1].Date.Format("2006-01-02"))
		}
	}

	cost := 2 * cfg.CostBps / 10000
	var position *domain.Position
	var trades []*domain.Trade
	equity := make([]float64, 1, len(series))
	equity[0] = 1.0

	for i := 1; i < len(series); i++ {
		prev, curr := series[i-1], series[i]

		entered := false
		if position == nil && prev.Crossover == 2 && prev.Close > prev.MASlow {
			position = &domain.Position{EntryPrice: curr.Open, EntryDate: curr.Date}
			entered = true
		}

		if position != nil && !entered {
			var reason domain.CloseReason
			switch {
			case cfg.ExitMode == domain.ExitOnOpposite && prev.Crossover == -2:
				reason = domain.CloseReasonOpposite
			case cfg.ExitMode == domain.ExitOnTime && calendarDays(position.EntryDate, curr.Date) >= cfg.HoldDays:
				reason = domain.TimeExitReason(cfg.HoldDays)
			case cfg.StopLoss > 0 && curr.Low <= position.EntryPrice*(1-cfg.StopLoss):
				reason = domain.StopLossReason(cfg.StopLoss)
			case cfg.TakeProfit > 0 && curr.High >= position.EntryPrice*(1+cfg.TakeProfit):
				reason = domain.TakeProfitReason(cfg.TakeProfit)
			}
			if reason != "" {
				exitPrice := curr.Open
				trades = append(trades, &domain.Trade{
					Symbol:      cfg.Symbol,
					EntryDate:   position.EntryDate,
					ExitDate:    curr.Date,
					EntryPrice:  position.EntryPrice,
					ExitPrice:   exitPrice,
					NetReturn:   (exitPrice/position.EntryPrice - 1) - cost,
					CloseReason: reason,
				})
				position = nil
			}
		}

		// Equity tracks the bar's raw close-to-close return; in gated
		// mode the curve stays flat whenever no position is held at the
		// bar's close.
		ret := 0.0
		if prev.Close != 0 {
			ret = curr.Close/prev.Close - 1
		}
		if cfg.PositionGatedEquity && position == nil {
			ret = 0
		}
		equity = append(equity, equity[len(equity)-1]*(1+ret))
	}

	return &Result{Trades: trades, Equity: equity}, nil
}

// calendarDays returns the number of whole calendar days between two
// midnight-normalized dates.
func calendarDays(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}
