package optimization

import (
	"context"
	"fmt"
	"math"
	"sort"

	"adaptiveMABot/internal/domain"
	"adaptiveMABot/internal/ports"
	"adaptiveMABot/internal/strategy/analytics"
	"adaptiveMABot/internal/strategy/backtesting"
	"adaptiveMABot/internal/strategy/indicators"
	"adaptiveMABot/internal/strategy/regime"
)

// Pair is one (fast, slow) moving-average window combination.
type Pair struct {
	Fast int
	Slow int
}

// String renders the pair the way reports expect it, e.g. "10/20".
func (p Pair) String() string {
	return fmt.Sprintf("%d/%d", p.Fast, p.Slow)
}

// DefaultPairs returns the conventional sweep grid.
func DefaultPairs() []Pair {
	return []Pair{{10, 20}, {12, 26}, {20, 50}, {50, 100}, {50, 200}}
}

// SymbolSeries pairs a symbol with its raw price history.
type SymbolSeries struct {
	Symbol string
	Bars   []*domain.Bar
}

// Config holds configuration for the optimizer. Simulation carries the
// fixed exit policy applied to every grid point; Symbol is filled in per
// sweep.
type Config struct {
	Simulation backtesting.Config
	Regime     regime.Config
	Logger     ports.Logger
}

// Optimizer sweeps moving-average window grids over price histories,
// ranking the evaluated configurations by total return. Computation is
// pure per grid point; persistence of the ranked tables is left to the
// caller.
type Optimizer struct {
	cfg        Config
	classifier *regime.Classifier
	logger     ports.Logger
}

// New creates an optimizer, validating the regime configuration.
func New(cfg Config) (*Optimizer, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("%w: logger is required", ports.ErrConfiguration)
	}
	classifier, err := regime.NewClassifier(cfg.Regime)
	if err != nil {
		return nil, err
	}
	return &Optimizer{cfg: cfg, classifier: classifier, logger: cfg.Logger}, nil
}

// Optimize evaluates every pair for one symbol and family and returns the
// rows ranked by Return descending. The sort is stable, so tied returns
// keep their input order. An empty pair list falls back to DefaultPairs.
func (o *Optimizer) Optimize(ctx context.Context, symbol string, bars []*domain.Bar, pairs []Pair, maType domain.MAType) ([]domain.ResultRow, error) {
	assessment := o.classifier.Classify(bars)
	return o.sweep(ctx, symbol, bars, pairs, maType, assessment)
}

// OptimizeDynamic evaluates every pair for one symbol with the family
// chosen once by the regime classifier rather than supplied by the caller.
func (o *Optimizer) OptimizeDynamic(ctx context.Context, symbol string, bars []*domain.Bar, pairs []Pair) ([]domain.ResultRow, error) {
	assessment := o.classifier.Classify(bars)
	o.logger.Info(ctx, "Regime-selected MA family", map[string]interface{}{
		"symbol":        symbol,
		"volatility":    assessment.Volatility,
		"trendStrength": assessment.TrendStrength,
		"maType":        string(assessment.MAType),
	})
	return o.sweep(ctx, symbol, bars, pairs, assessment.MAType, assessment)
}

// OptimizeAll sweeps every symbol x family combination. A failure in one
// combination is logged and skipped; the returned tables are the
// concatenation of whatever succeeded plus the top-ranked row per symbol.
func (o *Optimizer) OptimizeAll(ctx context.Context, series []SymbolSeries, maTypes []domain.MAType, pairs []Pair) (all, best []domain.ResultRow) {
	for _, s := range series {
		for _, maType := range maTypes {
			rows, err := o.Optimize(ctx, s.Symbol, s.Bars, pairs, maType)
			if err != nil {
				o.logger.Error(ctx, err, "Skipping symbol/family combination", map[string]interface{}{
					"symbol": s.Symbol,
					"maType": string(maType),
				})
				continue
			}
			all = append(all, rows...)
		}
	}
	return all, BestPerSymbol(all)
}

// OptimizeAllDynamic runs the dynamic sweep per symbol and collects the
// best row of each; failed symbols are logged and skipped.
func (o *Optimizer) OptimizeAllDynamic(ctx context.Context, series []SymbolSeries, pairs []Pair) []domain.ResultRow {
	var best []domain.ResultRow
	for _, s := range series {
		rows, err := o.OptimizeDynamic(ctx, s.Symbol, s.Bars, pairs)
		if err != nil {
			o.logger.Error(ctx, err, "Skipping symbol in dynamic optimization", map[string]interface{}{
				"symbol": s.Symbol,
			})
			continue
		}
		if len(rows) > 0 {
			best = append(best, rows[0])
		}
	}
	return best
}

func (o *Optimizer) sweep(ctx context.Context, symbol string, bars []*domain.Bar, pairs []Pair, maType domain.MAType, assessment regime.Assessment) ([]domain.ResultRow, error) {
	if len(pairs) == 0 {
		pairs = DefaultPairs()
	}

	rows := make([]domain.ResultRow, 0, len(pairs))
	for _, p := range pairs {
		series, err := indicators.Annotate(bars, maType, p.Fast, p.Slow)
		if err != nil {
			return nil, fmt.Errorf("annotating %s pair %s: %w", symbol, p, err)
		}

		simCfg := o.cfg.Simulation
		simCfg.Symbol = symbol
		result, err := backtesting.Simulate(ctx, series, simCfg)
		if err != nil {
			return nil, fmt.Errorf("simulating %s pair %s: %w", symbol, p, err)
		}

		metrics := analytics.Analyze(result.Trades, result.Equity)
		rows = append(rows, domain.ResultRow{
			Symbol:        symbol,
			MAType:        maType,
			MAPair:        p.String(),
			Volatility:    round2(assessment.Volatility * 100),
			TrendStrength: round2(assessment.TrendStrength * 100),
			Return:        round2(metrics.TotalReturn * 100),
			WinRate:       round2(metrics.WinRate * 100),
			Sharpe:        round2(metrics.SharpeRatio),
			MaxDD:         round2(metrics.MaxDrawdown * 100),
			Trades:        metrics.Trades,
		})
	}

	rankRows(rows)
	return rows, nil
}

// rankRows sorts rows best-first by Return. Stable: tied returns keep
// insertion order, there is no secondary key.
func rankRows(rows []domain.ResultRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Return > rows[j].Return
	})
}

// BestPerSymbol derives the top-ranked row per symbol from a combined
// table, ordered by symbol.
func BestPerSymbol(rows []domain.ResultRow) []domain.ResultRow {
	sorted := make([]domain.ResultRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Symbol != sorted[j].Symbol {
			return sorted[i].Symbol < sorted[j].Symbol
		}
		return sorted[i].Return > sorted[j].Return
	})

	best := make([]domain.ResultRow, 0)
	for _, r := range sorted {
		if len(best) == 0 || best[len(best)-1].Symbol != r.Symbol {
			best = append(best, r)
		}
	}
	return best
}

// round2 rounds to two decimals at the reporting boundary.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
