package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"adaptiveMABot/config"
	"adaptiveMABot/internal/adapters/logger"
	"adaptiveMABot/internal/adapters/sqlite"
	"adaptiveMABot/internal/domain"
	"adaptiveMABot/internal/strategy/backtesting"
	"adaptiveMABot/internal/strategy/optimization"
	"adaptiveMABot/internal/strategy/regime"
	"adaptiveMABot/internal/utils"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Load price histories from the data directory (sorted filename
	// order keeps batch output deterministic)
	series := loadSeries(ctx, cfg.DataDir, appLogger)
	if len(series) == 0 {
		log.Fatalf("FATAL: no readable price histories in %s", cfg.DataDir)
	}

	// 4. Build the optimizer with the configured exit policy
	optimizer, err := optimization.New(optimization.Config{
		Simulation: backtesting.Config{
			CostBps:             cfg.CostBps,
			ExitMode:            cfg.ExitMode,
			HoldDays:            cfg.HoldDays,
			StopLoss:            cfg.StopLoss,
			TakeProfit:          cfg.TakeProfit,
			PositionGatedEquity: cfg.PositionGatedEquity,
		},
		Regime: regime.Config{
			Window:         cfg.RegimeWindow,
			VolThreshold:   cfg.VolThreshold,
			TrendThreshold: cfg.TrendThreshold,
		},
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to create optimizer")
		log.Fatalf("FATAL: Failed to create optimizer: %v", err)
	}

	// 5. Run the full grid sweep plus the regime-dynamic variant
	allRows, bestPerSymbol := optimizer.OptimizeAll(ctx, series, cfg.MATypes, cfg.MAPairs)
	dynamicBest := optimizer.OptimizeAllDynamic(ctx, series, cfg.MAPairs)
	appLogger.Info(ctx, "Optimization finished", map[string]interface{}{
		"symbols":     len(series),
		"rows":        len(allRows),
		"best":        len(bestPerSymbol),
		"dynamicBest": len(dynamicBest),
	})

	// 6. Write the ranked report tables
	if err := os.MkdirAll(cfg.ReportsDir, 0755); err != nil {
		log.Fatalf("FATAL: Failed to create reports directory: %v", err)
	}
	reports := []struct {
		name string
		rows []domain.ResultRow
	}{
		{"all_optimization_results.csv", allRows},
		{"best_per_symbol.csv", bestPerSymbol},
		{"best_dynamic_summary.csv", dynamicBest},
	}
	for _, report := range reports {
		path := filepath.Join(cfg.ReportsDir, report.name)
		if err := utils.WriteResultsToCSV(report.rows, path); err != nil {
			appLogger.Error(ctx, err, "Failed to write report", map[string]interface{}{"path": path})
			continue
		}
		appLogger.Info(ctx, "Report saved", map[string]interface{}{"path": path})
	}
	writePerSymbolReports(ctx, cfg.ReportsDir, allRows, appLogger)

	// 7. Persist the run to SQLite so history accumulates across runs
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		appLogger.Error(ctx, err, "Skipping result persistence")
		return
	}
	defer repo.Close()

	runLabel := time.Now().UTC().Format("20060102T150405Z")
	if err := repo.SaveRows(ctx, runLabel+"-grid", allRows); err != nil {
		appLogger.Error(ctx, err, "Failed to persist grid results")
	}
	if err := repo.SaveRows(ctx, runLabel+"-dynamic", dynamicBest); err != nil {
		appLogger.Error(ctx, err, "Failed to persist dynamic results")
	}
	appLogger.Info(ctx, "Run persisted", map[string]interface{}{"runLabel": runLabel})
}

// writePerSymbolReports splits the combined table into one ranked sweep
// report per symbol.
func writePerSymbolReports(ctx context.Context, reportsDir string, allRows []domain.ResultRow, appLogger *logger.StdLogger) {
	bySymbol := make(map[string][]domain.ResultRow)
	var symbols []string
	for _, row := range allRows {
		if _, seen := bySymbol[row.Symbol]; !seen {
			symbols = append(symbols, row.Symbol)
		}
		bySymbol[row.Symbol] = append(bySymbol[row.Symbol], row)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		rows := bySymbol[symbol]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Return > rows[j].Return })

		path := filepath.Join(reportsDir, "ma_optimization_"+symbol+".csv")
		if err := utils.WriteResultsToCSV(rows, path); err != nil {
			appLogger.Error(ctx, err, "Failed to write per-symbol report", map[string]interface{}{"path": path})
			continue
		}
		appLogger.Info(ctx, "Report saved", map[string]interface{}{"path": path})
	}
}

// loadSeries reads every CSV under dataDir; unreadable files are logged
// and skipped so one bad file never sinks the batch.
func loadSeries(ctx context.Context, dataDir string, appLogger *logger.StdLogger) []optimization.SymbolSeries {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		appLogger.Error(ctx, err, "Failed to read data directory", map[string]interface{}{"dataDir": dataDir})
		return nil
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".csv") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var series []optimization.SymbolSeries
	for _, name := range names {
		path := filepath.Join(dataDir, name)
		bars, err := utils.ReadBarsFromCSV(path)
		if err != nil {
			appLogger.Error(ctx, err, "Skipping unreadable price history", map[string]interface{}{"path": path})
			continue
		}
		series = append(series, optimization.SymbolSeries{
			Symbol: strings.TrimSuffix(name, ".csv"),
			Bars:   bars,
		})
		appLogger.Info(ctx, "Loaded price history", map[string]interface{}{"symbol": strings.TrimSuffix(name, ".csv"), "bars": len(bars)})
	}
	return series
}
