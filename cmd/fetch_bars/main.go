package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"adaptiveMABot/config"
	"adaptiveMABot/internal/adapters/binanceclient"
	"adaptiveMABot/internal/adapters/logger"
	"adaptiveMABot/internal/utils"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Market Data Client (Binance Adapter)
	client, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("FATAL: Failed to create data directory: %v", err)
	}

	end := time.Now().UTC()
	start := end.AddDate(0, -cfg.FetchMonths, 0)

	// 4. Fetch and save daily bars per symbol; one failed symbol does not
	// stop the rest.
	for _, symbol := range cfg.Symbols {
		bars, err := client.GetDailyBars(ctx, symbol, start, end)
		if err != nil {
			appLogger.Error(ctx, err, "Error fetching daily bars", map[string]interface{}{"symbol": symbol})
			continue
		}
		if len(bars) == 0 {
			appLogger.Warn(ctx, "No bars returned", map[string]interface{}{"symbol": symbol})
			continue
		}

		filename := filepath.Join(cfg.DataDir, symbol+".csv")
		if err := utils.WriteBarsToCSV(bars, filename); err != nil {
			appLogger.Error(ctx, err, "Error writing CSV", map[string]interface{}{"filename": filename})
			continue
		}
		appLogger.Info(ctx, "Saved daily bars", map[string]interface{}{
			"symbol":   symbol,
			"bars":     len(bars),
			"filename": filename,
		})
	}
}
