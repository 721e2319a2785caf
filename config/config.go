package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"adaptiveMABot/internal/adapters/logger"
	"adaptiveMABot/internal/domain"
	"adaptiveMABot/internal/strategy/optimization"
)

// Config holds all application configuration.
type Config struct {
	// Binance API (only the data fetch CLI needs credentials; klines are
	// a public endpoint)
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Paths
	DataDir    string
	ReportsDir string
	DBPath     string

	// Universe (for the data fetch CLI)
	Symbols     []string
	FetchMonths int

	// Simulation exit policy applied to every grid point
	CostBps             float64
	ExitMode            domain.ExitMode
	HoldDays            int
	StopLoss            float64 // fraction; <= 0 disables
	TakeProfit          float64 // fraction; <= 0 disables
	PositionGatedEquity bool

	// Optimization grid
	MAPairs []optimization.Pair
	MATypes []domain.MAType

	// Regime classification
	RegimeWindow   int
	VolThreshold   float64
	TrendThreshold float64

	// Logging
	LogLevel logger.LogLevel
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Binance API (optional: klines work unauthenticated)
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)

	// Paths
	cfg.DataDir = getEnv("DATA_DIR", "./data/processed")
	cfg.ReportsDir = getEnv("REPORTS_DIR", "./reports")
	cfg.DBPath = getEnv("DB_PATH", "./data/optimization.db")
	if cfg.DataDir == "" || cfg.ReportsDir == "" || cfg.DBPath == "" {
		errs = append(errs, "DATA_DIR, REPORTS_DIR and DB_PATH must be set")
	}

	// Universe
	cfg.Symbols = splitList(getEnv("SYMBOLS", "BTCUSDT,ETHUSDT,BNBUSDT,SOLUSDT,XRPUSDT"))
	if len(cfg.Symbols) == 0 {
		errs = append(errs, "SYMBOLS must name at least one symbol")
	}
	cfg.FetchMonths = getEnvAsInt("FETCH_MONTHS", 12)
	if cfg.FetchMonths <= 0 {
		errs = append(errs, "FETCH_MONTHS must be positive")
	}

	// Simulation exit policy
	cfg.CostBps, err = getEnvAsFloatRequired("COST_BPS", 15.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid COST_BPS: %v", err))
	} else if cfg.CostBps < 0 {
		errs = append(errs, "COST_BPS cannot be negative")
	}

	exitMode := domain.ExitMode(getEnv("EXIT_MODE", "time"))
	switch exitMode {
	case domain.ExitOnOpposite, domain.ExitOnTime:
		cfg.ExitMode = exitMode
	default:
		errs = append(errs, fmt.Sprintf("EXIT_MODE must be %q or %q, got %q", domain.ExitOnOpposite, domain.ExitOnTime, exitMode))
	}

	cfg.HoldDays = getEnvAsInt("HOLD_DAYS", 7)
	if cfg.ExitMode == domain.ExitOnTime && cfg.HoldDays <= 0 {
		errs = append(errs, "HOLD_DAYS must be positive in time exit mode")
	}

	cfg.StopLoss, err = getEnvAsFloatRequired("STOP_LOSS", 0.03)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid STOP_LOSS: %v", err))
	} else if cfg.StopLoss >= 1.0 {
		errs = append(errs, "STOP_LOSS must be below 1.0")
	}

	cfg.TakeProfit, err = getEnvAsFloatRequired("TAKE_PROFIT", 0.05)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TAKE_PROFIT: %v", err))
	}

	cfg.PositionGatedEquity = getEnvAsBool("POSITION_GATED_EQUITY", false)

	// Optimization grid
	cfg.MAPairs, err = parseMAPairs(getEnv("MA_PAIRS", "10/20,12/26,20/50,50/100,50/200"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MA_PAIRS: %v", err))
	}
	cfg.MATypes, err = parseMATypes(getEnv("MA_TYPES", "EMA,SMA"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MA_TYPES: %v", err))
	}

	// Regime classification
	cfg.RegimeWindow = getEnvAsInt("REGIME_WINDOW", 20)
	if cfg.RegimeWindow < 2 {
		errs = append(errs, "REGIME_WINDOW must be at least 2")
	}
	cfg.VolThreshold = getEnvAsFloat("VOL_THRESHOLD", 0.01)
	cfg.TrendThreshold = getEnvAsFloat("TREND_THRESHOLD", 0.05)
	if cfg.VolThreshold < 0 || cfg.TrendThreshold < 0 {
		errs = append(errs, "regime thresholds cannot be negative")
	}

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// parseMAPairs parses a grid like "10/20,12/26" into window pairs.
func parseMAPairs(s string) ([]optimization.Pair, error) {
	var pairs []optimization.Pair
	for _, part := range splitList(s) {
		fastStr, slowStr, found := strings.Cut(part, "/")
		if !found {
			return nil, fmt.Errorf("pair %q must look like fast/slow", part)
		}
		fast, err := strconv.Atoi(strings.TrimSpace(fastStr))
		if err != nil {
			return nil, fmt.Errorf("pair %q: bad fast window: %w", part, err)
		}
		slow, err := strconv.Atoi(strings.TrimSpace(slowStr))
		if err != nil {
			return nil, fmt.Errorf("pair %q: bad slow window: %w", part, err)
		}
		if fast <= 0 || slow <= 0 {
			return nil, fmt.Errorf("pair %q: windows must be positive", part)
		}
		pairs = append(pairs, optimization.Pair{Fast: fast, Slow: slow})
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no pairs given")
	}
	return pairs, nil
}

// parseMATypes parses a family list like "EMA,SMA".
func parseMATypes(s string) ([]domain.MAType, error) {
	var types []domain.MAType
	for _, part := range splitList(s) {
		switch t := domain.MAType(strings.ToUpper(part)); t {
		case domain.SimpleMA, domain.ExponentialMA, domain.WeightedMA:
			types = append(types, t)
		default:
			return nil, fmt.Errorf("unknown MA type %q", part)
		}
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("no MA types given")
	}
	return types, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
