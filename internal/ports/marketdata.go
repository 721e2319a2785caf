package ports

import (
	"context"
	"time"

	"adaptiveMABot/internal/domain"
)

// MarketDataClient defines the interface for fetching historical daily
// bars from an external market-data provider.
type MarketDataClient interface {
	// GetDailyBars fetches daily bars for symbol covering [start, end],
	// normalized to date-keyed, de-duplicated, ascending order.
	GetDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]*domain.Bar, error)
}
