package ports

import (
	"context"

	"adaptiveMABot/internal/domain"
)

// ResultRepository defines persistence for optimization result rows.
type ResultRepository interface {
	// SaveRows stores a batch of result rows from one optimization run.
	// The batch is written atomically.
	SaveRows(ctx context.Context, runLabel string, rows []domain.ResultRow) error

	// FindBySymbol retrieves the most recently stored rows for a symbol,
	// best-ranked first, up to limit.
	FindBySymbol(ctx context.Context, symbol string, limit int) ([]domain.ResultRow, error)

	// BestPerSymbol retrieves the single highest-return row for every
	// symbol seen so far, ordered by symbol.
	BestPerSymbol(ctx context.Context) ([]domain.ResultRow, error)

	// Close releases the underlying storage handle.
	Close() error
}
