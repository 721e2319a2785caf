package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"adaptiveMABot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "optimizer-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	repo, err := NewRepository(Config{
		DBPath: dbPath,
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}

	return repo, cleanup
}

func sampleRows() []domain.ResultRow {
	return []domain.ResultRow{
		{
			Symbol: "BTCUSDT", MAType: domain.ExponentialMA, MAPair: "12/26",
			Volatility: 2.41, TrendStrength: 11.05,
			Return: 18.18, WinRate: 100.0, Sharpe: 1.92, MaxDD: -4.5, Trades: 1,
		},
		{
			Symbol: "BTCUSDT", MAType: domain.ExponentialMA, MAPair: "10/20",
			Volatility: 2.41, TrendStrength: 11.05,
			Return: 9.5, WinRate: 50.0, Sharpe: 0.8, MaxDD: -7.2, Trades: 2,
		},
	}
}

func TestRepository_RequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: "ignored.db"})
	require.Error(t, err)
}

func TestRepository_SaveAndFindBySymbol(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.SaveRows(ctx, "run-1", sampleRows()))

	found, err := repo.FindBySymbol(ctx, "BTCUSDT", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)

	// Rank order from the save is preserved.
	assert.Equal(t, "12/26", found[0].MAPair)
	assert.Equal(t, "10/20", found[1].MAPair)
	assert.Equal(t, sampleRows()[0], found[0])
}

func TestRepository_FindBySymbol_LatestRunOnly(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.SaveRows(ctx, "run-1", sampleRows()))

	later := []domain.ResultRow{
		{Symbol: "BTCUSDT", MAType: domain.SimpleMA, MAPair: "20/50", Return: 4.0, Trades: 3},
	}
	require.NoError(t, repo.SaveRows(ctx, "run-2", later))

	found, err := repo.FindBySymbol(ctx, "BTCUSDT", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "20/50", found[0].MAPair)
}

func TestRepository_FindBySymbol_RespectsLimit(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.SaveRows(ctx, "run-1", sampleRows()))

	found, err := repo.FindBySymbol(ctx, "BTCUSDT", 1)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "12/26", found[0].MAPair)
}

func TestRepository_FindBySymbol_UnknownSymbol(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	found, err := repo.FindBySymbol(context.Background(), "NOPEUSDT", 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestRepository_BestPerSymbol(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.SaveRows(ctx, "run-1", sampleRows()))
	require.NoError(t, repo.SaveRows(ctx, "run-2", []domain.ResultRow{
		{Symbol: "ETHUSDT", MAType: domain.SimpleMA, MAPair: "10/20", Return: 7.3, Trades: 4},
		{Symbol: "BTCUSDT", MAType: domain.SimpleMA, MAPair: "50/100", Return: 2.0, Trades: 1},
	}))

	best, err := repo.BestPerSymbol(ctx)
	require.NoError(t, err)
	require.Len(t, best, 2)

	// Ordered by symbol; the BTCUSDT winner comes from the earlier run.
	assert.Equal(t, "BTCUSDT", best[0].Symbol)
	assert.Equal(t, "12/26", best[0].MAPair)
	assert.InDelta(t, 18.18, best[0].Return, 0.0001)
	assert.Equal(t, "ETHUSDT", best[1].Symbol)
	assert.Equal(t, "10/20", best[1].MAPair)
}

func TestRepository_SaveRows_EmptyIsNoop(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.SaveRows(context.Background(), "run-1", nil))

	best, err := repo.BestPerSymbol(context.Background())
	require.NoError(t, err)
	assert.Empty(t, best)
}
