package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"index_backend/internal/feature/prices/domain/entity"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&TickerPriceModel{}, &TickerUniverseModel{})
	require.NoError(t, err, "failed to migrate tables")

	return db
}

func obs(ticker string, at time.Time, close float64, shares int64) entity.TickerObservation {
	return entity.TickerObservation{
		Ticker:            ticker,
		DatetimeUTC:       at,
		Open:              close - 1,
		High:              close + 1,
		Low:               close - 2,
		Close:             close,
		SharesOutstanding: shares,
	}
}

func TestObservationGorm_UpsertBatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	at := time.Date(2024, 1, 2, 21, 0, 0, 0, time.UTC)

	t.Run("insert then update on same key", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewObservationRepository(db)

		require.NoError(t, repo.UpsertBatch(ctx, []entity.TickerObservation{obs("AAPL", at, 100, 1000)}))
		require.NoError(t, repo.UpsertBatch(ctx, []entity.TickerObservation{obs("AAPL", at, 120, 1100)}))

		var count int64
		db.Model(&TickerPriceModel{}).Count(&count)
		assert.Equal(t, int64(1), count, "upsert should not duplicate rows")

		var row TickerPriceModel
		db.First(&row)
		assert.Equal(t, 120.0, row.Close)
		assert.Equal(t, int64(1100), row.SharesOutstanding)
	})

	t.Run("empty slice is a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewObservationRepository(db)

		require.NoError(t, repo.UpsertBatch(ctx, nil))
	})
}

func TestObservationGorm_FindRange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewObservationRepository(db)

	day1 := time.Date(2024, 1, 2, 21, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 3, 21, 0, 0, 0, time.UTC)
	day3 := time.Date(2024, 1, 4, 21, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpsertBatch(ctx, []entity.TickerObservation{
		obs("MSFT", day2, 300, 500),
		obs("AAPL", day1, 100, 1000),
		obs("AAPL", day3, 110, 1000),
	}))

	got, err := repo.FindRange(ctx,
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Len(t, got, 2, "day 3 observation should be excluded")
	assert.Equal(t, "AAPL", got[0].Ticker, "results should be ordered by timestamp")
	assert.Equal(t, "MSFT", got[1].Ticker)
	assert.Equal(t, 300.0*500, got[1].MarketCap())
}

func TestUniverseGorm(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewUniverseRepository(db)

	require.NoError(t, repo.Add(ctx, "MSFT"))
	require.NoError(t, repo.Add(ctx, "AAPL"))
	require.NoError(t, repo.Add(ctx, "AAPL"), "duplicate add should be ignored")

	got, err := repo.ListTickers(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, got)
}
