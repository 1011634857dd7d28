package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"index_backend/internal/feature/levels/domain"
	"index_backend/internal/feature/levels/domain/entity"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&LevelModel{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

func levelRow(at time.Time, open, close float64) entity.IndexLevel {
	return entity.IndexLevel{
		DatetimeUTC: at, TimeInterval: entity.IntervalDaily,
		Open: open, High: close + 1, Low: open - 1, Close: close,
		NumConstituents: 2, Source: "twelvedata",
	}
}

func TestLevelGorm_InsertBatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	at := time.Date(2020, 1, 2, 21, 0, 0, 0, time.UTC)

	t.Run("success: rows inserted", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewLevelRepository(db)

		require.NoError(t, repo.InsertBatch(ctx, []entity.IndexLevel{
			levelRow(at, 1.0, 1.05),
			levelRow(at.AddDate(0, 0, 1), 1.05, 1.1),
		}))

		var count int64
		db.Model(&LevelModel{}).Count(&count)
		assert.Equal(t, int64(2), count)
	})

	t.Run("overlapping recompute conflicts without partial writes", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewLevelRepository(db)
		require.NoError(t, repo.InsertBatch(ctx, []entity.IndexLevel{levelRow(at, 1.0, 1.05)}))

		err := repo.InsertBatch(ctx, []entity.IndexLevel{
			levelRow(at.AddDate(0, 0, 1), 1.05, 1.1),
			levelRow(at, 2.0, 2.1),
		})

		assert.ErrorIs(t, err, domain.ErrWriteConflict)

		var count int64
		db.Model(&LevelModel{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})
}

func TestLevelGorm_FindRange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewLevelRepository(db)

	d1 := time.Date(2020, 1, 2, 21, 0, 0, 0, time.UTC)
	d2 := time.Date(2020, 1, 3, 21, 0, 0, 0, time.UTC)
	d3 := time.Date(2020, 1, 6, 21, 0, 0, 0, time.UTC)
	require.NoError(t, repo.InsertBatch(ctx, []entity.IndexLevel{
		levelRow(d2, 1.05, 1.1),
		levelRow(d1, 1.0, 1.05),
		levelRow(d3, 1.1, 1.15),
	}))

	start := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC)
	got, err := repo.FindRange(ctx, "twelvedata", entity.IntervalDaily, &start, &end)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, d1, got[0].DatetimeUTC, "ordered by timestamp")
	assert.Equal(t, d2, got[1].DatetimeUTC)
}

func TestLevelGorm_ScaleRange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewLevelRepository(db)

	at := time.Date(2020, 1, 2, 21, 0, 0, 0, time.UTC)
	original := levelRow(at, 250.0, 260.0)
	require.NoError(t, repo.InsertBatch(ctx, []entity.IndexLevel{original}))

	divisor := 2.5
	require.NoError(t, repo.ScaleRange(ctx, "twelvedata", divisor, nil, nil))

	got, err := repo.FindRange(ctx, "twelvedata", entity.IntervalDaily, nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// Round-trip law: scaled * divisor reproduces the pre-rebase aggregate.
	assert.InDelta(t, original.Open, got[0].Open*divisor, 1e-9)
	assert.InDelta(t, original.High, got[0].High*divisor, 1e-9)
	assert.InDelta(t, original.Low, got[0].Low*divisor, 1e-9)
	assert.InDelta(t, original.Close, got[0].Close*divisor, 1e-9)
	assert.Equal(t, original.NumConstituents, got[0].NumConstituents, "counts are not rescaled")
}

func TestLevelGorm_ScaleRangeBounded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewLevelRepository(db)

	inRange := time.Date(2020, 1, 2, 21, 0, 0, 0, time.UTC)
	outOfRange := time.Date(2020, 2, 3, 21, 0, 0, 0, time.UTC)
	require.NoError(t, repo.InsertBatch(ctx, []entity.IndexLevel{
		levelRow(inRange, 100, 100),
		levelRow(outOfRange, 100, 100),
	}))

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.ScaleRange(ctx, "twelvedata", 2.0, &start, &end))

	got, err := repo.FindRange(ctx, "twelvedata", entity.IntervalDaily, nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDelta(t, 50.0, got[0].Close, 1e-9, "row inside the bound is rescaled")
	assert.InDelta(t, 100.0, got[1].Close, 1e-9, "row outside the bound is untouched")
}

func TestLevelGorm_OpenOnFirstDate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns the open of the earliest timestamp", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewLevelRepository(db)
		require.NoError(t, repo.InsertBatch(ctx, []entity.IndexLevel{
			levelRow(time.Date(2020, 1, 3, 21, 0, 0, 0, time.UTC), 2.0, 2.1),
			levelRow(time.Date(2020, 1, 2, 21, 0, 0, 0, time.UTC), 1.0, 1.05),
		}))

		got, err := repo.OpenOnFirstDate(ctx, "twelvedata")

		require.NoError(t, err)
		assert.Equal(t, 1.0, got)
	})

	t.Run("empty table returns ErrEmptyResult", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewLevelRepository(db)

		_, err := repo.OpenOnFirstDate(ctx, "twelvedata")

		assert.ErrorIs(t, err, domain.ErrEmptyResult)
	})
}
