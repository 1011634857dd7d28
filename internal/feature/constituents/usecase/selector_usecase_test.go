package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"index_backend/internal/feature/constituents/domain/entity"
	"index_backend/internal/shared/sources"
	"index_backend/internal/shared/tradingcal"
)

// mockConstituentReader serves rows filtered the way the gorm adapter does.
type mockConstituentReader struct {
	Rows []entity.Constituent
}

func (m *mockConstituentReader) FindByDates(ctx context.Context, source string, dates []time.Time) ([]entity.Constituent, error) {
	var out []entity.Constituent
	for _, r := range m.Rows {
		if r.Source != source {
			continue
		}
		if dates != nil && !containsDate(dates, r.Date) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func containsDate(dates []time.Time, d time.Time) bool {
	for _, x := range dates {
		if x.Equal(d) {
			return true
		}
	}
	return false
}

func TestSelectorUsecase_Select(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	d1 := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC)
	reader := &mockConstituentReader{Rows: []entity.Constituent{
		{Date: d1, Ticker: "AAPL", Source: "twelvedata"},
		{Date: d1, Ticker: "MSFT", Source: "twelvedata"},
		{Date: d2, Ticker: "AAPL", Source: "twelvedata"},
	}}
	su := NewSelectorUsecase(reader)

	t.Run("single date", func(t *testing.T) {
		got, err := su.Select(ctx, "twelvedata", "2020-01-02")

		require.NoError(t, err)
		assert.Equal(t, map[time.Time][]string{d1: {"AAPL", "MSFT"}}, got)
	})

	t.Run("range groups by date and skips non-trading days", func(t *testing.T) {
		got, err := su.Select(ctx, "twelvedata", "2020-01-01:2020-01-05")

		require.NoError(t, err)
		assert.Equal(t, map[time.Time][]string{
			d1: {"AAPL", "MSFT"},
			d2: {"AAPL"},
		}, got)
	})

	t.Run("nil spec returns everything", func(t *testing.T) {
		got, err := su.Select(ctx, "twelvedata", nil)

		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("absent dates produce no entry", func(t *testing.T) {
		got, err := su.Select(ctx, "twelvedata", 20200106)

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("error: invalid source", func(t *testing.T) {
		_, err := su.Select(ctx, "bloomberg", nil)

		assert.ErrorIs(t, err, sources.ErrInvalidSource)
	})

	t.Run("error: invalid date spec", func(t *testing.T) {
		_, err := su.Select(ctx, "twelvedata", "yesterday")

		assert.ErrorIs(t, err, tradingcal.ErrInvalidDateFormat)
	})
}
