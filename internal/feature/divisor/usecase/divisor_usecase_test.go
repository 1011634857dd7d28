package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"index_backend/internal/feature/divisor/domain"
	"index_backend/internal/feature/divisor/domain/entity"
	levelsdomain "index_backend/internal/feature/levels/domain"
)

// mockDivisorRepository is a mock implementation of the DivisorRepository interface.
type mockDivisorRepository struct {
	SetCalls []struct {
		Source    string
		Value     float64
		StartDate time.Time
	}
	GetAtFunc func(ctx context.Context, source string, date time.Time) (entity.Divisor, error)
}

func (m *mockDivisorRepository) Set(ctx context.Context, source string, value float64, startDate time.Time) error {
	m.SetCalls = append(m.SetCalls, struct {
		Source    string
		Value     float64
		StartDate time.Time
	}{source, value, startDate})
	return nil
}

func (m *mockDivisorRepository) GetAt(ctx context.Context, source string, date time.Time) (entity.Divisor, error) {
	if m.GetAtFunc != nil {
		return m.GetAtFunc(ctx, source, date)
	}
	return entity.Divisor{}, errors.New("GetAtFunc is not implemented")
}

// mockLevelRescaler records ScaleRange invocations.
type mockLevelRescaler struct {
	Calls []struct {
		Source  string
		Divisor float64
	}
	Err error
}

func (m *mockLevelRescaler) ScaleRange(ctx context.Context, source string, divisor float64, startDate, endDate *time.Time) error {
	if m.Err != nil {
		return m.Err
	}
	m.Calls = append(m.Calls, struct {
		Source  string
		Divisor float64
	}{source, divisor})
	return nil
}

// mockFirstOpenReader returns a fixed first-day open level.
type mockFirstOpenReader struct {
	Open float64
	Err  error
}

func (m *mockFirstOpenReader) OpenOnFirstDate(ctx context.Context, source string) (float64, error) {
	return m.Open, m.Err
}

func TestDivisorUsecase_Set(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		repo := &mockDivisorRepository{}
		du := NewDivisorUsecase(repo, &mockLevelRescaler{}, &mockFirstOpenReader{})

		require.NoError(t, du.Set(ctx, "test", 2.0, start))
		require.Len(t, repo.SetCalls, 1)
		assert.Equal(t, 2.0, repo.SetCalls[0].Value)
	})

	t.Run("error: non-positive value", func(t *testing.T) {
		repo := &mockDivisorRepository{}
		du := NewDivisorUsecase(repo, &mockLevelRescaler{}, &mockFirstOpenReader{})

		err := du.Set(ctx, "test", 0, start)

		assert.ErrorIs(t, err, domain.ErrInvalidDivisor)
		assert.Empty(t, repo.SetCalls)
	})
}

func TestDivisorUsecase_Bootstrap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

	t.Run("success: divisor is first open over opening level", func(t *testing.T) {
		repo := &mockDivisorRepository{}
		du := NewDivisorUsecase(repo, &mockLevelRescaler{}, &mockFirstOpenReader{Open: 250.0})

		require.NoError(t, du.Bootstrap(ctx, "test", start))
		require.Len(t, repo.SetCalls, 1)
		assert.InDelta(t, 250.0/entity.OpeningLevel, repo.SetCalls[0].Value, 1e-12)
		assert.Equal(t, start, repo.SetCalls[0].StartDate)
	})

	t.Run("error: no level data", func(t *testing.T) {
		repo := &mockDivisorRepository{}
		du := NewDivisorUsecase(repo, &mockLevelRescaler{}, &mockFirstOpenReader{Err: levelsdomain.ErrEmptyResult})

		err := du.Bootstrap(ctx, "test", start)

		assert.ErrorIs(t, err, levelsdomain.ErrEmptyResult)
		assert.Empty(t, repo.SetCalls)
	})
}

func TestDivisorUsecase_NormalizeLevels(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ref := time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC)

	t.Run("success: rescales by the divisor valid at the reference date", func(t *testing.T) {
		repo := &mockDivisorRepository{
			GetAtFunc: func(ctx context.Context, source string, date time.Time) (entity.Divisor, error) {
				assert.Equal(t, ref, date)
				return entity.Divisor{Source: source, Value: 2.5}, nil
			},
		}
		rescaler := &mockLevelRescaler{}
		du := NewDivisorUsecase(repo, rescaler, &mockFirstOpenReader{})

		require.NoError(t, du.NormalizeLevels(ctx, "test", ref, nil, nil))
		require.Len(t, rescaler.Calls, 1)
		assert.Equal(t, 2.5, rescaler.Calls[0].Divisor)
	})

	t.Run("error: divisor missing at reference date", func(t *testing.T) {
		repo := &mockDivisorRepository{
			GetAtFunc: func(ctx context.Context, source string, date time.Time) (entity.Divisor, error) {
				return entity.Divisor{}, domain.ErrDivisorNotFound
			},
		}
		rescaler := &mockLevelRescaler{}
		du := NewDivisorUsecase(repo, rescaler, &mockFirstOpenReader{})

		err := du.NormalizeLevels(ctx, "test", ref, nil, nil)

		assert.ErrorIs(t, err, domain.ErrDivisorNotFound)
		assert.Empty(t, rescaler.Calls)
	})
}
