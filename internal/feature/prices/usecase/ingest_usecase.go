// Package usecase は価格・発行済株式数データの取り込みロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"index_backend/internal/feature/prices/domain/entity"
	"index_backend/internal/shared/ratelimiter"
	"index_backend/internal/shared/tradingcal"
)

// MarketRepository は外部APIから価格データを取得するリポジトリのインターフェイスです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketRepository interface {
	// GetDailySeries は[startDate, endDate]の日足OHLCと発行済株式数を返します。
	GetDailySeries(ctx context.Context, ticker string, startDate, endDate time.Time) ([]entity.TickerObservation, error)
}

// ObservationRepository は観測値の永続化を抽象化します。
type ObservationRepository interface {
	UpsertBatch(ctx context.Context, obs []entity.TickerObservation) error
}

// UniverseRepository は取り込み対象となるティッカーユニバースを返します。
type UniverseRepository interface {
	ListTickers(ctx context.Context) ([]string, error)
}

// IngestUsecase は外部APIからユニバース全銘柄の観測値を取得し、永続化します。
type IngestUsecase struct {
	market      MarketRepository
	obs         ObservationRepository
	universe    UniverseRepository
	rateLimiter ratelimiter.RateLimiterInterface
}

// NewIngestUsecase は新しい IngestUsecase を作成します。
func NewIngestUsecase(market MarketRepository, obs ObservationRepository, universe UniverseRepository,
	rateLimiter ratelimiter.RateLimiterInterface) *IngestUsecase {
	return &IngestUsecase{market: market, obs: obs, universe: universe, rateLimiter: rateLimiter}
}

// IngestRange はユニバース全銘柄について[syncStartDate, runDate]の観測値を取り込みます。
// syncStartDateがゼロ値の場合はrunDateのみを対象にします。
// 個別銘柄の取得失敗はログに残してスキップし、バッチ全体は継続します。
func (iu *IngestUsecase) IngestRange(ctx context.Context, runDate, syncStartDate time.Time) error {
	startDate, endDate, err := resolveRange(runDate, syncStartDate)
	if err != nil {
		return err
	}

	tickers, err := iu.universe.ListTickers(ctx)
	if err != nil {
		return err
	}

	for _, ticker := range tickers {
		iu.rateLimiter.WaitIfNeeded()

		obs, err := iu.market.GetDailySeries(ctx, ticker, startDate, endDate)
		if err != nil {
			// 1銘柄の失敗でバッチを止めない
			slog.Error("failed to ingest ticker data", "ticker", ticker, "error", err)
			continue
		}
		for i := range obs {
			obs[i].Ticker = ticker
		}
		if err := iu.obs.UpsertBatch(ctx, obs); err != nil {
			slog.Error("failed to persist ticker data", "ticker", ticker, "error", err)
			continue
		}
	}

	slog.Info("ticker data ingested", "start", startDate.Format("2006-01-02"), "end", endDate.Format("2006-01-02"))
	return nil
}

// resolveRange はバッチ対象区間を決定します。syncStartDateゼロ値はrunDate単日を意味します。
func resolveRange(runDate, syncStartDate time.Time) (time.Time, time.Time, error) {
	endDate := tradingcal.DateOf(runDate)
	startDate := endDate
	if !syncStartDate.IsZero() {
		startDate = tradingcal.DateOf(syncStartDate)
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("sync start date %s after run date %s",
			startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	}
	return startDate, endDate, nil
}
