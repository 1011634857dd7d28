// Package usecase はインデックス構成銘柄の選定と参照のロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"index_backend/internal/feature/constituents/domain/entity"
	pricesentity "index_backend/internal/feature/prices/domain/entity"
	"index_backend/internal/shared/tradingcal"
)

// DefaultIndexSize はインデックスの構成銘柄数のデフォルト値です。
const DefaultIndexSize = 10

// ObservationReader は価格・発行済株式数の観測値を読み取るインターフェイスです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ObservationReader interface {
	FindRange(ctx context.Context, startDate, endDate time.Time) ([]pricesentity.TickerObservation, error)
}

// ConstituentWriter は構成銘柄行の書き込みを抽象化します。
type ConstituentWriter interface {
	InsertBatch(ctx context.Context, rows []entity.Constituent) error
}

// ComputeUsecase は時価総額ランキングによる構成銘柄の選定を実装します。
type ComputeUsecase struct {
	obs  ObservationReader
	cons ConstituentWriter
	topN int
}

// NewComputeUsecase は新しい ComputeUsecase を作成します。topNが0以下の場合はデフォルト値を使います。
func NewComputeUsecase(obs ObservationReader, cons ConstituentWriter, topN int) *ComputeUsecase {
	if topN <= 0 {
		topN = DefaultIndexSize
	}
	return &ComputeUsecase{obs: obs, cons: cons, topN: topN}
}

// Compute は[syncStartDate, runDate]の各暦日について時価総額上位topN銘柄を選定し、
// 翌取引日付の構成銘柄行として書き込みます。
//
// 翌取引日へずらすのは必須の1日ナレッジラグです。当日の構成は前日の終値ベースの
// 時価総額で決まり、先読みバイアスを防ぎます。
//
// ランキングは日内の最終観測値を使います。時価総額が同値の場合はティッカーの
// 昇順で順位が決まります。
func (cu *ComputeUsecase) Compute(ctx context.Context, source string, runDate, syncStartDate time.Time) error {
	startDate, endDate, err := resolveRange(runDate, syncStartDate)
	if err != nil {
		return err
	}

	obs, err := cu.obs.FindRange(ctx, startDate, endDate)
	if err != nil {
		return err
	}

	rows := cu.rank(obs, source)
	if err := cu.cons.InsertBatch(ctx, rows); err != nil {
		return err
	}

	slog.Info("constituents computed", "source", source, "rows", len(rows),
		"start", startDate.Format("2006-01-02"), "end", endDate.Format("2006-01-02"))
	return nil
}

// rank は観測値から構成銘柄行を導出します。
func (cu *ComputeUsecase) rank(obs []pricesentity.TickerObservation, source string) []entity.Constituent {
	// 各(日, ティッカー)で最終タイムスタンプの観測値のみを残す
	type key struct {
		day    time.Time
		ticker string
	}
	latest := make(map[key]pricesentity.TickerObservation)
	for _, o := range obs {
		k := key{day: tradingcal.DateOf(o.DatetimeUTC), ticker: o.Ticker}
		if cur, ok := latest[k]; !ok || o.DatetimeUTC.After(cur.DatetimeUTC) {
			latest[k] = o
		}
	}

	byDay := make(map[time.Time][]pricesentity.TickerObservation)
	for k, o := range latest {
		byDay[k.day] = append(byDay[k.day], o)
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var rows []entity.Constituent
	for _, d := range days {
		ranked := byDay[d]
		sort.Slice(ranked, func(i, j int) bool {
			mi, mj := ranked[i].MarketCap(), ranked[j].MarketCap()
			if mi != mj {
				return mi > mj
			}
			return ranked[i].Ticker < ranked[j].Ticker
		})
		if len(ranked) > cu.topN {
			ranked = ranked[:cu.topN]
		}

		// 日Dのランキングは日D+1取引日の構成となる
		effective := tradingcal.NextTradingDay(d)
		for _, o := range ranked {
			rows = append(rows, entity.Constituent{Date: effective, Ticker: o.Ticker, Source: source})
		}
	}
	return rows
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
