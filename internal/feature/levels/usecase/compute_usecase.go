// Package usecase はインデックス水準の計算と参照のロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	consentity "index_backend/internal/feature/constituents/domain/entity"
	"index_backend/internal/feature/levels/domain/entity"
	pricesentity "index_backend/internal/feature/prices/domain/entity"
	"index_backend/internal/shared/tradingcal"
)

// ObservationReader は価格観測値を読み取るインターフェイスです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ObservationReader interface {
	FindRange(ctx context.Context, startDate, endDate time.Time) ([]pricesentity.TickerObservation, error)
}

// ConstituentReader は構成銘柄行の読み取りを抽象化します。
type ConstituentReader interface {
	FindByDates(ctx context.Context, source string, dates []time.Time) ([]consentity.Constituent, error)
}

// DivisorReader は指定日に有効な除数値を返します。
type DivisorReader interface {
	Get(ctx context.Context, source string, date time.Time) (float64, error)
}

// LevelWriter は水準行の書き込みを抽象化します。
type LevelWriter interface {
	InsertBatch(ctx context.Context, rows []entity.IndexLevel) error
}

// ComputeUsecase は逆数和の価格加重式によるインデックス水準の計算を実装します。
type ComputeUsecase struct {
	obs     ObservationReader
	cons    ConstituentReader
	divisor DivisorReader
	levels  LevelWriter
}

// NewComputeUsecase は新しい ComputeUsecase を作成します。
func NewComputeUsecase(obs ObservationReader, cons ConstituentReader, divisor DivisorReader, levels LevelWriter) *ComputeUsecase {
	return &ComputeUsecase{obs: obs, cons: cons, divisor: divisor, levels: levels}
}

// Compute は[syncStartDate, runDate]の各タイムスタンプについてインデックス水準を計算し、
// 日足の水準行として書き込みます。
//
// 各OHLCフィールドは独立に raw = Σ(1/価格) を構成銘柄全体で合計し、
// runDate時点で有効な除数で割った値が水準になります（固定のドメイン式）。
// 構成銘柄の観測が1件もないタイムスタンプは行を出力しません（ゼロ埋めしない）。
func (cu *ComputeUsecase) Compute(ctx context.Context, source string, runDate, syncStartDate time.Time) error {
	startDate, endDate, err := resolveRange(runDate, syncStartDate)
	if err != nil {
		return err
	}

	divisor, err := cu.divisor.Get(ctx, source, endDate)
	if err != nil {
		return err
	}

	obs, err := cu.obs.FindRange(ctx, startDate, endDate)
	if err != nil {
		return err
	}

	members, err := cu.membership(ctx, source, startDate, endDate)
	if err != nil {
		return err
	}

	rows := aggregate(obs, members, divisor, source)
	if err := cu.levels.InsertBatch(ctx, rows); err != nil {
		return err
	}

	slog.Info("index levels computed", "source", source, "rows", len(rows),
		"start", startDate.Format("2006-01-02"), "end", endDate.Format("2006-01-02"))
	return nil
}

// membership は範囲内の各暦日について構成銘柄の集合を返します。
func (cu *ComputeUsecase) membership(ctx context.Context, source string, startDate, endDate time.Time) (map[time.Time]map[string]struct{}, error) {
	var days []time.Time
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}

	rows, err := cu.cons.FindByDates(ctx, source, days)
	if err != nil {
		return nil, err
	}

	members := make(map[time.Time]map[string]struct{})
	for _, row := range rows {
		d := tradingcal.DateOf(row.Date)
		if members[d] == nil {
			members[d] = make(map[string]struct{})
		}
		members[d][row.Ticker] = struct{}{}
	}
	return members, nil
}

// aggregate はタイムスタンプごとに構成銘柄の観測を逆数和で集計します。
func aggregate(obs []pricesentity.TickerObservation, members map[time.Time]map[string]struct{},
	divisor float64, source string) []entity.IndexLevel {

	type bucket struct {
		open, high, low, close float64
		tickers                map[string]struct{}
	}
	buckets := make(map[time.Time]*bucket)

	for _, o := range obs {
		day := tradingcal.DateOf(o.DatetimeUTC)
		if _, ok := members[day][o.Ticker]; !ok {
			continue
		}
		// ゼロ以下の価格は逆数が発散するため集計から除外する
		if o.Open <= 0 || o.High <= 0 || o.Low <= 0 || o.Close <= 0 {
			slog.Warn("skipping observation with non-positive price",
				"ticker", o.Ticker, "datetime", o.DatetimeUTC)
			continue
		}
		b := buckets[o.DatetimeUTC]
		if b == nil {
			b = &bucket{tickers: make(map[string]struct{})}
			buckets[o.DatetimeUTC] = b
		}
		b.open += 1 / o.Open
		b.high += 1 / o.High
		b.low += 1 / o.Low
		b.close += 1 / o.Close
		b.tickers[o.Ticker] = struct{}{}
	}

	stamps := make([]time.Time, 0, len(buckets))
	for ts := range buckets {
		stamps = append(stamps, ts)
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })

	rows := make([]entity.IndexLevel, 0, len(stamps))
	for _, ts := range stamps {
		b := buckets[ts]
		rows = append(rows, entity.IndexLevel{
			DatetimeUTC:     ts,
			TimeInterval:    entity.IntervalDaily,
			Open:            b.open / divisor,
			High:            b.high / divisor,
			Low:             b.low / divisor,
			Close:           b.close / divisor,
			NumConstituents: len(b.tickers),
			Source:          source,
		})
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
