package usecase

import (
	"context"
	"time"

	"index_backend/internal/feature/levels/domain/entity"
	"index_backend/internal/shared/sources"
	"index_backend/internal/shared/tradingcal"
)

// LevelReader は水準行の読み取りを抽象化します。
type LevelReader interface {
	// FindRange はソース・インターバルの水準行をタイムスタンプ昇順で返します。
	FindRange(ctx context.Context, source, interval string, startDate, endDate *time.Time) ([]entity.IndexLevel, error)
}

// SelectorUsecase はインデックス水準のポイントインタイム参照を実装します。
type SelectorUsecase struct {
	levels LevelReader
}

// NewSelectorUsecase は新しい SelectorUsecase を作成します。
func NewSelectorUsecase(levels LevelReader) *SelectorUsecase {
	return &SelectorUsecase{levels: levels}
}

// Select は日付指定を正規化し、NYSE現地暦日ごとの水準を返します。
//
// UTCタイムスタンプをNY時間に変換して現地暦日を導出し、同一現地日に複数の
// 日内バケットがある場合は最終タイムスタンプの行（終値優先）だけを残します。
// 結果は現地暦日で索引され、生のタイムスタンプは落とされます。
// 読み取り専用で副作用はありません。
func (su *SelectorUsecase) Select(ctx context.Context, source string, dateSpec any) (map[time.Time]entity.LevelPoint, error) {
	if err := sources.Validate(source); err != nil {
		return nil, err
	}

	dates, err := tradingcal.Normalize(dateSpec)
	if err != nil {
		return nil, err
	}

	var startDate, endDate *time.Time
	requested := make(map[time.Time]struct{}, len(dates))
	if dates != nil {
		startDate, endDate = &dates[0], &dates[len(dates)-1]
		for _, d := range dates {
			requested[d] = struct{}{}
		}
	}

	rows, err := su.levels.FindRange(ctx, source, entity.IntervalDaily, startDate, endDate)
	if err != nil {
		return nil, err
	}

	out := make(map[time.Time]entity.LevelPoint)
	for _, row := range rows {
		localDate := tradingcal.DateOf(row.DatetimeUTC.In(tradingcal.NY))
		if dates != nil {
			if _, ok := requested[localDate]; !ok {
				continue
			}
		}
		// 行はタイムスタンプ昇順なので、後勝ちで現地日の最終バケットが残る
		out[localDate] = entity.LevelPoint{
			Open:            row.Open,
			High:            row.High,
			Low:             row.Low,
			Close:           row.Close,
			NumConstituents: row.NumConstituents,
		}
	}
	return out, nil
}
