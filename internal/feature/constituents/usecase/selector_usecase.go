package usecase

import (
	"context"
	"time"

	"index_backend/internal/feature/constituents/domain/entity"
	"index_backend/internal/shared/sources"
	"index_backend/internal/shared/tradingcal"
)

// ConstituentReader は構成銘柄行の読み取りを抽象化します。
type ConstituentReader interface {
	// FindByDates はソースの構成銘柄行を日付・ティッカー昇順で返します。datesがnilなら全件。
	FindByDates(ctx context.Context, source string, dates []time.Time) ([]entity.Constituent, error)
}

// SelectorUsecase は構成銘柄のポイントインタイム参照を実装します。
type SelectorUsecase struct {
	cons ConstituentReader
}

// NewSelectorUsecase は新しい SelectorUsecase を作成します。
func NewSelectorUsecase(cons ConstituentReader) *SelectorUsecase {
	return &SelectorUsecase{cons: cons}
}

// Select は日付指定を正規化し、日付ごとの構成銘柄リストを返します。
// dateSpecがnilの場合は全日付が対象です。該当行のない日付はエントリを持ちません。
func (su *SelectorUsecase) Select(ctx context.Context, source string, dateSpec any) (map[time.Time][]string, error) {
	if err := sources.Validate(source); err != nil {
		return nil, err
	}

	dates, err := tradingcal.Normalize(dateSpec)
	if err != nil {
		return nil, err
	}

	rows, err := su.cons.FindByDates(ctx, source, dates)
	if err != nil {
		return nil, err
	}

	out := make(map[time.Time][]string)
	for _, row := range rows {
		d := tradingcal.DateOf(row.Date)
		out[d] = append(out[d], row.Ticker)
	}
	return out, nil
}
