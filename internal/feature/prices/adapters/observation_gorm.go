package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"index_backend/internal/feature/prices/domain/entity"
)

type observationGorm struct {
	db *gorm.DB
}

// NewObservationRepository はticker_price_dataテーブルへのリポジトリを生成します。
func NewObservationRepository(db *gorm.DB) *observationGorm {
	return &observationGorm{db: db}
}

// TickerPriceModel はticker_price_dataテーブルのgormモデルです。
type TickerPriceModel struct {
	ID          uint      `gorm:"primaryKey"`
	Ticker      string    `gorm:"size:20;not null;uniqueIndex:price_ticker_time,priority:1"`
	DatetimeUTC time.Time `gorm:"not null;uniqueIndex:price_ticker_time,priority:2"`

	Open              float64 `gorm:"not null"`
	High              float64 `gorm:"not null"`
	Low               float64 `gorm:"not null"`
	Close             float64 `gorm:"not null"`
	SharesOutstanding int64   `gorm:"not null;default:0"`
}

func (TickerPriceModel) TableName() string {
	return "ticker_price_data"
}

func toPriceModel(e entity.TickerObservation) TickerPriceModel {
	return TickerPriceModel{
		Ticker:            e.Ticker,
		DatetimeUTC:       e.DatetimeUTC,
		Open:              e.Open,
		High:              e.High,
		Low:               e.Low,
		Close:             e.Close,
		SharesOutstanding: e.SharesOutstanding,
	}
}

func toObservation(m TickerPriceModel) entity.TickerObservation {
	return entity.TickerObservation{
		Ticker:            m.Ticker,
		DatetimeUTC:       m.DatetimeUTC,
		Open:              m.Open,
		High:              m.High,
		Low:               m.Low,
		Close:             m.Close,
		SharesOutstanding: m.SharesOutstanding,
	}
}

// UpsertBatch は観測値を(ticker, datetime_utc)をユニークキーとして一括Upsertします。
func (r *observationGorm) UpsertBatch(ctx context.Context, obs []entity.TickerObservation) error {
	if len(obs) == 0 {
		return nil
	}
	ms := make([]TickerPriceModel, 0, len(obs))
	for _, e := range obs {
		ms = append(ms, toPriceModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}, {Name: "datetime_utc"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "shares_outstanding"}),
	}).Create(&ms).Error
}

// FindRange はUTCのカレンダー日付が[startDate, endDate]（両端含む）に入る
// 観測値をタイムスタンプ昇順で返します。
func (r *observationGorm) FindRange(ctx context.Context, startDate, endDate time.Time) ([]entity.TickerObservation, error) {
	var rows []TickerPriceModel
	err := r.db.WithContext(ctx).
		Where("datetime_utc >= ? AND datetime_utc < ?", startDate, endDate.AddDate(0, 0, 1)).
		Order("datetime_utc ASC, ticker ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]entity.TickerObservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, toObservation(m))
	}
	return out, nil
}
