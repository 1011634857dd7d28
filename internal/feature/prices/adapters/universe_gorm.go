package adapters

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultUniverse は手動管理のティッカーユニバース名です。
const DefaultUniverse = "manual"

type universeGorm struct {
	db *gorm.DB
}

// NewUniverseRepository はticker_universeテーブルへのリポジトリを生成します。
func NewUniverseRepository(db *gorm.DB) *universeGorm {
	return &universeGorm{db: db}
}

// TickerUniverseModel はticker_universeテーブルのgormモデルです。
type TickerUniverseModel struct {
	Univ   string `gorm:"size:20;primaryKey"`
	Ticker string `gorm:"size:20;primaryKey"`
}

func (TickerUniverseModel) TableName() string {
	return "ticker_universe"
}

// Add はティッカーをmanualユニバースへ追加します。既存の場合は何もしません。
func (r *universeGorm) Add(ctx context.Context, ticker string) error {
	m := TickerUniverseModel{Univ: DefaultUniverse, Ticker: ticker}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&m).Error
}

// ListTickers は全ユニバースのティッカーを重複なしで返します。
func (r *universeGorm) ListTickers(ctx context.Context) ([]string, error) {
	var tickers []string
	err := r.db.WithContext(ctx).
		Model(&TickerUniverseModel{}).
		Distinct("ticker").
		Order("ticker ASC").
		Pluck("ticker", &tickers).Error
	if err != nil {
		return nil, err
	}
	return tickers, nil
}
