package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"index_backend/internal/feature/constituents/domain"
	"index_backend/internal/feature/constituents/domain/entity"
)

type constituentGorm struct {
	db *gorm.DB
}

// NewConstituentRepository はindex_constituentsテーブルへのリポジトリを生成します。
func NewConstituentRepository(db *gorm.DB) *constituentGorm {
	return &constituentGorm{db: db}
}

// ConstituentModel はindex_constituentsテーブルのgormモデルです。
type ConstituentModel struct {
	Date   time.Time `gorm:"primaryKey"`
	Ticker string    `gorm:"size:20;primaryKey"`
	Source string    `gorm:"size:32;primaryKey"`
}

func (ConstituentModel) TableName() string {
	return "index_constituents"
}

// InsertBatch は構成銘柄行を1トランザクションで挿入します。
// 既存行と主キーが衝突した場合はErrWriteConflictを返し、バッチ全体がロールバックされます。
func (r *constituentGorm) InsertBatch(ctx context.Context, rows []entity.Constituent) error {
	if len(rows) == 0 {
		return nil
	}
	ms := make([]ConstituentModel, 0, len(rows))
	for _, e := range rows {
		ms = append(ms, ConstituentModel{Date: e.Date, Ticker: e.Ticker, Source: e.Source})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&ms).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", domain.ErrWriteConflict, err)
	}
	return err
}

// FindByDates はソースの構成銘柄行を日付昇順・ティッカー昇順で返します。
// datesがnilの場合は全日付が対象になります。
func (r *constituentGorm) FindByDates(ctx context.Context, source string, dates []time.Time) ([]entity.Constituent, error) {
	q := r.db.WithContext(ctx).
		Where("source = ?", source).
		Order("date ASC, ticker ASC")
	if dates != nil {
		q = q.Where("date IN ?", dates)
	}

	var rows []ConstituentModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]entity.Constituent, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.Constituent{Date: m.Date, Ticker: m.Ticker, Source: m.Source})
	}
	return out, nil
}
