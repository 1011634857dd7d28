package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"index_backend/internal/feature/levels/domain"
	"index_backend/internal/feature/levels/domain/entity"
)

type levelGorm struct {
	db *gorm.DB
}

// NewLevelRepository はindex_levelテーブルへのリポジトリを生成します。
func NewLevelRepository(db *gorm.DB) *levelGorm {
	return &levelGorm{db: db}
}

// LevelModel はindex_levelテーブルのgormモデルです。
type LevelModel struct {
	DatetimeUTC  time.Time `gorm:"primaryKey"`
	TimeInterval string    `gorm:"size:16;primaryKey"`
	Source       string    `gorm:"size:32;primaryKey"`

	Open            float64 `gorm:"not null"`
	High            float64 `gorm:"not null"`
	Low             float64 `gorm:"not null"`
	Close           float64 `gorm:"not null"`
	NumConstituents int     `gorm:"not null"`
}

func (LevelModel) TableName() string {
	return "index_level"
}

func toLevelModel(e entity.IndexLevel) LevelModel {
	return LevelModel{
		DatetimeUTC:     e.DatetimeUTC,
		TimeInterval:    e.TimeInterval,
		Source:          e.Source,
		Open:            e.Open,
		High:            e.High,
		Low:             e.Low,
		Close:           e.Close,
		NumConstituents: e.NumConstituents,
	}
}

func toLevel(m LevelModel) entity.IndexLevel {
	return entity.IndexLevel{
		DatetimeUTC:     m.DatetimeUTC,
		TimeInterval:    m.TimeInterval,
		Source:          m.Source,
		Open:            m.Open,
		High:            m.High,
		Low:             m.Low,
		Close:           m.Close,
		NumConstituents: m.NumConstituents,
	}
}

// InsertBatch は水準行を1トランザクションで挿入します。
// 既存行と主キーが衝突した場合はErrWriteConflictを返し、バッチ全体がロールバックされます。
func (r *levelGorm) InsertBatch(ctx context.Context, rows []entity.IndexLevel) error {
	if len(rows) == 0 {
		return nil
	}
	ms := make([]LevelModel, 0, len(rows))
	for _, e := range rows {
		ms = append(ms, toLevelModel(e))
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&ms).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", domain.ErrWriteConflict, err)
	}
	return err
}

// FindRange はソース・インターバルの水準行をタイムスタンプ昇順で返します。
// startDate/endDateがnilでない場合、UTCの暦日が[startDate, endDate]に入る行に限定されます。
func (r *levelGorm) FindRange(ctx context.Context, source, interval string, startDate, endDate *time.Time) ([]entity.IndexLevel, error) {
	q := r.db.WithContext(ctx).
		Where("source = ? AND time_interval = ?", source, interval).
		Order("datetime_utc ASC")
	if startDate != nil {
		q = q.Where("datetime_utc >= ?", *startDate)
	}
	if endDate != nil {
		q = q.Where("datetime_utc < ?", endDate.AddDate(0, 0, 1))
	}

	var rows []LevelModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]entity.IndexLevel, 0, len(rows))
	for _, m := range rows {
		out = append(out, toLevel(m))
	}
	return out, nil
}

// ScaleRange は保存済み水準のOHLC各フィールドをその場でdivisorで割ります。
// 生価格からの再導出は行いません。全更新は1トランザクションで実行されます。
func (r *levelGorm) ScaleRange(ctx context.Context, source string, divisor float64, startDate, endDate *time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&LevelModel{}).Where("source = ?", source)
		if startDate != nil {
			q = q.Where("datetime_utc >= ?", *startDate)
		}
		if endDate != nil {
			q = q.Where("datetime_utc < ?", endDate.AddDate(0, 0, 1))
		}
		return q.UpdateColumns(map[string]any{
			"open":  gorm.Expr("open / ?", divisor),
			"high":  gorm.Expr("high / ?", divisor),
			"low":   gorm.Expr("low / ?", divisor),
			"close": gorm.Expr("close / ?", divisor),
		}).Error
	})
}

// OpenOnFirstDate はソースの日足水準のうち、最初のタイムスタンプの始値を返します。
// 行が存在しない場合はErrEmptyResultを返します。
func (r *levelGorm) OpenOnFirstDate(ctx context.Context, source string) (float64, error) {
	var row LevelModel
	err := r.db.WithContext(ctx).
		Where("source = ? AND time_interval = ?", source, entity.IntervalDaily).
		Order("datetime_utc ASC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: no index levels for source %q", domain.ErrEmptyResult, source)
	}
	if err != nil {
		return 0, err
	}
	return row.Open, nil
}
