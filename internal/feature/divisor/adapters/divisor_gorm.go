package adapters

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"index_backend/internal/feature/divisor/domain"
	"index_backend/internal/feature/divisor/domain/entity"
)

type divisorGorm struct {
	db *gorm.DB
}

// NewDivisorRepository はindex_level_divisorテーブルへのリポジトリを生成します。
// Setの同一ソースに対する同時呼び出しはエンジン側では直列化されません。
// 呼び出し側でソースごとに直列化してください。
func NewDivisorRepository(db *gorm.DB) *divisorGorm {
	return &divisorGorm{db: db}
}

// DivisorModel はindex_level_divisorテーブルのgormモデルです。
type DivisorModel struct {
	Source             string    `gorm:"size:32;primaryKey"`
	KnowledgeStartDate time.Time `gorm:"primaryKey"`
	KnowledgeEndDate   time.Time `gorm:"not null"`
	Divisor            float64   `gorm:"not null"`
}

func (DivisorModel) TableName() string {
	return "index_level_divisor"
}

func toDivisor(m DivisorModel) entity.Divisor {
	return entity.Divisor{
		Source:             m.Source,
		KnowledgeStartDate: m.KnowledgeStartDate,
		KnowledgeEndDate:   m.KnowledgeEndDate,
		Value:              m.Divisor,
	}
}

// Set は現在開いている区間をstartDateで閉じ、新しい開区間を1トランザクションで挿入します。
// 初回設定（開いている区間が存在しない）の場合は挿入のみが行われます。
func (r *divisorGorm) Set(ctx context.Context, source string, value float64, startDate time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&DivisorModel{}).
			Where("source = ? AND knowledge_end_date = ?", source, entity.EndOfTime).
			Update("knowledge_end_date", startDate)
		if res.Error != nil {
			return res.Error
		}

		m := DivisorModel{
			Source:             source,
			KnowledgeStartDate: startDate,
			KnowledgeEndDate:   entity.EndOfTime,
			Divisor:            value,
		}
		return tx.Create(&m).Error
	})
}

// GetAt はknowledge_start_date <= date < knowledge_end_dateを満たす唯一の区間を返します。
// 0件はErrDivisorNotFound、2件以上はErrDivisorAmbiguousを返します。
func (r *divisorGorm) GetAt(ctx context.Context, source string, date time.Time) (entity.Divisor, error) {
	var rows []DivisorModel
	err := r.db.WithContext(ctx).
		Where("source = ? AND knowledge_start_date <= ? AND knowledge_end_date > ?", source, date, date).
		Find(&rows).Error
	if err != nil {
		return entity.Divisor{}, err
	}

	switch len(rows) {
	case 0:
		return entity.Divisor{}, fmt.Errorf("%w: source=%s date=%s",
			domain.ErrDivisorNotFound, source, date.Format("2006-01-02"))
	case 1:
		return toDivisor(rows[0]), nil
	default:
		return entity.Divisor{}, fmt.Errorf("%w: source=%s date=%s rows=%d",
			domain.ErrDivisorAmbiguous, source, date.Format("2006-01-02"), len(rows))
	}
}

// Intervals はソースの全区間をknowledge_start_date昇順で返します。
func (r *divisorGorm) Intervals(ctx context.Context, source string) ([]entity.Divisor, error) {
	var rows []DivisorModel
	err := r.db.WithContext(ctx).
		Where("source = ?", source).
		Order("knowledge_start_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]entity.Divisor, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDivisor(m))
	}
	return out, nil
}
