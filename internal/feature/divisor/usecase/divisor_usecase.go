// Package usecase はインデックス除数の管理ロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"index_backend/internal/feature/divisor/domain"
	"index_backend/internal/feature/divisor/domain/entity"
)

// DivisorRepository は除数区間の永続化を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type DivisorRepository interface {
	// Set は開いている区間を閉じ、新しい開区間をアトミックに挿入します。
	Set(ctx context.Context, source string, value float64, startDate time.Time) error
	// GetAt は指定日に有効な唯一の区間を返します。
	GetAt(ctx context.Context, source string, date time.Time) (entity.Divisor, error)
}

// LevelRescaler は保存済みインデックス水準のOHLCを係数で割ってリベースします。
type LevelRescaler interface {
	ScaleRange(ctx context.Context, source string, divisor float64, startDate, endDate *time.Time) error
}

// LevelFirstOpenReader は最初の取引日の始値水準を返します。
// 水準データが存在しない場合はlevelsフィーチャーのErrEmptyResultを返します。
type LevelFirstOpenReader interface {
	OpenOnFirstDate(ctx context.Context, source string) (float64, error)
}

// DivisorUsecase は除数の設定・参照・水準リベースのユースケースを定義します。
type DivisorUsecase struct {
	repo      DivisorRepository
	rescaler  LevelRescaler
	firstOpen LevelFirstOpenReader
}

// NewDivisorUsecase は新しい DivisorUsecase を作成します。
func NewDivisorUsecase(repo DivisorRepository, rescaler LevelRescaler, firstOpen LevelFirstOpenReader) *DivisorUsecase {
	return &DivisorUsecase{repo: repo, rescaler: rescaler, firstOpen: firstOpen}
}

// Set はstartDateから有効な除数を設定します。
func (du *DivisorUsecase) Set(ctx context.Context, source string, value float64, startDate time.Time) error {
	if value <= 0 {
		return fmt.Errorf("%w: %g", domain.ErrInvalidDivisor, value)
	}
	if err := du.repo.Set(ctx, source, value, startDate); err != nil {
		return err
	}
	slog.Info("divisor set", "source", source, "value", value, "start", startDate.Format("2006-01-02"))
	return nil
}

// Get は指定日に有効な除数値を返します。
func (du *DivisorUsecase) Get(ctx context.Context, source string, date time.Time) (float64, error) {
	d, err := du.repo.GetAt(ctx, source, date)
	if err != nil {
		return 0, err
	}
	return d.Value, nil
}

// Bootstrap はインデックスがデータ初日にOpeningLevelで始まるよう除数を設定します。
// 除数 = 初回取引日の始値水準 / OpeningLevel。
func (du *DivisorUsecase) Bootstrap(ctx context.Context, source string, startDate time.Time) error {
	open, err := du.firstOpen.OpenOnFirstDate(ctx, source)
	if err != nil {
		return err
	}
	return du.Set(ctx, source, open/entity.OpeningLevel, startDate)
}

// NormalizeLevels はreferenceDate時点で有効な除数で、保存済み水準のOHLCを一括で割ります。
// startDate/endDateがnilでない場合は[startDate, endDate]の行に限定されます。
// 水準計算と除数決定を独立に実行できるようにするためのリベース操作です。
func (du *DivisorUsecase) NormalizeLevels(ctx context.Context, source string, referenceDate time.Time, startDate, endDate *time.Time) error {
	d, err := du.repo.GetAt(ctx, source, referenceDate)
	if err != nil {
		return err
	}
	if err := du.rescaler.ScaleRange(ctx, source, d.Value, startDate, endDate); err != nil {
		return err
	}
	slog.Info("levels normalized", "source", source, "divisor", d.Value,
		"reference", referenceDate.Format("2006-01-02"))
	return nil
}
