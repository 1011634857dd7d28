// Package domain はdivisorフィーチャーのドメインエラーを定義します。
package domain

import "errors"

var (
	// ErrDivisorNotFound は指定日に有効な除数区間が存在しない場合に返されます。
	// データ可用性の異常であり、リトライ対象ではありません。
	ErrDivisorNotFound = errors.New("divisor not found for date")

	// ErrDivisorAmbiguous は指定日に複数の除数区間が一致した場合に返されます。
	// 区間の不変条件（非重複）が破れたデータ整合性の異常です。
	ErrDivisorAmbiguous = errors.New("multiple divisor intervals match date")

	// ErrInvalidDivisor はゼロ以下の除数を設定しようとした場合に返されます。
	ErrInvalidDivisor = errors.New("divisor value must be positive")
)
