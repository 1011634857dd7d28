// Package domain はconstituentsフィーチャーのドメインエラーを定義します。
package domain

import "errors"

// ErrWriteConflict は再計算範囲が既存の構成銘柄行と重なった場合に返されます。
// サイレントなUpsertは行わず、バッチ全体が失敗します。
// 呼び出し側が重複しない再計算ウィンドウに責任を持ちます。
var ErrWriteConflict = errors.New("constituent rows already exist for range")
