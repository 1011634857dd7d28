// Package domain はlevelsフィーチャーのドメインエラーを定義します。
package domain

import "errors"

var (
	// ErrEmptyResult は少なくとも1行を要するクエリが0行を返した場合に返されます。
	// 例: 除数ブートストラップに必要な初回取引日の水準が存在しない。
	ErrEmptyResult = errors.New("no rows where at least one was required")

	// ErrWriteConflict は再計算範囲が既存の水準行と重なった場合に返されます。
	// サイレントなUpsertは行わず、バッチ全体が失敗します。
	ErrWriteConflict = errors.New("index level rows already exist for range")
)
