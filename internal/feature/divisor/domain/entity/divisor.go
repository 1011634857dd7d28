package entity

import "time"

// EndOfTime は現在有効な除数区間の終端を表す番兵日付です。
var EndOfTime = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// OpeningLevel はインデックスの基準開始水準です。
const OpeningLevel = 100.0

// Divisor はあるソースの除数が有効なナレッジ区間 [KnowledgeStartDate, KnowledgeEndDate) を表します。
// 1ソースにつき区間は連続・非重複で、開いた区間（KnowledgeEndDate == EndOfTime）は常に1つだけです。
type Divisor struct {
	Source             string
	KnowledgeStartDate time.Time
	KnowledgeEndDate   time.Time
	Value              float64
}
