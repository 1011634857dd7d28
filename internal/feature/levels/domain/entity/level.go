package entity

import "time"

// IntervalDaily はインデックス水準の日足インターバルです。
const IntervalDaily = "1day"

// IndexLevel はある時点のインデックス水準1行を表します。
// (DatetimeUTC, TimeInterval, Source) が主キーです。
// 除数リベース時にはOHLCがその場で一括スケールされます。
type IndexLevel struct {
	DatetimeUTC     time.Time
	TimeInterval    string
	Open            float64
	High            float64
	Low             float64
	Close           float64
	NumConstituents int
	Source          string
}

// LevelPoint は生のタイムスタンプを落とした、現地暦日ごとの水準値です。
type LevelPoint struct {
	Open            float64
	High            float64
	Low             float64
	Close           float64
	NumConstituents int
}
