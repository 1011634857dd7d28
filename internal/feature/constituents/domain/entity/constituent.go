package entity

import "time"

// Constituent はあるソースのインデックスにおける、ある日付の構成銘柄1行を表します。
// (Date, Ticker, Source) が主キーで、行は追記のみで更新されません。
type Constituent struct {
	Date   time.Time
	Ticker string
	Source string
}
