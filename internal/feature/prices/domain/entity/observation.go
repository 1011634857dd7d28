package entity

import "time"

// TickerObservation は1銘柄・1タイムスタンプ分の価格と発行済株式数の観測値です。
// インデックスエンジンへの外部入力であり、エンジン側からは読み取り専用です。
type TickerObservation struct {
	Ticker            string
	DatetimeUTC       time.Time
	Open              float64
	High              float64
	Low               float64
	Close             float64
	SharesOutstanding int64
}

// MarketCap は観測時点の時価総額（終値×発行済株式数）を返します。
func (o TickerObservation) MarketCap() float64 {
	return o.Close * float64(o.SharesOutstanding)
}
