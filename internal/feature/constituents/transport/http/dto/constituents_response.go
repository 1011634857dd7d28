package dto

// ConstituentsResponse は1日分のインデックス構成銘柄のレスポンスDTOです。
type ConstituentsResponse struct {
	Date    string   `json:"date"`    // 構成が有効な日付
	Tickers []string `json:"tickers"` // 構成銘柄のティッカー
}
