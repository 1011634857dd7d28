package dto

// LevelResponse は1現地暦日分のインデックス水準のレスポンスDTOです。
type LevelResponse struct {
	Date            string  `json:"date"`             // NYSE現地暦日
	Open            float64 `json:"open"`             // 始値水準
	High            float64 `json:"high"`             // 高値水準
	Low             float64 `json:"low"`              // 安値水準
	Close           float64 `json:"close"`            // 終値水準
	NumConstituents int     `json:"num_constituents"` // 寄与した構成銘柄数
}
