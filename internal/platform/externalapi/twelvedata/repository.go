package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"index_backend/internal/feature/prices/domain/entity"
	"index_backend/internal/feature/prices/usecase"
	"index_backend/internal/platform/externalapi/twelvedata/dto"
)

// TwelveDataMarket はTwelve Data外部APIから価格データを取得するMarketRepository実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
}

// TwelveDataMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	return &TwelveDataMarket{cfg: cfg, client: client}
}

// GetDailySeries は[startDate, endDate]の日足OHLCと発行済株式数を取得し、
// entity.TickerObservationのスライスとして返します。
// 発行済株式数はstatisticsエンドポイントの直近値を全観測へ適用します。
func (t *TwelveDataMarket) GetDailySeries(ctx context.Context, ticker string, startDate, endDate time.Time) ([]entity.TickerObservation, error) {
	shares, err := t.getSharesOutstanding(ctx, ticker)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("interval", "1day")
	q.Set("start_date", startDate.Format("2006-01-02"))
	q.Set("end_date", endDate.Format("2006-01-02"))
	q.Set("timezone", "UTC")
	q.Set("apikey", t.cfg.TwelveDataAPIKey)

	var body dto.TimeSeriesResponse
	if err := t.getJSON(ctx, "/time_series", q, &body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	obs := make([]entity.TickerObservation, 0, len(body.Values))
	for _, v := range body.Values {
		// タイムスタンプをパース
		tm, err := time.Parse("2006-01-02 15:04:05", v.Datetime)
		if err != nil {
			tm, err = time.Parse("2006-01-02", v.Datetime)
			if err != nil {
				return nil, fmt.Errorf("parse time %q: %w", v.Datetime, err)
			}
		}
		o, err := strconv.ParseFloat(v.Open, 64)
		if err != nil {
			return nil, fmt.Errorf("parse open %q: %w", v.Open, err)
		}
		h, err := strconv.ParseFloat(v.High, 64)
		if err != nil {
			return nil, fmt.Errorf("parse high %q: %w", v.High, err)
		}
		l, err := strconv.ParseFloat(v.Low, 64)
		if err != nil {
			return nil, fmt.Errorf("parse low %q: %w", v.Low, err)
		}
		c, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("parse close %q: %w", v.Close, err)
		}

		obs = append(obs, entity.TickerObservation{
			DatetimeUTC:       tm.UTC(),
			Open:              o,
			High:              h,
			Low:               l,
			Close:             c,
			SharesOutstanding: shares,
		})
	}
	return obs, nil
}

// getSharesOutstanding はstatisticsエンドポイントから発行済株式数を取得します。
func (t *TwelveDataMarket) getSharesOutstanding(ctx context.Context, ticker string) (int64, error) {
	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("apikey", t.cfg.TwelveDataAPIKey)

	var body dto.StatisticsResponse
	if err := t.getJSON(ctx, "/statistics", q, &body); err != nil {
		return 0, err
	}
	if body.Status == "error" {
		return 0, fmt.Errorf("twelvedata: %s", body.Message)
	}
	return body.Statistics.StockStatistics.SharesOutstanding, nil
}

// getJSON はGETリクエストを実行し、JSONレスポンスをoutへデコードします。
func (t *TwelveDataMarket) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	u := fmt.Sprintf("%s%s?%s", t.cfg.BaseURL, path, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	res, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	return json.NewDecoder(res.Body).Decode(out)
}
