// Package handler はconstituentsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"index_backend/internal/feature/constituents/transport/http/dto"
	"index_backend/internal/shared/sources"
	"index_backend/internal/shared/tradingcal"
)

// ConstituentsSelector は構成銘柄参照のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type ConstituentsSelector interface {
	Select(ctx context.Context, source string, dateSpec any) (map[time.Time][]string, error)
}

// ConstituentsHandler は構成銘柄のHTTPリクエストを処理します。
type ConstituentsHandler struct {
	uc ConstituentsSelector
}

// NewConstituentsHandler は指定されたusecaseでConstituentsHandlerの新しいインスタンスを生成します。
func NewConstituentsHandler(uc ConstituentsSelector) *ConstituentsHandler {
	return &ConstituentsHandler{uc: uc}
}

// Get はソースと日付指定を受け取り、日付ごとの構成銘柄をJSONで返します。
//
// エンドポイント例:
// GET /constituents/:source?date=2020-01-02:2020-03-31
func (h *ConstituentsHandler) Get(c *gin.Context) {
	source := c.Param("source")

	var spec any
	if ds := c.Query("date"); ds != "" {
		spec = ds
	}

	res, err := h.uc.Select(c.Request.Context(), source, spec)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sources.ErrInvalidSource) || errors.Is(err, tradingcal.ErrInvalidDateFormat) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	dates := make([]time.Time, 0, len(res))
	for d := range res {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]dto.ConstituentsResponse, 0, len(dates))
	for _, d := range dates {
		out = append(out, dto.ConstituentsResponse{
			Date:    d.Format("2006-01-02"),
			Tickers: res[d],
		})
	}

	c.JSON(http.StatusOK, out)
}
