// Package handler はlevelsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"index_backend/internal/feature/levels/domain/entity"
	"index_backend/internal/feature/levels/transport/http/dto"
	"index_backend/internal/shared/sources"
	"index_backend/internal/shared/tradingcal"
)

// LevelsSelector は水準参照のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type LevelsSelector interface {
	Select(ctx context.Context, source string, dateSpec any) (map[time.Time]entity.LevelPoint, error)
}

// LevelsHandler はインデックス水準のHTTPリクエストを処理します。
type LevelsHandler struct {
	uc LevelsSelector
}

// NewLevelsHandler は指定されたusecaseでLevelsHandlerの新しいインスタンスを生成します。
func NewLevelsHandler(uc LevelsSelector) *LevelsHandler {
	return &LevelsHandler{uc: uc}
}

// Get はソースと日付指定を受け取り、現地暦日ごとの水準をJSONで返します。
//
// エンドポイント例:
// GET /levels/:source?date=2020-01-02:2020-03-31
func (h *LevelsHandler) Get(c *gin.Context) {
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

	out := make([]dto.LevelResponse, 0, len(dates))
	for _, d := range dates {
		p := res[d]
		out = append(out, dto.LevelResponse{
			Date:            d.Format("2006-01-02"),
			Open:            p.Open,
			High:            p.High,
			Low:             p.Low,
			Close:           p.Close,
			NumConstituents: p.NumConstituents,
		})
	}

	c.JSON(http.StatusOK, out)
}
