// Package router はHTTPルーティングを定義します。
package router

import (
	conshandler "index_backend/internal/feature/constituents/transport/handler"
	levelshandler "index_backend/internal/feature/levels/transport/handler"
	"index_backend/internal/platform/http/handler"

	"github.com/gin-gonic/gin"
)

func NewRouter(constituents *conshandler.ConstituentsHandler, levels *levelshandler.LevelsHandler) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	r.GET("/healthz", handler.Health)

	// 指数の読み取りAPI
	r.GET("/constituents/:source", constituents.Get)
	r.GET("/levels/:source", levels.Get)

	return r
}
