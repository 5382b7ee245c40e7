// File: internal/handler/ping.go
package handler

import (
	"net/http"
	"time"

	"account-api/internal/api"
	"account-api/internal/cache"
	"account-api/internal/database"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const pingKey = "health:ping"

// PingResponse 健康檢查回應模型
// swagger:model handler.PingResponse
type PingResponse struct {
	// 回應訊息
	Message string `json:"message" example:"pong"`
}

// PingHandler 健康檢查
// @Summary     Health Check
// @Description 回傳 pong，並檢查資料庫與快取連線是否正常
// @Tags        health
// @Produce     json
// @Success     200 {object} PingResponse
// @Failure     500 {object} api.ErrorResponse
// @Router      /ping [get]
func PingHandler(db database.DB, c cache.Cache) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		reqCtx := ctx.Request().Context()
		if err := db.Ping(reqCtx); err != nil {
			log.Error().Err(err).Msg("ping database")
			return ctx.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "database unhealthy"})
		}
		if err := c.Set(reqCtx, pingKey, "pong", time.Minute).Err(); err != nil {
			log.Error().Err(err).Msg("ping cache")
			return ctx.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "cache unhealthy"})
		}
		return ctx.JSON(http.StatusOK, PingResponse{Message: "pong"})
	}
}
