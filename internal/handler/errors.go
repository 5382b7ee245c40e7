package handler

import (
	"fmt"
	"net/http"

	"account-api/internal/api"
	"account-api/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// InternalError 記錄原因，對外只回傳通用訊息
func InternalError(c echo.Context, op string, err error) error {
	log.Error().Err(err).
		Str("op", op).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("request failed")
	return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "internal server error"})
}

// BadRequestBody 無法解析請求內容
func BadRequestBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid request body"})
}

// PasswordTooLong 密碼超過 bcrypt 可處理的長度，屬於輸入錯誤
func PasswordTooLong(c echo.Context) error {
	msg := fmt.Sprintf("Ensure this field has no more than %d bytes.", validation.BcryptMaxBytes)
	return c.JSON(http.StatusBadRequest, api.FieldError("password", msg))
}

// MethodNotAllowed 用於已驗證身分但不支援的方法
// @Summary     Disallowed method
// @Description 已驗證的請求使用不支援的方法
// @Tags        users
// @Produce     json
// @Failure     401 {object} api.ErrorResponse
// @Failure     405 {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /users/me [post]
func MethodNotAllowed(c echo.Context) error {
	return c.JSON(http.StatusMethodNotAllowed, api.ErrorResponse{Message: `Method "` + c.Request().Method + `" not allowed.`})
}
