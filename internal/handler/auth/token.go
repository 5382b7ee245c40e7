// File: internal/handler/auth/token.go
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"account-api/internal/api"
	"account-api/internal/cache"
	"account-api/internal/database"
	"account-api/internal/handler"
	"account-api/internal/middleware"
	"account-api/internal/service"
	"account-api/internal/store"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

var (
	authenticateUser  = service.AuthenticateUser
	issueAccessToken  = service.IssueAccessToken
	revokeAccessToken = service.RevokeAccessToken
	updateLastLogin   = store.UpdateLastLogin
	timeNow           = time.Now
)

// TokenHandler 以 Email/Password 換取 Bearer token
// @Summary     Issue an auth token
// @Description 驗證 Email 與密碼後發行 token；任何驗證失敗都回傳相同訊息
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       body body     api.TokenRequest true "登入資料"
// @Success     200  {object} api.TokenResponse
// @Failure     400  {object} api.ValidationErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Router      /users/token [post]
func TokenHandler(db database.DB, tokens cache.Cache, ttl time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.TokenRequest
		if err := c.Bind(&req); err != nil {
			return handler.BadRequestBody(c)
		}
		req.Email = strings.TrimSpace(req.Email)
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.NewValidationErrorResponse(err))
		}

		ctx := c.Request().Context()
		user, err := authenticateUser(ctx, db, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				return c.JSON(http.StatusBadRequest, api.NonFieldErrors(service.ErrInvalidCredentials.Error()))
			}
			return handler.InternalError(c, "authenticate", err)
		}

		token, err := issueAccessToken(ctx, tokens, *user, ttl)
		if err != nil {
			return handler.InternalError(c, "issue token", err)
		}

		// last_login 失敗不影響登入結果
		if err := updateLastLogin(ctx, db, user.ID, timeNow()); err != nil {
			log.Warn().Err(err).Int("user_id", user.ID).Msg("update last login")
		}

		return c.JSON(http.StatusOK, api.TokenResponse{Token: token})
	}
}

// RevokeTokenHandler 登出，使目前的 token 失效
// @Summary     Revoke the current token
// @Tags        auth
// @Success     204
// @Failure     401 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /users/token [delete]
func RevokeTokenHandler(tokens cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := middleware.ClaimsFromContext(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "invalid or missing token"})
		}
		if err := revokeAccessToken(c.Request().Context(), tokens, claims); err != nil {
			return handler.InternalError(c, "revoke token", err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
