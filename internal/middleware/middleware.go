package middleware

import (
	"errors"
	"net/http"
	"strings"

	"account-api/internal/cache"
	"account-api/internal/database"
	"account-api/internal/service"
	"account-api/internal/store"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const ContextUserKey = "user"

var (
	verifyAccessToken = service.VerifyAccessToken
	getUserByID       = store.GetUserByID
)

func unauthorized(c echo.Context, msg string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}

func extractClaims(c echo.Context, tokens cache.Cache) (*service.CustomClaims, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return nil, unauthorized(c, "missing token")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, unauthorized(c, "invalid authorization header format")
	}
	claims, err := verifyAccessToken(c.Request().Context(), tokens, strings.TrimSpace(parts[1]))
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			return nil, unauthorized(c, "invalid token")
		}
		// 快取或設定錯誤不是使用者的問題
		log.Error().Err(err).Msg("verify access token")
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return claims, nil
}

// RequireAuth 驗證 Bearer token，成功後將 claims 放入 context
func RequireAuth(tokens cache.Cache) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := extractClaims(c, tokens)
			if err != nil {
				return err
			}
			c.Set(ContextUserKey, claims)
			return next(c)
		}
	}
}

// RequireStaff 必須接在 RequireAuth 之後
// 權限以資料庫為準：token 內的 is_staff 可能已過期（降權、停用）
func RequireStaff(db database.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFromContext(c)
			if !ok {
				return unauthorized(c, "invalid or missing token")
			}
			user, err := getUserByID(c.Request().Context(), db, claims.UserID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return unauthorized(c, "user not found")
				}
				log.Error().Err(err).Int("user_id", claims.UserID).Msg("load staff user")
				return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}
			if !user.IsActive {
				return unauthorized(c, "user inactive or deleted")
			}
			if !user.IsStaff {
				return echo.NewHTTPError(http.StatusForbidden, "staff privileges required")
			}
			return next(c)
		}
	}
}

// ClaimsFromContext 取出 RequireAuth 放入的 claims
func ClaimsFromContext(c echo.Context) (*service.CustomClaims, bool) {
	claims, ok := c.Get(ContextUserKey).(*service.CustomClaims)
	return claims, ok && claims != nil
}
