// File: internal/handler/users/me.go
package users

import (
	"errors"
	"net/http"

	"account-api/internal/api"
	"account-api/internal/database"
	"account-api/internal/handler"
	"account-api/internal/middleware"
	"account-api/internal/model"
	"account-api/internal/service"
	"account-api/internal/store"

	"github.com/labstack/echo/v4"
)

// currentUser 依 token 載入使用者；帳號已刪除或停用視同未驗證
func currentUser(c echo.Context, db database.DB) (*model.User, error) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return nil, c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "invalid or missing token"})
	}
	user, err := getUserByID(c.Request().Context(), db, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "user not found"})
		}
		return nil, handler.InternalError(c, "load current user", err)
	}
	if !user.IsActive {
		return nil, c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "user inactive or deleted"})
	}
	return user, nil
}

// GetMeHandler 取得當前使用者資訊
// @Summary     Get current user info
// @Description 透過 Bearer token 取得當前使用者的名稱與 Email
// @Tags        users
// @Produce     json
// @Success     200 {object} api.UserResponse
// @Failure     401 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /users/me [get]
func GetMeHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := currentUser(c, db)
		if user == nil {
			return err
		}
		return c.JSON(http.StatusOK, api.NewUserResponse(user))
	}
}

// UpdateMeHandler 部分更新自己的名稱或密碼
// @Summary     Update current user
// @Description 僅更新有提供的欄位；密碼會重新雜湊
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       body body     api.UpdateMeRequest true "更新內容"
// @Success     200  {object} api.UserResponse
// @Failure     400  {object} api.ValidationErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /users/me [patch]
func UpdateMeHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := currentUser(c, db)
		if user == nil {
			return err
		}

		var req api.UpdateMeRequest
		if err := c.Bind(&req); err != nil {
			return handler.BadRequestBody(c)
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.NewValidationErrorResponse(err))
		}

		updated, err := updateAccount(c.Request().Context(), db, user, service.AccountChanges{
			Name:     req.Name,
			Password: req.Password,
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "user not found"})
			}
			if errors.Is(err, service.ErrPasswordTooLong) {
				return handler.PasswordTooLong(c)
			}
			return handler.InternalError(c, "update account", err)
		}
		return c.JSON(http.StatusOK, api.NewUserResponse(updated))
	}
}
