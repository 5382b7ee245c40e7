// File: internal/handler/users/create_user.go
package users

import (
	"errors"
	"net/http"
	"strings"

	"account-api/internal/api"
	"account-api/internal/database"
	"account-api/internal/handler"
	"account-api/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CreateUserHandler 公開註冊
// @Summary     Register a new user
// @Description 建立一般帳號，未提供密碼時帳號無法以密碼登入
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       body body     api.CreateUserRequest true "註冊資料"
// @Success     201  {object} api.UserResponse
// @Failure     400  {object} api.ValidationErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Router      /users/create [post]
func CreateUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.CreateUserRequest
		if err := c.Bind(&req); err != nil {
			return handler.BadRequestBody(c)
		}
		req.Email = strings.TrimSpace(req.Email)
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.NewValidationErrorResponse(err))
		}

		user, err := createAccount(c.Request().Context(), db, req.Email, req.Password, service.AccountFields{Name: req.Name})
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return c.JSON(http.StatusBadRequest, api.FieldError("email", emailTakenMessage))
		case errors.Is(err, service.ErrInvalidIdentity):
			return c.JSON(http.StatusBadRequest, api.FieldError("email", "This field may not be blank."))
		case errors.Is(err, service.ErrPasswordTooLong):
			return handler.PasswordTooLong(c)
		case err != nil:
			return handler.InternalError(c, "create account", err)
		}

		log.Info().Int("user_id", user.ID).Msg("account registered")
		return c.JSON(http.StatusCreated, api.NewUserResponse(user))
	}
}
