// File: internal/handler/admin/user.go
package admin

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"account-api/internal/api"
	"account-api/internal/database"
	"account-api/internal/handler"
	"account-api/internal/middleware"
	"account-api/internal/model"
	"account-api/internal/service"
	"account-api/internal/store"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

var (
	listUsers                  = store.ListUsers
	getUserByID                = store.GetUserByID
	createAccountWithPrivilege = service.CreateAccountWithPrivileges
	updateAccount              = service.UpdateAccount
)

func parseID(c echo.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func actorID(c echo.Context) int {
	if claims, ok := middleware.ClaimsFromContext(c); ok {
		return claims.UserID
	}
	return 0
}

// ListUsersHandler 列出所有帳號，依 id 排序
// @Summary     List users
// @Tags        admin
// @Produce     json
// @Success     200 {array}  api.AdminUserResponse
// @Failure     401 {object} api.ErrorResponse
// @Failure     403 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/users [get]
func ListUsersHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		users, err := listUsers(c.Request().Context(), db)
		if err != nil {
			return handler.InternalError(c, "list users", err)
		}
		resp := make([]api.AdminUserResponse, 0, len(users))
		for i := range users {
			resp = append(resp, api.NewAdminUserResponse(&users[i]))
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// GetUserHandler 取得單一帳號
// @Summary     Get user by ID
// @Tags        admin
// @Produce     json
// @Param       id  path     int true "User ID"
// @Success     200 {object} api.AdminUserResponse
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/users/{id} [get]
func GetUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := loadUser(c, db)
		if user == nil {
			return err
		}
		return c.JSON(http.StatusOK, api.NewAdminUserResponse(user))
	}
}

// CreateUserHandler 由管理者建立帳號，可直接指定權限
// @Summary     Create user (admin)
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       body body     api.AdminCreateUserRequest true "帳號資料"
// @Success     201  {object} api.AdminUserResponse
// @Failure     400  {object} api.ValidationErrorResponse
// @Failure     403  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/users [post]
func CreateUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.AdminCreateUserRequest
		if err := c.Bind(&req); err != nil {
			return handler.BadRequestBody(c)
		}
		req.Email = strings.TrimSpace(req.Email)
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.NewValidationErrorResponse(err))
		}

		user, err := createAccountWithPrivilege(c.Request().Context(), db, req.Email, req.Password,
			service.AccountFields{Name: req.Name, IsActive: req.IsActive},
			service.Privileges{IsStaff: req.IsStaff, IsSuperuser: req.IsSuperuser})
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return c.JSON(http.StatusBadRequest, api.FieldError("email", "user with this email already exists."))
		case errors.Is(err, service.ErrInvalidIdentity):
			return c.JSON(http.StatusBadRequest, api.FieldError("email", "This field may not be blank."))
		case errors.Is(err, service.ErrPasswordTooLong):
			return handler.PasswordTooLong(c)
		case err != nil:
			return handler.InternalError(c, "admin create account", err)
		}

		log.Info().Int("actor_id", actorID(c)).Int("user_id", user.ID).
			Bool("is_staff", user.IsStaff).Bool("is_superuser", user.IsSuperuser).
			Msg("account created by admin")
		return c.JSON(http.StatusCreated, api.NewAdminUserResponse(user))
	}
}

// UpdateUserHandler 部分更新帳號；email 與 last_login 不可修改
// @Summary     Update user (admin)
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       id   path     int                        true "User ID"
// @Param       body body     api.AdminUpdateUserRequest true "更新內容"
// @Success     200  {object} api.AdminUserResponse
// @Failure     400  {object} api.ValidationErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/users/{id} [patch]
func UpdateUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := loadUser(c, db)
		if user == nil {
			return err
		}

		var req api.AdminUpdateUserRequest
		if err := c.Bind(&req); err != nil {
			return handler.BadRequestBody(c)
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.NewValidationErrorResponse(err))
		}

		updated, err := updateAccount(c.Request().Context(), db, user, service.AccountChanges{
			Name:        req.Name,
			Password:    req.Password,
			IsActive:    req.IsActive,
			IsStaff:     req.IsStaff,
			IsSuperuser: req.IsSuperuser,
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "user not found"})
			}
			if errors.Is(err, service.ErrPasswordTooLong) {
				return handler.PasswordTooLong(c)
			}
			return handler.InternalError(c, "admin update account", err)
		}

		log.Info().Int("actor_id", actorID(c)).Int("user_id", updated.ID).Msg("account updated by admin")
		return c.JSON(http.StatusOK, api.NewAdminUserResponse(updated))
	}
}

func loadUser(c echo.Context, db database.DB) (*model.User, error) {
	id, ok := parseID(c)
	if !ok {
		return nil, c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid user id"})
	}
	user, err := getUserByID(c.Request().Context(), db, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "user not found"})
		}
		return nil, handler.InternalError(c, "get user", err)
	}
	return user, nil
}
