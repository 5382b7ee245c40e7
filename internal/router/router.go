// File: internal/router/router.go
package router

import (
	"time"

	"github.com/labstack/echo/v4"

	"account-api/internal/cache"
	"account-api/internal/database"
	"account-api/internal/handler"
	"account-api/internal/handler/admin"
	"account-api/internal/handler/auth"
	"account-api/internal/handler/users"
	"account-api/internal/middleware"
)

// Setup 註冊所有路由與中介層
// 中介層逐條掛在路由上：Group.Use 會額外註冊 Any 路由，吃掉 echo 原生的 405
func Setup(e *echo.Echo, db database.DB, tokens cache.Cache, tokenTTL time.Duration) {
	api := e.Group("/api")
	requireAuth := middleware.RequireAuth(tokens)
	requireStaff := middleware.RequireStaff(db)

	// 健康檢查
	api.GET("/ping", handler.PingHandler(db, tokens))

	// 註冊與 token
	api.POST("/users/create", users.CreateUserHandler(db))
	api.POST("/users/token", auth.TokenHandler(db, tokens, tokenTTL))
	api.DELETE("/users/token", auth.RevokeTokenHandler(tokens), requireAuth)

	// 當前使用者；未支援的方法仍需先通過驗證
	api.GET("/users/me", users.GetMeHandler(db), requireAuth)
	api.PATCH("/users/me", users.UpdateMeHandler(db), requireAuth)
	api.POST("/users/me", handler.MethodNotAllowed, requireAuth)
	api.PUT("/users/me", handler.MethodNotAllowed, requireAuth)
	api.DELETE("/users/me", handler.MethodNotAllowed, requireAuth)

	// Staff 專屬帳號管理
	api.GET("/admin/users", admin.ListUsersHandler(db), requireAuth, requireStaff)
	api.POST("/admin/users", admin.CreateUserHandler(db), requireAuth, requireStaff)
	api.GET("/admin/users/:id", admin.GetUserHandler(db), requireAuth, requireStaff)
	api.PATCH("/admin/users/:id", admin.UpdateUserHandler(db), requireAuth, requireStaff)
}
