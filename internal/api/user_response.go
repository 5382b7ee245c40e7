package api

import (
	"time"

	"account-api/internal/model"
)

// UserResponse 公開與本人可見的帳號資料
// swagger:model api.UserResponse
type UserResponse struct {
	Name  string `json:"name" example:"Alice"`
	Email string `json:"email" example:"alice@example.com"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{Name: u.Name, Email: u.Email}
}

// AdminUserResponse 管理介面的帳號資料，不含密碼
// swagger:model api.AdminUserResponse
type AdminUserResponse struct {
	ID          int        `json:"id" example:"1"`
	Email       string     `json:"email" example:"alice@example.com"`
	Name        string     `json:"name" example:"Alice"`
	IsActive    bool       `json:"is_active" example:"true"`
	IsStaff     bool       `json:"is_staff" example:"false"`
	IsSuperuser bool       `json:"is_superuser" example:"false"`
	LastLogin   *time.Time `json:"last_login" example:"2025-05-01T15:04:05Z"`
	CreatedAt   time.Time  `json:"created_at" example:"2025-05-01T15:04:05Z"`
}

func NewAdminUserResponse(u *model.User) AdminUserResponse {
	return AdminUserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		LastLogin:   u.LastLogin,
		CreatedAt:   u.CreatedAt,
	}
}
