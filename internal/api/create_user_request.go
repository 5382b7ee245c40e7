package api

// swagger:model api.CreateUserRequest
type CreateUserRequest struct {
	Email string `json:"email" validate:"required,email,max=255" example:"alice@example.com"`
	// 省略時帳號無法以密碼登入
	Password *string `json:"password,omitempty" validate:"omitempty,min=5,bcryptmax" example:"Secret123!"`
	Name     string  `json:"name" validate:"required,max=255" example:"Alice"`
}
