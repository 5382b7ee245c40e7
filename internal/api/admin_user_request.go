package api

// swagger:model api.AdminCreateUserRequest
type AdminCreateUserRequest struct {
	Email       string  `json:"email" validate:"required,email,max=255" example:"staff@example.com"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=5,bcryptmax" example:"Secret123!"`
	Name        string  `json:"name" validate:"max=255" example:"Staff"`
	IsActive    *bool   `json:"is_active,omitempty" example:"true"`
	IsStaff     bool    `json:"is_staff" example:"true"`
	IsSuperuser bool    `json:"is_superuser" example:"false"`
}

// AdminUpdateUserRequest email 與 last_login 為唯讀
// swagger:model api.AdminUpdateUserRequest
type AdminUpdateUserRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255" example:"Staff"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=5,bcryptmax" example:"NewSecret456!"`
	IsActive    *bool   `json:"is_active,omitempty" example:"false"`
	IsStaff     *bool   `json:"is_staff,omitempty" example:"true"`
	IsSuperuser *bool   `json:"is_superuser,omitempty" example:"false"`
}
