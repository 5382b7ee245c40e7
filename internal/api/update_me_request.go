package api

// swagger:model api.UpdateMeRequest
type UpdateMeRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=255" example:"Alice"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=5,bcryptmax" example:"NewSecret456!"`
}
