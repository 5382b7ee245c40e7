package api

// swagger:model api.TokenRequest
type TokenRequest struct {
	Email string `json:"email" validate:"required,email" example:"alice@example.com"`
	// 不去除前後空白
	Password string `json:"password" validate:"required" example:"Secret123!"`
}

// swagger:model api.TokenResponse
type TokenResponse struct {
	Token string `json:"token" example:"eyJhbGciOi..."`
}
