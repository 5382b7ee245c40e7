package api

import "account-api/internal/validation"

// ErrorResponse 非欄位型錯誤 (401/403/404/405/500)
// swagger:model api.ErrorResponse
type ErrorResponse struct {
	Message string `json:"message" example:"invalid or missing token"`
}

// ValidationErrorResponse 欄位驗證錯誤，key 為欄位名稱
// swagger:model api.ValidationErrorResponse
type ValidationErrorResponse map[string][]string

// NonFieldErrorsKey 不屬於單一欄位的錯誤所使用的 key
const NonFieldErrorsKey = "non_field_errors"

func NonFieldErrors(msg string) ValidationErrorResponse {
	return ValidationErrorResponse{NonFieldErrorsKey: {msg}}
}

func FieldError(field, msg string) ValidationErrorResponse {
	return ValidationErrorResponse{field: {msg}}
}

// NewValidationErrorResponse 將驗證錯誤轉為欄位對應；無法對應欄位時歸入 non_field_errors
func NewValidationErrorResponse(err error) ValidationErrorResponse {
	if fields := validation.FieldErrors(err); fields != nil {
		return fields
	}
	return NonFieldErrors(err.Error())
}
