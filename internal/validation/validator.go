package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BcryptMaxBytes bcrypt 可接受的密碼長度上限
const BcryptMaxBytes = 72

// Validator wraps go-playground/validator for Echo
// swagger:ignore
type Validator struct {
	validator *validator.Validate
}

// New 建立 validator，錯誤欄位名稱取自 json tag
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// bcrypt 的上限以 bytes 計，max 只數字元
	_ = v.RegisterValidation("bcryptmax", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= BcryptMaxBytes
	})
	return &Validator{validator: v}
}

// Validate calls the underlying validator
func (cv *Validator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// FieldErrors 將驗證錯誤轉為 {field: [messages]}；非欄位錯誤回傳 nil
func FieldErrors(err error) map[string][]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = append(out[fe.Field()], message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field may not be blank."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "bcryptmax":
		return fmt.Sprintf("Ensure this field has no more than %d bytes.", BcryptMaxBytes)
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}
