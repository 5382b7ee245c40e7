package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=5,bcryptmax"`
	Nickname string  `validate:"max=3"`
}

func TestValidate(t *testing.T) {
	v := New()
	require.NoError(t, v.Validate(&sample{Email: "a@x.com"}))

	short := "pw"
	err := v.Validate(&sample{Email: "bad", Password: &short, Nickname: "toolong"})
	require.Error(t, err)

	fields := FieldErrors(err)
	require.Equal(t, []string{"Enter a valid email address."}, fields["email"])
	require.Equal(t, []string{"Ensure this field has at least 5 characters."}, fields["password"])
	require.Equal(t, []string{"Ensure this field has no more than 3 characters."}, fields["Nickname"])
}

func TestRequiredMessage(t *testing.T) {
	err := New().Validate(&sample{})
	require.Equal(t, map[string][]string{"email": {"This field may not be blank."}}, FieldErrors(err))
}

func TestFieldErrorsNonValidation(t *testing.T) {
	require.Nil(t, FieldErrors(errors.New("plain")))
	require.Nil(t, FieldErrors(nil))
}

func TestBcryptMaxCountsBytes(t *testing.T) {
	v := New()

	ascii := strings.Repeat("a", 72)
	require.NoError(t, v.Validate(&sample{Email: "a@x.com", Password: &ascii}))

	// 40 個字元但有 80 bytes
	accented := strings.Repeat("é", 40)
	err := v.Validate(&sample{Email: "a@x.com", Password: &accented})
	require.Equal(t, map[string][]string{
		"password": {"Ensure this field has no more than 72 bytes."},
	}, FieldErrors(err))

	tooLong := strings.Repeat("a", 73)
	require.Error(t, v.Validate(&sample{Email: "a@x.com", Password: &tooLong}))
}
