// File: internal/service/authentication.go
package service

import (
	"context"
	"errors"
	"sync"

	"account-api/internal/database"
	"account-api/internal/model"
	"account-api/internal/store"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials 所有登入失敗共用同一訊息，不透露是哪個條件不符
var ErrInvalidCredentials = errors.New("Unable to authenticate with the provided credentials")

var getUserByEmail = store.GetUserByEmail

// dummyHash 用於帳號不存在時仍執行一次 bcrypt 比對
var dummyHash = sync.OnceValue(func() string {
	h, err := bcrypt.GenerateFromPassword([]byte("account-api-dummy"), bcrypt.DefaultCost)
	if err != nil {
		return ""
	}
	return string(h)
})

// AuthenticateUser 以 email 與明文密碼驗證，成功回傳使用者
// 帳號不存在、停用、不可用密碼或密碼錯誤皆回傳 ErrInvalidCredentials
func AuthenticateUser(ctx context.Context, db database.Querier, email, password string) (*model.User, error) {
	if password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := getUserByEmail(ctx, db, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = ComparePassword(dummyHash(), password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := CheckPassword(*user, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// CheckPassword 比對使用者現有密碼
func CheckPassword(user model.User, password string) error {
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
