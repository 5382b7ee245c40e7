// File: internal/service/account.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"account-api/internal/database"
	"account-api/internal/model"
	"account-api/internal/store"
)

var (
	ErrInvalidIdentity = errors.New("users must have an email address")
	ErrEmailTaken      = errors.New("user with this email already exists")
)

var (
	createUser         = store.CreateUser
	updateUser         = store.UpdateUser
	updateUserPassword = store.UpdateUserPassword
	setPrivileges      = store.SetPrivileges
)

// AccountFields 建立帳號時的額外欄位
type AccountFields struct {
	Name string
	// nil 代表預設啟用
	IsActive *bool
}

// AccountChanges 部分更新；nil 欄位不變動
type AccountChanges struct {
	Name        *string
	Password    *string
	IsActive    *bool
	IsStaff     *bool
	IsSuperuser *bool
}

// NormalizeEmail 去除前後空白並將網域部分轉為小寫
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// CreateAccount 建立一般帳號。password 為 nil 時帳號無法以密碼登入。
// 權限旗標一律為 false。
func CreateAccount(ctx context.Context, db database.Querier, email string, password *string, fields AccountFields) (*model.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidIdentity
	}

	hash := UnusablePassword()
	if password != nil {
		h, err := HashPassword(*password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = h
	}

	active := true
	if fields.IsActive != nil {
		active = *fields.IsActive
	}

	user, err := createUser(ctx, db, &model.User{
		Email:        email,
		Name:         fields.Name,
		PasswordHash: hash,
		IsActive:     active,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Privileges 權限旗標，只能經由管理介面或 CLI 設定
type Privileges struct {
	IsStaff     bool
	IsSuperuser bool
}

// CreatePrivilegedAccount 先走 CreateAccount 的驗證流程，再於同一交易內提升為 staff 與 superuser
func CreatePrivilegedAccount(ctx context.Context, db database.DB, email, password string) (*model.User, error) {
	return CreateAccountWithPrivileges(ctx, db, email, &password, AccountFields{}, Privileges{IsStaff: true, IsSuperuser: true})
}

// CreateAccountWithPrivileges 建立帳號並設定權限，兩者在同一交易內完成
func CreateAccountWithPrivileges(ctx context.Context, db database.DB, email string, password *string, fields AccountFields, p Privileges) (*model.User, error) {
	var user *model.User
	err := inTx(ctx, db, func(tx database.Querier) error {
		u, err := CreateAccount(ctx, tx, email, password, fields)
		if err != nil {
			return err
		}
		if p.IsStaff || p.IsSuperuser {
			if err := setPrivileges(ctx, tx, u.ID, p.IsStaff, p.IsSuperuser); err != nil {
				return err
			}
			u.IsStaff = p.IsStaff
			u.IsSuperuser = p.IsSuperuser
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateAccount 在單一交易內套用變更並回傳最新資料。
// 只寫入有提供的欄位，不會把先前讀到的旗標寫回去。
func UpdateAccount(ctx context.Context, db database.DB, user *model.User, ch AccountChanges) (*model.User, error) {
	var hash string
	if ch.Password != nil {
		h, err := HashPassword(*ch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = h
	}

	var updated *model.User
	err := inTx(ctx, db, func(tx database.Querier) error {
		if ch.Password != nil {
			if err := updateUserPassword(ctx, tx, user.ID, hash); err != nil {
				return err
			}
		}
		u, err := updateUser(ctx, tx, user.ID, store.UserChanges{
			Name:        ch.Name,
			IsActive:    ch.IsActive,
			IsStaff:     ch.IsStaff,
			IsSuperuser: ch.IsSuperuser,
		})
		if err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func inTx(ctx context.Context, db database.DB, fn func(tx database.Querier) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
