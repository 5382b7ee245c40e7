// File: internal/handler/users/user.go
package users

import (
	"account-api/internal/service"
	"account-api/internal/store"
)

// 以變數保存依賴，測試時可替換
var (
	createAccount = service.CreateAccount
	updateAccount = service.UpdateAccount
	getUserByID   = store.GetUserByID
)

const emailTakenMessage = "user with this email already exists."
