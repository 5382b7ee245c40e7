// File: internal/service/password.go
package service

import (
	"errors"
	"strings"

	"account-api/internal/worker"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// 以此前綴開頭的雜湊值代表不可用於登入的密碼
const unusablePasswordPrefix = "!"

var ErrUnusablePassword = errors.New("password login disabled for this account")

// ErrPasswordTooLong bcrypt 只接受 72 bytes 以內的輸入
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

var (
	bcryptGenerateFromPassword   = bcrypt.GenerateFromPassword
	bcryptCompareHashAndPassword = bcrypt.CompareHashAndPassword

	// hashingPool 限制同時進行的 bcrypt 運算數量；nil 時直接在呼叫端執行
	hashingPool worker.Pool
)

// SetHashingPool 設定 bcrypt 運算使用的 worker pool，需在服務啟動前呼叫
func SetHashingPool(p worker.Pool) {
	hashingPool = p
}

func runHashing(fn func() error) error {
	if hashingPool == nil {
		return fn()
	}
	return worker.Run(hashingPool, fn)
}

// HashPassword 接收明文密碼，回傳 bcrypt 哈希字串
func HashPassword(password string) (string, error) {
	var hash []byte
	err := runHashing(func() error {
		var err error
		hash, err = bcryptGenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return err
	})
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword 比對明文密碼與 bcrypt 哈希，成功回傳 nil，失敗則回傳錯誤
func ComparePassword(hash, password string) error {
	if !HasUsablePassword(hash) {
		return ErrUnusablePassword
	}
	return runHashing(func() error {
		return bcryptCompareHashAndPassword([]byte(hash), []byte(password))
	})
}

// UnusablePassword 產生無法通過比對的隨機標記
func UnusablePassword() string {
	return unusablePasswordPrefix + uuid.NewString()
}

func HasUsablePassword(hash string) bool {
	return hash != "" && !strings.HasPrefix(hash, unusablePasswordPrefix)
}
