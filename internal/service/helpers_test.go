package service

import (
	"time"

	"account-api/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func restoreGlobals() {
	bcryptGenerateFromPassword = bcrypt.GenerateFromPassword
	bcryptCompareHashAndPassword = bcrypt.CompareHashAndPassword
	hashingPool = nil
	createUser = store.CreateUser
	updateUser = store.UpdateUser
	updateUserPassword = store.UpdateUserPassword
	setPrivileges = store.SetPrivileges
	getUserByEmail = store.GetUserByEmail
	timeNow = time.Now
	newTokenID = uuid.NewString
	parseWithClaims = jwt.ParseWithClaims
}

func ptr[T any](v T) *T { return &v }
