// File: internal/service/token.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"account-api/internal/cache"
	"account-api/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrInvalidToken = errors.New("invalid token")

// CustomClaims 定義 JWT 負載內容；RegisteredClaims.ID 即 jti
type CustomClaims struct {
	UserID  int  `json:"user_id"`
	IsStaff bool `json:"is_staff"`
	jwt.RegisteredClaims
}

var (
	timeNow         = time.Now
	newTokenID      = uuid.NewString
	parseWithClaims = jwt.ParseWithClaims
)

const tokenKeyPrefix = "auth:token:"

func tokenKey(jti string) string {
	return tokenKeyPrefix + jti
}

// signingKey 由 SetJWTSecret 設定，未設定時無法簽發或驗證 token
var signingKey []byte

// SetJWTSecret 設定 HS256 簽章金鑰，需在服務啟動前呼叫
func SetJWTSecret(secret string) {
	signingKey = []byte(secret)
}

func jwtSecret() ([]byte, error) {
	if len(signingKey) == 0 {
		return nil, fmt.Errorf("jwt secret not configured")
	}
	return signingKey, nil
}

// IssueAccessToken 產生 JWT 並將 jti 登記於快取；ttl <= 0 表示不過期
func IssueAccessToken(ctx context.Context, c cache.Cache, user model.User, ttl time.Duration) (string, error) {
	secret, err := jwtSecret()
	if err != nil {
		return "", err
	}

	now := timeNow()
	claims := CustomClaims{
		UserID:  user.ID,
		IsStaff: user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       newTokenID(),
			Subject:  strconv.Itoa(user.ID),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	} else {
		ttl = 0
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if err := c.Set(ctx, tokenKey(claims.ID), strconv.Itoa(user.ID), ttl).Err(); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken 驗證簽章、期限，並確認 jti 仍登記於快取
func VerifyAccessToken(ctx context.Context, c cache.Cache, tokenString string) (*CustomClaims, error) {
	secret, err := jwtSecret()
	if err != nil {
		return nil, err
	}

	token, err := parseWithClaims(tokenString, &CustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	owner, err := c.Get(ctx, tokenKey(claims.ID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: revoked", ErrInvalidToken)
		}
		return nil, fmt.Errorf("lookup token: %w", err)
	}
	if owner != strconv.Itoa(claims.UserID) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RevokeAccessToken 移除 jti，之後的驗證一律失敗
func RevokeAccessToken(ctx context.Context, c cache.Cache, claims *CustomClaims) error {
	if err := c.Del(ctx, tokenKey(claims.ID)).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
