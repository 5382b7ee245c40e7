package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"account-api/internal/cache"
	"account-api/internal/database"
	"account-api/internal/middleware"
	"account-api/internal/model"
	"account-api/internal/service"
	"account-api/internal/store"
	"account-api/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newJSONCtx(e *echo.Echo, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/users/token", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func restore() {
	authenticateUser = service.AuthenticateUser
	issueAccessToken = service.IssueAccessToken
	revokeAccessToken = service.RevokeAccessToken
	updateLastLogin = store.UpdateLastLogin
	timeNow = time.Now
}

func TestTokenHandler(t *testing.T) {
	e := echo.New()
	e.Validator = validation.New()

	t.Run("bind error", func(t *testing.T) {
		t.Cleanup(restore)
		ctx, rec := newJSONCtx(e, http.MethodPost, "{")
		require.NoError(t, TokenHandler(nil, nil, time.Hour)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("blank password", func(t *testing.T) {
		t.Cleanup(restore)
		authenticateUser = func(context.Context, database.Querier, string, string) (*model.User, error) {
			t.Fatal("should not authenticate")
			return nil, nil
		}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":"a@example.com","password":""}`)
		require.NoError(t, TokenHandler(nil, nil, time.Hour)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"password":["This field may not be blank."]}`, rec.Body.String())
	})

	t.Run("bad credentials", func(t *testing.T) {
		t.Cleanup(restore)
		authenticateUser = func(context.Context, database.Querier, string, string) (*model.User, error) {
			return nil, service.ErrInvalidCredentials
		}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":"a@example.com","password":"wrong"}`)
		require.NoError(t, TokenHandler(nil, nil, time.Hour)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"non_field_errors":["Unable to authenticate with the provided credentials"]}`, rec.Body.String())
		require.NotContains(t, rec.Body.String(), "token")
	})

	t.Run("lookup error", func(t *testing.T) {
		t.Cleanup(restore)
		authenticateUser = func(context.Context, database.Querier, string, string) (*model.User, error) {
			return nil, errors.New("db")
		}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":"a@example.com","password":"pw"}`)
		require.NoError(t, TokenHandler(nil, nil, time.Hour)(ctx))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("issue error", func(t *testing.T) {
		t.Cleanup(restore)
		authenticateUser = func(context.Context, database.Querier, string, string) (*model.User, error) {
			return &model.User{ID: 1}, nil
		}
		issueAccessToken = func(context.Context, cache.Cache, model.User, time.Duration) (string, error) {
			return "", errors.New("redis")
		}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":"a@example.com","password":"pw"}`)
		require.NoError(t, TokenHandler(nil, nil, time.Hour)(ctx))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		t.Cleanup(restore)
		fixed := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
		timeNow = func() time.Time { return fixed }
		authenticateUser = func(_ context.Context, _ database.Querier, email, pw string) (*model.User, error) {
			require.Equal(t, "a@example.com", email)
			require.Equal(t, " pw ", pw)
			return &model.User{ID: 9, IsActive: true}, nil
		}
		var gotTTL time.Duration
		issueAccessToken = func(_ context.Context, _ cache.Cache, u model.User, ttl time.Duration) (string, error) {
			require.Equal(t, 9, u.ID)
			gotTTL = ttl
			return "tok", nil
		}
		var loginAt time.Time
		updateLastLogin = func(_ context.Context, _ database.Querier, id int, at time.Time) error {
			require.Equal(t, 9, id)
			loginAt = at
			return nil
		}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":"a@example.com","password":" pw "}`)
		require.NoError(t, TokenHandler(nil, nil, 2*time.Hour)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"token":"tok"}`, rec.Body.String())
		require.Equal(t, 2*time.Hour, gotTTL)
		require.Equal(t, fixed, loginAt)
	})

	t.Run("last login failure still succeeds", func(t *testing.T) {
		t.Cleanup(restore)
		authenticateUser = func(context.Context, database.Querier, string, string) (*model.User, error) {
			return &model.User{ID: 9}, nil
		}
		issueAccessToken = func(context.Context, cache.Cache, model.User, time.Duration) (string, error) {
			return "tok", nil
		}
		updateLastLogin = func(context.Context, database.Querier, int, time.Time) error {
			return errors.New("db")
		}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":"a@example.com","password":"pw"}`)
		require.NoError(t, TokenHandler(nil, nil, time.Hour)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRevokeTokenHandler(t *testing.T) {
	e := echo.New()

	t.Run("no claims", func(t *testing.T) {
		t.Cleanup(restore)
		ctx, rec := newJSONCtx(e, http.MethodDelete, "")
		require.NoError(t, RevokeTokenHandler(nil)(ctx))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("revoke error", func(t *testing.T) {
		t.Cleanup(restore)
		revokeAccessToken = func(context.Context, cache.Cache, *service.CustomClaims) error {
			return errors.New("redis")
		}
		ctx, rec := newJSONCtx(e, http.MethodDelete, "")
		ctx.Set(middleware.ContextUserKey, &service.CustomClaims{UserID: 1})
		require.NoError(t, RevokeTokenHandler(nil)(ctx))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("success with real token", func(t *testing.T) {
		t.Cleanup(restore)
		service.SetJWTSecret("revoke-secret")
		t.Cleanup(func() { service.SetJWTSecret("") })
		tokens := cache.NewMemoryCache()
		tok, err := service.IssueAccessToken(context.Background(), tokens, model.User{ID: 4}, time.Minute)
		require.NoError(t, err)
		claims, err := service.VerifyAccessToken(context.Background(), tokens, tok)
		require.NoError(t, err)

		ctx, rec := newJSONCtx(e, http.MethodDelete, "")
		ctx.Set(middleware.ContextUserKey, claims)
		require.NoError(t, RevokeTokenHandler(tokens)(ctx))
		require.Equal(t, http.StatusNoContent, rec.Code)

		_, err = service.VerifyAccessToken(context.Background(), tokens, tok)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})
}
