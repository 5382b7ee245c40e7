package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"account-api/internal/database"
	"account-api/internal/model"
	"account-api/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"test1@EXAMPLE.com":     "test1@example.com",
		"Test2@Example.com":     "Test2@example.com",
		"TEST3@EXAMPLE.COM":     "TEST3@example.com",
		"  test4@example.COM  ": "test4@example.com",
		"":                      "",
		"no-at-sign":            "no-at-sign",
	}
	for in, want := range cases {
		require.Equal(t, want, NormalizeEmail(in), in)
	}
}

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("missing email", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		createUser = func(context.Context, database.Querier, *model.User) (*model.User, error) {
			t.Fatal("createUser must not be called")
			return nil, nil
		}
		_, err := CreateAccount(ctx, nil, "", ptr("test123"), AccountFields{})
		require.ErrorIs(t, err, ErrInvalidIdentity)
		_, err = CreateAccount(ctx, nil, "   ", ptr("test123"), AccountFields{})
		require.ErrorIs(t, err, ErrInvalidIdentity)
	})

	t.Run("success", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		var stored model.User
		createUser = func(_ context.Context, _ database.Querier, u *model.User) (*model.User, error) {
			stored = *u
			u.ID = 1
			u.CreatedAt = time.Now()
			return u, nil
		}
		u, err := CreateAccount(ctx, nil, "Test@EXAMPLE.com", ptr("testpass123"), AccountFields{Name: "Test Name"})
		require.NoError(t, err)
		require.Equal(t, 1, u.ID)
		require.Equal(t, "Test@example.com", stored.Email)
		require.Equal(t, "Test Name", stored.Name)
		require.True(t, stored.IsActive)
		require.False(t, stored.IsStaff)
		require.False(t, stored.IsSuperuser)
		require.NotEqual(t, "testpass123", stored.PasswordHash)
		require.NoError(t, CheckPassword(*u, "testpass123"))
	})

	t.Run("no password is unusable", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		createUser = func(_ context.Context, _ database.Querier, u *model.User) (*model.User, error) { return u, nil }
		u, err := CreateAccount(ctx, nil, "a@x.com", nil, AccountFields{IsActive: ptr(false)})
		require.NoError(t, err)
		require.False(t, HasUsablePassword(u.PasswordHash))
		require.False(t, u.IsActive)
	})

	t.Run("duplicate", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		createUser = func(context.Context, database.Querier, *model.User) (*model.User, error) {
			return nil, store.ErrDuplicateEmail
		}
		_, err := CreateAccount(ctx, nil, "a@x.com", ptr("secret"), AccountFields{})
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("store error", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		createUser = func(context.Context, database.Querier, *model.User) (*model.User, error) {
			return nil, errors.New("db")
		}
		_, err := CreateAccount(ctx, nil, "a@x.com", ptr("secret"), AccountFields{})
		require.EqualError(t, err, "db")
	})

	t.Run("hash error", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		bcryptGenerateFromPassword = func([]byte, int) ([]byte, error) { return nil, errors.New("gen") }
		_, err := CreateAccount(ctx, nil, "a@x.com", ptr("secret"), AccountFields{})
		require.Error(t, err)
	})
}

// txDB 回傳一個會記錄 commit 與 rollback 的 FakeTx
func txDB(committed, rolledBack *bool) *database.FakeDB {
	return &database.FakeDB{
		BeginFn: func(context.Context) (pgx.Tx, error) {
			return &database.FakeTx{
				CommitFn: func(context.Context) error { *committed = true; return nil },
				RollbackFn: func(context.Context) error {
					if *committed {
						return pgx.ErrTxClosed
					}
					*rolledBack = true
					return nil
				},
			}, nil
		},
	}
}

func TestCreatePrivilegedAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		var committed, rolledBack bool
		createUser = func(_ context.Context, q database.Querier, u *model.User) (*model.User, error) {
			_, isTx := q.(*database.FakeTx)
			require.True(t, isTx)
			require.False(t, u.IsStaff)
			u.ID = 9
			return u, nil
		}
		var elevated int
		setPrivileges = func(_ context.Context, _ database.Querier, id int, staff, super bool) error {
			require.True(t, staff)
			require.True(t, super)
			elevated = id
			return nil
		}
		u, err := CreatePrivilegedAccount(ctx, txDB(&committed, &rolledBack), "Admin@Example.com", "test123")
		require.NoError(t, err)
		require.Equal(t, 9, elevated)
		require.True(t, u.IsStaff)
		require.True(t, u.IsSuperuser)
		require.Equal(t, "Admin@example.com", u.Email)
		require.True(t, committed)
		require.False(t, rolledBack)
	})

	t.Run("elevation failure rolls back", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		var committed, rolledBack bool
		createUser = func(_ context.Context, _ database.Querier, u *model.User) (*model.User, error) { return u, nil }
		setPrivileges = func(context.Context, database.Querier, int, bool, bool) error { return errors.New("elevate") }
		_, err := CreatePrivilegedAccount(ctx, txDB(&committed, &rolledBack), "a@x.com", "test123")
		require.EqualError(t, err, "elevate")
		require.False(t, committed)
		require.True(t, rolledBack)
	})

	t.Run("missing email", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		var committed, rolledBack bool
		_, err := CreatePrivilegedAccount(ctx, txDB(&committed, &rolledBack), "", "test123")
		require.ErrorIs(t, err, ErrInvalidIdentity)
		require.True(t, rolledBack)
	})

	t.Run("begin error", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		db := &database.FakeDB{BeginFn: func(context.Context) (pgx.Tx, error) { return nil, errors.New("begin") }}
		_, err := CreatePrivilegedAccount(ctx, db, "a@x.com", "test123")
		require.Error(t, err)
	})

	t.Run("commit error", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		createUser = func(_ context.Context, _ database.Querier, u *model.User) (*model.User, error) { return u, nil }
		setPrivileges = func(context.Context, database.Querier, int, bool, bool) error { return nil }
		db := &database.FakeDB{BeginFn: func(context.Context) (pgx.Tx, error) {
			return &database.FakeTx{CommitFn: func(context.Context) error { return errors.New("commit") }}, nil
		}}
		_, err := CreatePrivilegedAccount(ctx, db, "a@x.com", "test123")
		require.ErrorContains(t, err, "commit")
	})
}

func TestCreateAccountWithPrivileges(t *testing.T) {
	ctx := context.Background()

	t.Run("no privileges skips elevation", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		var committed, rolledBack bool
		createUser = func(_ context.Context, _ database.Querier, u *model.User) (*model.User, error) {
			require.False(t, u.IsActive)
			u.ID = 3
			return u, nil
		}
		setPrivileges = func(context.Context, database.Querier, int, bool, bool) error {
			t.Fatal("should not elevate")
			return nil
		}
		u, err := CreateAccountWithPrivileges(ctx, txDB(&committed, &rolledBack), "a@x.com", nil,
			AccountFields{Name: "A", IsActive: ptr(false)}, Privileges{})
		require.NoError(t, err)
		require.False(t, u.IsStaff)
		require.False(t, HasUsablePassword(u.PasswordHash))
		require.True(t, committed)
	})

	t.Run("staff only", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		var committed, rolledBack bool
		createUser = func(_ context.Context, _ database.Querier, u *model.User) (*model.User, error) { u.ID = 4; return u, nil }
		setPrivileges = func(_ context.Context, _ database.Querier, id int, staff, super bool) error {
			require.Equal(t, 4, id)
			require.True(t, staff)
			require.False(t, super)
			return nil
		}
		u, err := CreateAccountWithPrivileges(ctx, txDB(&committed, &rolledBack), "s@x.com", ptr("secret"),
			AccountFields{}, Privileges{IsStaff: true})
		require.NoError(t, err)
		require.True(t, u.IsStaff)
		require.False(t, u.IsSuperuser)
	})

	t.Run("duplicate rolls back", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		var committed, rolledBack bool
		createUser = func(context.Context, database.Querier, *model.User) (*model.User, error) {
			return nil, store.ErrDuplicateEmail
		}
		_, err := CreateAccountWithPrivileges(ctx, txDB(&committed, &rolledBack), "s@x.com", nil, AccountFields{}, Privileges{IsStaff: true})
		require.ErrorIs(t, err, ErrEmailTaken)
		require.True(t, rolledBack)
	})
}

func TestUpdateAccount(t *testing.T) {
	ctx := context.Background()
	oldHash, err := HashPassword("oldpass123")
	require.NoError(t, err)
	base := &model.User{ID: 3, Email: "a@x.com", Name: "Old", PasswordHash: oldHash, IsActive: true}

	t.Run("name and password", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		var committed, rolledBack bool
		var savedHash string
		updateUserPassword = func(_ context.Context, _ database.Querier, id int, hash string) error {
			require.Equal(t, 3, id)
			savedHash = hash
			return nil
		}
		updateUser = func(_ context.Context, _ database.Querier, id int, ch store.UserChanges) (*model.User, error) {
			require.Equal(t, 3, id)
			require.Equal(t, "Updated name", *ch.Name)
			out := *base
			out.Name = *ch.Name
			out.PasswordHash = savedHash
			return &out, nil
		}
		u, err := UpdateAccount(ctx, txDB(&committed, &rolledBack), base, AccountChanges{
			Name:     ptr("Updated name"),
			Password: ptr("newpassword123"),
		})
		require.NoError(t, err)
		require.True(t, committed)
		require.Equal(t, "Updated name", u.Name)
		require.NoError(t, CheckPassword(*u, "newpassword123"))
		require.Error(t, CheckPassword(*u, "oldpass123"))
		require.Equal(t, "Old", base.Name)
	})

	t.Run("name only sends no flags", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		var committed, rolledBack bool
		// 讀取之後帳號已被管理者降權並停用
		stale := &model.User{ID: 3, Name: "Old", IsActive: true, IsStaff: true, IsSuperuser: true}
		updateUser = func(_ context.Context, _ database.Querier, _ int, ch store.UserChanges) (*model.User, error) {
			require.Nil(t, ch.IsActive)
			require.Nil(t, ch.IsStaff)
			require.Nil(t, ch.IsSuperuser)
			return &model.User{ID: 3, Name: *ch.Name, IsActive: false, IsStaff: false}, nil
		}
		updateUserPassword = func(context.Context, database.Querier, int, string) error {
			t.Fatal("password must not change")
			return nil
		}
		u, err := UpdateAccount(ctx, txDB(&committed, &rolledBack), stale, AccountChanges{Name: ptr("New")})
		require.NoError(t, err)
		require.Equal(t, "New", u.Name)
		require.False(t, u.IsActive)
		require.False(t, u.IsStaff)
	})

	t.Run("flags only", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		var committed, rolledBack bool
		updateUser = func(_ context.Context, _ database.Querier, _ int, ch store.UserChanges) (*model.User, error) {
			require.Nil(t, ch.Name)
			require.False(t, *ch.IsActive)
			require.True(t, *ch.IsStaff)
			out := *base
			out.IsActive = false
			out.IsStaff = true
			return &out, nil
		}
		updateUserPassword = func(context.Context, database.Querier, int, string) error {
			t.Fatal("password must not change")
			return nil
		}
		u, err := UpdateAccount(ctx, txDB(&committed, &rolledBack), base, AccountChanges{
			IsActive: ptr(false),
			IsStaff:  ptr(true),
		})
		require.NoError(t, err)
		require.Equal(t, oldHash, u.PasswordHash)
		require.True(t, u.IsStaff)
	})

	t.Run("password write fails", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		var committed, rolledBack bool
		updateUserPassword = func(context.Context, database.Querier, int, string) error { return errors.New("pw") }
		_, err := UpdateAccount(ctx, txDB(&committed, &rolledBack), base, AccountChanges{Password: ptr("newpassword123")})
		require.Error(t, err)
		require.False(t, committed)
		require.True(t, rolledBack)
	})

	t.Run("user gone", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		var committed, rolledBack bool
		updateUser = func(context.Context, database.Querier, int, store.UserChanges) (*model.User, error) {
			return nil, store.ErrNotFound
		}
		_, err := UpdateAccount(ctx, txDB(&committed, &rolledBack), base, AccountChanges{Name: ptr("x")})
		require.ErrorIs(t, err, store.ErrNotFound)
		require.True(t, rolledBack)
	})

	t.Run("password too long", func(t *testing.T) {
		t.Cleanup(restoreGlobals)
		_, err := UpdateAccount(ctx, &database.FakeDB{}, base, AccountChanges{Password: ptr(strings.Repeat("é", 40))})
		require.ErrorIs(t, err, ErrPasswordTooLong)
	})
}
