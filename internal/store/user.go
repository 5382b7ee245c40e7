package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"account-api/internal/database"
	"account-api/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Postgres unique_violation
const uniqueViolation = "23505"

const userColumns = `id, email, name, password_hash, is_active, is_staff, is_superuser, last_login, created_at`

func scanUser(row pgx.Row, u *model.User) error {
	return row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.IsActive,
		&u.IsStaff,
		&u.IsSuperuser,
		&u.LastLogin,
		&u.CreatedAt,
	)
}

// translate 將 pgx 錯誤轉為 store 層的 sentinel error
func translate(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, ErrDuplicateEmail)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func GetUserByID(ctx context.Context, db database.Querier, userID int) (*model.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		userID,
	)
	u := &model.User{}
	if err := scanUser(row, u); err != nil {
		return nil, translate("GetUserByID", err)
	}
	return u, nil
}

// GetUserByEmail 以已正規化的 email 精確比對
func GetUserByEmail(ctx context.Context, db database.Querier, email string) (*model.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	)
	u := &model.User{}
	if err := scanUser(row, u); err != nil {
		return nil, translate("GetUserByEmail", err)
	}
	return u, nil
}

func ListUsers(ctx context.Context, db database.Querier) ([]model.User, error) {
	rows, err := db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}
	defer rows.Close()

	var list []model.User
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("ListUsers: %w", err)
		}
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}
	return list, nil
}

// CreateUser 新增帳號；email 重複時回傳 ErrDuplicateEmail
func CreateUser(ctx context.Context, db database.Querier, u *model.User) (*model.User, error) {
	row := db.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash, is_active, is_staff, is_superuser)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		u.Email,
		u.Name,
		u.PasswordHash,
		u.IsActive,
		u.IsStaff,
		u.IsSuperuser,
	)
	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		return nil, translate("CreateUser", err)
	}
	return u, nil
}

// UserChanges 部分更新；nil 欄位不寫入
type UserChanges struct {
	Name        *string
	IsActive    *bool
	IsStaff     *bool
	IsSuperuser *bool
}

// UpdateUser 只更新有提供的欄位並回傳最新資料；email 與 last_login 不在此更新。
// 沒有任何欄位時等同 GetUserByID。
func UpdateUser(ctx context.Context, db database.Querier, userID int, ch UserChanges) (*model.User, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if ch.Name != nil {
		set("name", *ch.Name)
	}
	if ch.IsActive != nil {
		set("is_active", *ch.IsActive)
	}
	if ch.IsStaff != nil {
		set("is_staff", *ch.IsStaff)
	}
	if ch.IsSuperuser != nil {
		set("is_superuser", *ch.IsSuperuser)
	}
	if len(sets) == 0 {
		return GetUserByID(ctx, db, userID)
	}

	args = append(args, userID)
	row := db.QueryRow(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+
			fmt.Sprintf(` WHERE id = $%d RETURNING `, len(args))+userColumns,
		args...,
	)
	u := &model.User{}
	if err := scanUser(row, u); err != nil {
		return nil, translate("UpdateUser", err)
	}
	return u, nil
}

func UpdateUserPassword(ctx context.Context, db database.Querier, userID int, passwordHash string) error {
	tag, err := db.Exec(ctx,
		`UPDATE users
		 SET password_hash = $1
		 WHERE id = $2`,
		passwordHash,
		userID,
	)
	if err != nil {
		return fmt.Errorf("UpdateUserPassword: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("UpdateUserPassword: %w", ErrNotFound)
	}
	return nil
}

func SetPrivileges(ctx context.Context, db database.Querier, userID int, isStaff, isSuperuser bool) error {
	tag, err := db.Exec(ctx,
		`UPDATE users SET is_staff = $1, is_superuser = $2 WHERE id = $3`,
		isStaff,
		isSuperuser,
		userID,
	)
	if err != nil {
		return fmt.Errorf("SetPrivileges: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("SetPrivileges: %w", ErrNotFound)
	}
	return nil
}

func UpdateLastLogin(ctx context.Context, db database.Querier, userID int, at time.Time) error {
	_, err := db.Exec(ctx,
		`UPDATE users SET last_login = $1 WHERE id = $2`,
		at,
		userID,
	)
	if err != nil {
		return fmt.Errorf("UpdateLastLogin: %w", err)
	}
	return nil
}
