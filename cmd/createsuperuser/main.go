// createsuperuser 建立具 staff 與 superuser 權限的帳號
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"account-api/internal/config"
	"account-api/internal/database"
	"account-api/internal/logger"
	"account-api/internal/service"
	"account-api/internal/validation"

	"github.com/rs/zerolog/log"
)

var (
	loadConfig      = config.LoadDatabase
	newPgxPool      = database.NewPgxPool
	runMigrationsFn = database.RunMigrations
	createAccount   = service.CreatePrivilegedAccount
	exitFunc        = os.Exit
)

// superuserInput 與註冊 API 相同的欄位規則
type superuserInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=5,bcryptmax"`
}

func validateInput(in superuserInput) error {
	err := validation.New().Validate(&in)
	if err == nil {
		return nil
	}
	fields := validation.FieldErrors(err)
	if fields == nil {
		return err
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, name+": "+strings.Join(fields[name], " "))
	}
	return fmt.Errorf("無效的輸入: %s", strings.Join(msgs, "; "))
}

func run(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("createsuperuser", flag.ContinueOnError)
	fs.SetOutput(stderr)
	email := fs.String("email", "", "superuser email")
	password := fs.String("password", "", "superuser password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		fs.Usage()
		return errors.New("-email 與 -password 皆為必填")
	}
	in := superuserInput{Email: strings.TrimSpace(*email), Password: *password}
	if err := validateInput(in); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("無效的 LOG_LEVEL: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := newPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("DB 連線失敗: %v", err)
	}
	defer db.Close()

	if err := runMigrationsFn(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("Migration 執行失敗: %v", err)
	}

	user, err := createAccount(ctx, db, in.Email, in.Password)
	if err != nil {
		return fmt.Errorf("建立 superuser 失敗: %w", err)
	}
	log.Info().Int("user_id", user.ID).Str("email", user.Email).Msg("superuser created")
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		log.Error().Err(err).Msg("createsuperuser failed")
		exitFunc(1)
	}
}
