// internal/logger/logger.go
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// output 可於測試中替換
var output io.Writer = os.Stderr

// Init 設定全域 zerolog logger。
// format 為 "console" 時輸出易讀格式，其餘輸出 JSON；level 空字串視為 info。
func Init(level, format string) error {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(level)
		if err != nil {
			return err
		}
		lvl = parsed
	}
	zerolog.SetGlobalLevel(lvl)

	w := output
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Caller().Logger()
	return nil
}
