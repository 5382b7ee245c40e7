package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestLogger 以 zerolog 記錄每個請求
func RequestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:     true,
		LogURI:        true,
		LogStatus:     true,
		LogLatency:    true,
		LogRemoteIP:   true,
		LogError:      true,
		LogValuesFunc: logRequest,
	})
}

func logRequest(c echo.Context, v echomw.RequestLoggerValues) error {
	var ev *zerolog.Event
	switch {
	case v.Status >= http.StatusInternalServerError:
		ev = log.Error().Err(v.Error)
	case v.Status >= http.StatusBadRequest:
		ev = log.Warn()
	default:
		ev = log.Info()
	}
	ev.Str("method", v.Method).
		Str("uri", v.URI).
		Int("status", v.Status).
		Dur("latency", v.Latency).
		Str("remote_ip", v.RemoteIP).
		Msg("request")
	return nil
}
