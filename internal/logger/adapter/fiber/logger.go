// Package fiber provides the zerolog based access log middleware for fiber.
package fiber

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/univhr/hrcore/internal/logger"
)

// Config implements fiber middleware struct.
type Config struct {
	// Next defines a function to skip this middleware when returned true.
	//
	// Optional. Default: nil
	Next func(c fiber.Ctx) bool

	// Config of the logger.
	Config logger.Log

	// CheckAliveURI for disabling logging of check alive http calls.
	CheckAliveURI string

	// CallerLocal is the fiber locals key holding the authenticated employee id.
	CallerLocal string

	// ErrorStatus maps an error returned by the chain to the status the error
	// handler will answer with. Defaults to 500 for errors that are no *fiber.Error.
	ErrorStatus func(err error) int

	// Output overrides the writers derived from Config. Used by tests.
	Output io.Writer
}

// New creates a new fiber access logging middleware using zerolog.
func New(cfg Config) fiber.Handler {
	accessLogger := zerolog.New(accessWriter(cfg)).
		With().
		Timestamp().
		Logger().
		Level(zerolog.NoLevel)

	return func(c fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		start := time.Now()
		chainErr := c.Next()
		elapsed := time.Since(start).Seconds()

		c.Set("X-Performance", fmt.Sprintf("%f", elapsed))

		if cfg.Config.DisableCheckAlive && cfg.CheckAliveURI != "" && c.Path() == cfg.CheckAliveURI {
			return chainErr
		}

		status := c.Response().StatusCode()

		var fe *fiber.Error

		switch {
		case chainErr == nil:
		case cfg.ErrorStatus != nil:
			status = cfg.ErrorStatus(chainErr)
		case errors.As(chainErr, &fe):
			status = fe.Code
		default:
			status = fiber.StatusInternalServerError
		}

		uri := c.Path()
		if qs := c.Request().URI().QueryString(); len(qs) > 0 {
			uri += "?" + string(qs)
		}

		event := accessLogger.Log().
			Str("IP", c.IP()).
			Int("status", status).
			Float64("X-Performance", elapsed).
			Str("URI", uri).
			Str("method", c.Method()).
			Bytes("host", c.Request().Host()).
			Str(fiber.HeaderXForwardedFor, c.Get(fiber.HeaderXForwardedFor)).
			Str(fiber.HeaderUserAgent, c.Get(fiber.HeaderUserAgent))

		if cfg.CallerLocal != "" {
			if caller := c.Locals(cfg.CallerLocal); caller != nil {
				event.Interface("employee_id", caller)
			}
		}

		if chainErr != nil {
			event.Err(chainErr)
		}

		event.Send()

		return chainErr
	}
}

func accessWriter(cfg Config) io.Writer {
	if cfg.Output != nil {
		return cfg.Output
	}

	var writers []io.Writer

	if cfg.Config.File.Enabled {
		if w := logger.NewRollingFile(cfg.Config.File.Path, cfg.Config.File.Access()); w != nil {
			writers = append(writers, w)
		}
	}

	if cfg.Config.Console.Enabled && cfg.Config.EnableAccessLogToConsole {
		if cfg.Config.Console.UseConsoleWriter {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:          os.Stdout,
				TimeFormat:   zerolog.TimeFieldFormat,
				PartsExclude: []string{zerolog.LevelFieldName},
			})
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	return zerolog.MultiLevelWriter(writers...)
}
