package logger

import (
	"franchise-backend/internal/config"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CtxLoggerKey holds the request-scoped logger in fiber locals.
const CtxLoggerKey = "logger"

// Init builds the process logger and installs it as the zap global.
func Init(cfg *config.Config) *zap.Logger {
	var level zapcore.Level
	switch cfg.LogLevel {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var (
		log *zap.Logger
		err error
	)
	if cfg.Env == "production" {
		prodConfig := zap.NewProductionConfig()
		prodConfig.Level = zap.NewAtomicLevelAt(level)
		prodConfig.EncoderConfig.TimeKey = "timestamp"
		prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		log, err = prodConfig.Build()
	} else {
		devConfig := zap.NewDevelopmentConfig()
		devConfig.Level = zap.NewAtomicLevelAt(level)
		devConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		log, err = devConfig.Build()
	}
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	zap.ReplaceGlobals(log)
	return log
}

// FromCtx returns the request-scoped logger, falling back to the global one.
func FromCtx(c *fiber.Ctx) *zap.Logger {
	if l, ok := c.Locals(CtxLoggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.L()
}
