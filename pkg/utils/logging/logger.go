package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogsDir is where log files are written, relative to the working directory
const LogsDir = "logs"

// ConsoleLevelEnv overrides the console level, e.g. LEAD_ALLOCATOR_LOG_LEVEL=debug
const ConsoleLevelEnv = "LEAD_ALLOCATOR_LOG_LEVEL"

// InitLogger initializes a zap logger writing human-readable Info logs to stdout and
// JSON Debug logs to logs/<env>_<timestamp>.log
func InitLogger(env string) (*zap.Logger, error) {
	level, err := consoleLevel(os.Getenv(ConsoleLevelEnv))
	if err != nil {
		return nil, err
	}
	return initLogger(LogsDir, env, time.Now(), level)
}

func consoleLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid %s: %w", ConsoleLevelEnv, err)
	}
	return level, nil
}

// initLogger builds the tee. The file always receives Debug so a run can be
// diagnosed after the fact.
func initLogger(dir, env string, now time.Time, level zapcore.Level) (*zap.Logger, error) {
	if env == "" {
		env = "default"
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	logFileName := filepath.Join(dir, fmt.Sprintf("%s_%s.log", env, now.Format("2006-01-02_15-04-05")))
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	consoleEncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	fileEncoderConfig := zap.NewProductionEncoderConfig()
	fileEncoderConfig.TimeKey = "timestamp"
	fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig), zapcore.AddSync(os.Stdout), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), zapcore.AddSync(logFile), zapcore.DebugLevel),
	)

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}
