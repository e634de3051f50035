// Package logger configures the structured logger shared by cmd/fpctl,
// cmd/fpserver, and the internal/rtree/store/nodecache packages: a
// console core for local runs and a rotating JSON file core for hosted
// ones, following the teacher's two-core zap setup.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the package-level logger instance.
var Log *zap.Logger

// Initialize sets up the structured logger with file rotation.
// logLevel: "debug", "info", "warn", "error" (default: "info").
// logFile: path to log file (default: "fpserver.log").
func Initialize(logLevel, logFile string) error {
	if logFile == "" {
		logFile = "fpserver.log"
	}
	if logLevel == "" {
		logLevel = "info"
	}

	level := parseLogLevel(logLevel)

	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     7,
		Compress:   true,
	})

	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())

	jsonEncoderConfig := zap.NewProductionEncoderConfig()
	jsonEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	jsonEncoder := zapcore.NewJSONEncoder(jsonEncoderConfig)

	consoleCore := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level)
	fileCore := zapcore.NewCore(jsonEncoder, fileWriter, level)
	core := zapcore.NewTee(consoleCore, fileCore)

	Log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	Log.Info("logger initialized", zap.String("level", logLevel), zap.String("file", logFile))
	return nil
}

// Close flushes the logger before shutdown.
func Close() error {
	if Log != nil {
		return Log.Sync()
	}
	return nil
}

func parseLogLevel(levelStr string) zapcore.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// WithPageID tags a log entry with the page being read or written.
func WithPageID(pageID string) zap.Field {
	return zap.String("page_id", pageID)
}

// WithDuration tags a log entry with an operation's wall-clock duration.
func WithDuration(d interface{}) zap.Field {
	return zap.Any("duration", d)
}
