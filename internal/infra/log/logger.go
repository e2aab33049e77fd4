package log

// Two zap loggers back every call here:
// the file logger receives everything (debug and up) and rotates through lumberjack,
// the console logger only prints success lines and errors for the operator.
// Until Setup is called both are no-ops, so library code and tests stay silent.

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	Logger        = zap.NewNop()
	consoleLogger = zap.NewNop()
	mu            sync.RWMutex
)

// Options controls where logs go.
type Options struct {
	Dir        string // directory for app.log, default "logs"
	Debug      bool   // write debug entries to the file
	MaxSizeMB  int    // rotation threshold, default 50
	MaxBackups int
}

// Setup builds the file and console loggers. Safe to call more than once.
func Setup(opts Options) error {
	if opts.Dir == "" {
		opts.Dir = "logs"
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 50
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	fileLevel := zapcore.InfoLevel
	if opts.Debug {
		fileLevel = zapcore.DebugLevel
	}

	fileConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, "app.log"),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(fileConfig), zapcore.AddSync(rotator), fileLevel)

	consoleConfig := zap.NewDevelopmentConfig()
	consoleConfig.EncoderConfig.EncodeLevel = customLevelEncoder
	consoleConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleConfig.EncoderConfig.EncodeCaller = nil
	consoleConfig.Development = false
	consoleConfig.DisableStacktrace = true
	consoleConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	console, err := consoleConfig.Build()
	if err != nil {
		return fmt.Errorf("failed to build console logger: %w", err)
	}

	mu.Lock()
	Logger = zap.New(fileCore)
	consoleLogger = console
	mu.Unlock()
	return nil
}

// Sync flushes both loggers.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = Logger.Sync()
	_ = consoleLogger.Sync()
}

func loggers() (*zap.Logger, *zap.Logger) {
	mu.RLock()
	defer mu.RUnlock()
	return Logger, consoleLogger
}

// GenerateRequestID returns a short random id used to correlate request and response lines.
func GenerateRequestID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// LogRequest records an outgoing HTTP request in the file log.
func LogRequest(requestID, method, endpoint string, fields ...zap.Field) {
	file, _ := loggers()
	allFields := append([]zap.Field{
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("endpoint", endpoint),
	}, fields...)
	file.Info("HTTP request", allFields...)
}

// LogResponse records an HTTP response. Failures also reach the console.
func LogResponse(requestID string, statusCode int, durationMs int64, fields ...zap.Field) {
	file, console := loggers()
	allFields := append([]zap.Field{
		zap.String("request_id", requestID),
		zap.Int("status_code", statusCode),
		zap.Int64("duration_ms", durationMs),
	}, fields...)

	if statusCode >= 200 && statusCode < 300 {
		file.Info("HTTP response", allFields...)
		return
	}
	file.Warn("HTTP response", allFields...)
	if endpoint := fieldString(fields, "endpoint"); endpoint != "" {
		console.Error(fmt.Sprintf("✗ HTTP request failed [%d] %s", statusCode, endpoint))
	} else {
		console.Error(fmt.Sprintf("✗ HTTP request failed [%d]", statusCode))
	}
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
)

func customLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString(colorCyan + "DEBUG" + colorReset)
	case zapcore.InfoLevel:
		enc.AppendString(colorGreen + "SUCCESS" + colorReset)
	case zapcore.WarnLevel:
		enc.AppendString(colorYellow + "WARN" + colorReset)
	case zapcore.ErrorLevel, zapcore.FatalLevel, zapcore.PanicLevel:
		enc.AppendString(colorRed + level.CapitalString() + colorReset)
	default:
		enc.AppendString(colorWhite + level.String() + colorReset)
	}
}

// LogInfo writes to the file log only.
func LogInfo(message string, fields ...zap.Field) {
	file, _ := loggers()
	file.Info(message, fields...)
}

// LogSuccess writes to the file log and prints a check-marked line on the console.
func LogSuccess(message string, fields ...zap.Field) {
	file, console := loggers()
	file.Info(message, fields...)
	if ms := fieldInt(fields, "duration_ms"); ms > 0 {
		console.Info(fmt.Sprintf("✓ %s (%dms)", message, ms))
	} else {
		console.Info("✓ " + message)
	}
}

// LogError writes to the file log and the console.
func LogError(message string, fields ...zap.Field) {
	file, console := loggers()
	file.Error(message, fields...)
	console.Error("✗ "+message, errorFields(fields)...)
}

// LogWarn writes to the file log only.
func LogWarn(message string, fields ...zap.Field) {
	file, _ := loggers()
	file.Warn(message, fields...)
}

// LogDebug writes to the file log only.
func LogDebug(message string, fields ...zap.Field) {
	file, _ := loggers()
	file.Debug(message, fields...)
}

func fieldInt(fields []zap.Field, key string) int64 {
	for _, field := range fields {
		if field.Key == key && field.Type == zapcore.Int64Type {
			return field.Integer
		}
	}
	return 0
}

func fieldString(fields []zap.Field, key string) string {
	for _, field := range fields {
		if field.Key == key && field.Type == zapcore.StringType {
			return field.String
		}
	}
	return ""
}

// errorFields keeps only error fields for the console, the rest stays in the file.
func errorFields(fields []zap.Field) []zap.Field {
	var out []zap.Field
	for _, field := range fields {
		if field.Type == zapcore.ErrorType {
			out = append(out, field)
		}
	}
	return out
}
