package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const LoggerContextKey ContextKey = "request.logger"

const megabyte = 1 << 20

var _ zapcore.WriteSyncer = (*LogWriter)(nil)

// LogWriter is a zapcore.WriteSyncer which appends to a log file under the
// configured folder and opens a fresh one once the size limit is reached.
type LogWriter struct {
	mu       sync.Mutex
	clock    Clocker
	folder   string
	env      string
	maxBytes int64
	file     *os.File
	written  int64
}

func NewLogWriter(config *Config, clock Clocker) *LogWriter {
	env := "dev"
	if config.IsProduction {
		env = "prod"
	}
	return &LogWriter{
		clock:    clock,
		folder:   config.LogFolder,
		env:      env,
		maxBytes: int64(config.LogMaxSize) * megabyte,
	}
}

func (lw *LogWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	size := int64(len(p))
	if size > lw.maxBytes {
		return 0, fmt.Errorf("logging: entry of %d bytes exceeds the %d bytes file limit", size, lw.maxBytes)
	}
	if lw.file == nil || lw.written+size > lw.maxBytes {
		if err := lw.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := lw.file.Write(p)
	lw.written += int64(n)
	return n, err
}

// rotate must be called with the lock held.
func (lw *LogWriter) rotate() error {
	if lw.file != nil {
		if err := lw.file.Close(); err != nil {
			return fmt.Errorf("logging: close %s: %w", lw.file.Name(), err)
		}
		lw.file = nil
	}
	file, err := os.OpenFile(LogFilePath(lw.folder, lw.env, lw.clock.Now()), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	lw.file, lw.written = file, 0
	return nil
}

func (lw *LogWriter) Sync() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if lw.file == nil {
		return nil
	}
	return lw.file.Sync()
}

// Close releases the current file. A later Write opens a new one.
func (lw *LogWriter) Close() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if lw.file == nil {
		return nil
	}
	err := lw.file.Close()
	lw.file = nil
	return err
}

// LogFilePath names a log file after its opening time and environment.
func LogFilePath(folder, env string, t time.Time) string {
	return filepath.Join(folder, fmt.Sprintf("books.%s.%s.log", t.Format("20060102.150405"), env))
}

// consoleSyncer skips Sync on terminals, which fails with EINVAL on most platforms.
type consoleSyncer struct {
	io.Writer
}

func (consoleSyncer) Sync() error { return nil }

// SetupLogging builds the application logger. Entries are written as json to
// w and, outside production, mirrored to stdout in console format. Only fatal
// entries carry a stacktrace. Build details are attached to every entry.
func SetupLogging(config *Config, w zapcore.WriteSyncer, clock zapcore.Clock) (*zap.Logger, func() error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	if !config.IsProduction {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	encoderConfig.TimeKey = "ts"
	encoderConfig.LevelKey = "lvl"
	encoderConfig.NameKey = "name"
	encoderConfig.MessageKey = "msg"
	encoderConfig.CallerKey = "caller"
	encoderConfig.StacktraceKey = "skt"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), w, config.LogLevel)}
	if !config.IsProduction {
		console := zapcore.Lock(consoleSyncer{os.Stdout})
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), console, config.LogLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.FatalLevel),
		zap.WithClock(clock),
	).With(
		zap.String("app.commit", config.GitCommit),
		zap.String("app.tag", config.GitTag),
		zap.String("app.built", config.BuildTime),
	)

	flush := func() error {
		if err := logger.Sync(); err != nil {
			return fmt.Errorf("flush logs: %w", err)
		}
		return nil
	}
	return logger, flush
}

// GetLoggerFromContext returns the request scoped logger, or the
// application logger when none was attached.
func (api *APIHandler) GetLoggerFromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*zap.Logger); ok {
		return logger
	}
	return api.logger
}
