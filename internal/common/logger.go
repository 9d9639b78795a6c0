package common

import (
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ILogger is the small logging surface every component depends on, shaped
// after the teacher's common.ILoggerResetable (common/logger.go): callers
// never reach for the zap.Logger directly, so the backend can be swapped
// without touching Mapper/Zipper/Unzipper code.
type ILogger interface {
	Log(level LogLevel, msg string)
	Logf(level LogLevel, format string, args ...interface{})
	Panic(err error)
	CloseLog()
}

type zapLogger struct {
	z *zap.SugaredLogger
}

// NewLogger builds the dual-sink logger described in SPEC_FULL section A.3:
// colorized console output when attached to a TTY, plus a JSON file sink
// under <workDir>/logs/<component>-<runID>.log.
func NewLogger(workDir, component, runID string) (ILogger, error) {
	logDir := filepath.Join(workDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	logPath := filepath.Join(logDir, component+"-"+runID+".log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	consoleEncoderCfg := zap.NewDevelopmentEncoderConfig()
	consoleEncoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		consoleEncoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	fileEncoderCfg := zap.NewProductionEncoderConfig()
	fileEncoderCfg.TimeKey = "ts"
	fileEncoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderCfg), zapcore.AddSync(os.Stdout), zapcore.InfoLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderCfg), zapcore.AddSync(f), zapcore.DebugLevel),
	)

	z := zap.New(core).Sugar().With("component", component, "run", runID)
	return &zapLogger{z: z}, nil
}

func (l *zapLogger) Log(level LogLevel, msg string) {
	switch level {
	case ELogLevel.Debug():
		l.z.Debug(msg)
	case ELogLevel.Warn():
		l.z.Warn(msg)
	case ELogLevel.Error():
		l.z.Error(msg)
	default:
		l.z.Info(msg)
	}
}

func (l *zapLogger) Logf(level LogLevel, format string, args ...interface{}) {
	switch level {
	case ELogLevel.Debug():
		l.z.Debugf(format, args...)
	case ELogLevel.Warn():
		l.z.Warnf(format, args...)
	case ELogLevel.Error():
		l.z.Errorf(format, args...)
	default:
		l.z.Infof(format, args...)
	}
}

// Panic logs err at error level and then panics with it. We do NOT recover
// from this; it is for invariant violations the caller has no way to
// continue past.
func (l *zapLogger) Panic(err error) {
	l.z.Error(err)
	panic(err)
}

func (l *zapLogger) CloseLog() {
	_ = l.z.Sync()
}
