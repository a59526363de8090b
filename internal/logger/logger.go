package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a structured, leveled logger backed by zap.
type Logger struct {
	*zap.SugaredLogger
}

// Production logs JSON at INFO and above.
func Production() *Logger {
	return New(false)
}

// Development logs colored console output at DEBUG and above.
func Development() *Logger {
	return New(true)
}

func New(debug bool) *Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	}

	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.MessageKey = "message"
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	base, err := cfg.Build(zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		base = zap.NewExample()
	}

	return &Logger{SugaredLogger: base.Sugar()}
}

// Nop discards everything. Used by tests and by code paths built without a logger.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// WithFields returns a child logger carrying the given key/value pairs.
func (l *Logger) WithFields(fields ...any) *Logger {
	return &Logger{SugaredLogger: l.With(fields...)}
}

func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return &Logger{SugaredLogger: l.With("error", err.Error())}
}

func (l *Logger) Debug(msg string, fields ...any) { l.Debugw(msg, fields...) }

func (l *Logger) Info(msg string, fields ...any) { l.Infow(msg, fields...) }

func (l *Logger) Warn(msg string, fields ...any) { l.Warnw(msg, fields...) }

func (l *Logger) Error(msg string, fields ...any) { l.Errorw(msg, fields...) }

func (l *Logger) Fatal(msg string, fields ...any) { l.Fatalw(msg, fields...) }

func (l *Logger) Sync() error {
	return l.SugaredLogger.Sync()
}
