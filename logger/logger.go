package logger

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/myLogic207/boundedbuf/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerCtxKey string

const (
	ckeyFields loggerCtxKey = "logger-fields"
)

var (
	ErrInitConfig     = errors.New("error initializing config")
	ErrFileInUse      = errors.New("log file is already in use")
	ErrFileNotActive  = errors.New("log file is not active")
	ErrNoWriter       = errors.New("no log writer active")
	ErrSetLogger      = errors.New("error setting logger")
	invalidCharacters = []string{" ", "\t", "\n", "\r", "\v", "\f", ":", "=", "#", "\\", "\"", "'", "`", "/", ".", ",", ";", "!", "@", "$", "%", "^", "&", "*", "(", ")", "+", "|", "[", "]", "{", "}", "<", ">", "?", "~"}
	defaultLogConfig  = map[string]interface{}{
		"PREFIX":      "LOGGER",
		"COLUMLENGTH": 16,
		"REPLACECHAR": "-",
		"LEVEL":       "INFO",
		"FORMAT":      "console",
		"WRITERS": map[string]interface{}{
			"STDOUT": true,
			"STDERR": false,
			"FILE": map[string]interface{}{
				"ACTIVE": false,
			},
		},
	}
)

type Logger interface {
	Shutdown(ctx context.Context) error
	// Named returns a logger sharing writers and level, with prefix appended to the name.
	Named(prefix string) Logger
	LogMode(level LogLevel) Logger
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})
}

type logger struct {
	level   zap.AtomicLevel
	sugar   *zap.SugaredLogger
	logFile *LogFile
}

func Init(ctx context.Context, configOptions *config.Config) (Logger, error) {
	cfg, err := config.WithInitialValuesAndOptions(ctx, defaultLogConfig, configOptions)
	if err != nil {
		return nil, errors.Join(ErrInitConfig, err)
	}

	rawLevel, _ := cfg.Get(ctx, "LEVEL")
	level, err := ResolveLogLevel(rawLevel)
	if err != nil {
		return nil, errors.Join(ErrInitConfig, err)
	}

	wrapper := &logger{
		level: zap.NewAtomicLevelAt(level.zapLevel()),
	}
	if err := wrapper.setLogger(ctx, cfg); err != nil {
		return nil, err
	}
	return wrapper, nil
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &logger{
		level: zap.NewAtomicLevelAt(zapcore.FatalLevel),
		sugar: zap.NewNop().Sugar(),
	}
}

func (l *logger) setLogger(ctx context.Context, cfg *config.Config) error {
	writer, err := l.generateWriter(ctx, cfg)
	if err != nil {
		return errors.Join(ErrSetLogger, err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	var encoder zapcore.Encoder
	if format, _ := cfg.Get(ctx, "FORMAT"); strings.EqualFold(format, "json") {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	prefixLength, err := cfg.GetInt(ctx, "COLUMLENGTH")
	if err != nil {
		return errors.Join(ErrSetLogger, err)
	}
	rawPrefix, _ := cfg.Get(ctx, "PREFIX")
	replaceChar, _ := cfg.Get(ctx, "REPLACECHAR")
	if replaceChar == "" {
		replaceChar = "-"
	}

	core := zapcore.NewCore(encoder, writer, l.level)
	l.sugar = zap.New(core).Named(formatPrefix(rawPrefix, prefixLength, []rune(replaceChar)[0])).Sugar()
	return nil
}

func (l *logger) generateWriter(ctx context.Context, cfg *config.Config) (zapcore.WriteSyncer, error) {
	var writers []zapcore.WriteSyncer
	if ok, err := cfg.GetBool(ctx, "WRITERS/STDOUT"); err != nil {
		return nil, err
	} else if ok {
		writers = append(writers, zapcore.Lock(os.Stdout))
	}
	if ok, err := cfg.GetBool(ctx, "WRITERS/STDERR"); err != nil {
		return nil, err
	} else if ok {
		writers = append(writers, zapcore.Lock(os.Stderr))
	}

	if active, _ := cfg.GetBool(ctx, "WRITERS/FILE/ACTIVE"); active {
		fileOptions, err := cfg.GetConfig(ctx, "WRITERS/FILE")
		if err != nil {
			return nil, err
		}
		if !fileOptions.Has(ctx, "PREFIX") {
			prefix, _ := cfg.Get(ctx, "PREFIX")
			if err := fileOptions.Set(ctx, "PREFIX", prefix, true); err != nil {
				return nil, err
			}
		}
		file, err := NewLogFile(ctx, fileOptions)
		if err != nil {
			return nil, err
		}
		l.logFile = file
		writers = append(writers, file)
	}

	if len(writers) == 0 {
		return nil, ErrNoWriter
	}
	return zapcore.NewMultiWriteSyncer(writers...), nil
}

func formatPrefix(rawPrefix string, prefixLength int, replaceChar rune) string {
	prefix := strings.ToUpper(strings.TrimSpace(rawPrefix))
	for _, char := range invalidCharacters {
		prefix = strings.ReplaceAll(prefix, char, string(replaceChar))
	}
	if len(prefix) < prefixLength {
		prefix += strings.Repeat(" ", prefixLength-len(prefix))
	}
	return prefix
}

func (l *logger) Shutdown(ctx context.Context) error {
	// syncing a terminal fails on some platforms, only the file result matters
	_ = l.sugar.Sync()
	if l.logFile == nil {
		return nil
	}
	return l.logFile.Close(ctx)
}

func (l *logger) Named(prefix string) Logger {
	return &logger{
		level: l.level,
		sugar: l.sugar.Named(strings.TrimSpace(prefix)),
	}
}

func (l *logger) LogMode(level LogLevel) Logger {
	l.level.SetLevel(level.zapLevel())
	return l
}

// WithFields returns a context whose key/value pairs are attached to every line logged with it.
func WithFields(ctx context.Context, keysAndValues ...interface{}) context.Context {
	fields, _ := ctx.Value(ckeyFields).([]interface{})
	merged := make([]interface{}, 0, len(fields)+len(keysAndValues))
	merged = append(merged, fields...)
	merged = append(merged, keysAndValues...)
	return context.WithValue(ctx, ckeyFields, merged)
}

func (l *logger) withContext(ctx context.Context) *zap.SugaredLogger {
	if ctx == nil {
		return l.sugar
	}
	if fields, ok := ctx.Value(ckeyFields).([]interface{}); ok && len(fields) > 0 {
		return l.sugar.With(fields...)
	}
	return l.sugar
}

func (l *logger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.withContext(ctx).Debugf(msg, args...)
}

func (l *logger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.withContext(ctx).Infof(msg, args...)
}

func (l *logger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.withContext(ctx).Warnf(msg, args...)
}

func (l *logger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.withContext(ctx).Errorf(msg, args...)
}
