package logger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/myLogic207/boundedbuf/config"
)

var (
	ErrOpenLogFile        = errors.New("error opening log file")
	ErrRotateFile         = errors.New("error rotating log file")
	ErrFormattingFilename = errors.New("error formatting filename")
	defaultLogFileConfig  = map[string]interface{}{
		"PREFIX":       "boundedbuf",
		"ACTIVE":       true,
		"ROTATING":     false,
		"ROTATEFORMAT": "$prefix.$date.$time.$suffix",
		"FOLDER":       "log",
		"SUFFIX":       "log",
		"FILENAME":     "$prefix.$suffix",
	}
)

// LogFile is a zapcore.WriteSyncer backed by a file.
// With ROTATING set, Close moves the file to a name built from ROTATEFORMAT.
type LogFile struct {
	mu     sync.Mutex
	file   *os.File
	config *config.Config
}

func NewLogFile(ctx context.Context, options *config.Config) (*LogFile, error) {
	cfg, err := config.WithInitialValuesAndOptions(ctx, defaultLogFileConfig, options)
	if err != nil {
		return nil, errors.Join(ErrInitConfig, err)
	}

	logFile := &LogFile{
		config: cfg,
	}
	if err := logFile.open(ctx); err != nil {
		return nil, errors.Join(ErrOpenLogFile, err)
	}
	return logFile, nil
}

func (l *LogFile) open(ctx context.Context) error {
	rawFilename, _ := l.config.Get(ctx, "FILENAME")
	fullPath, err := l.assemblePath(ctx, rawFilename)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	l.file, err = os.OpenFile(fullPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	return err
}

func (l *LogFile) Name() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

func (l *LogFile) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return 0, ErrFileNotActive
	}
	return l.file.Write(p)
}

func (l *LogFile) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	return l.file.Sync()
}

func (l *LogFile) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	name := l.file.Name()
	if err := l.file.Sync(); err != nil {
		return err
	}
	if err := l.file.Close(); err != nil {
		return err
	}
	l.file = nil

	if rotating, _ := l.config.GetBool(ctx, "ROTATING"); !rotating {
		return nil
	}
	return l.rotate(ctx, name)
}

func (l *LogFile) rotate(ctx context.Context, current string) error {
	rotateFormat, _ := l.config.Get(ctx, "ROTATEFORMAT")
	rotateName, err := l.assemblePath(ctx, rotateFormat)
	if err != nil {
		return errors.Join(ErrRotateFile, err)
	}

	if _, err := os.Stat(rotateName); err != nil && !os.IsNotExist(err) {
		return errors.Join(ErrRotateFile, ErrFileInUse, err)
	} else if err == nil {
		suffix, _ := l.config.Get(ctx, "SUFFIX")
		base := strings.TrimSuffix(rotateName, "."+suffix)
		for i := 0; ; i++ {
			candidate := fmt.Sprintf("%s.%d.%s", base, i, suffix)
			if _, err := os.Stat(candidate); os.IsNotExist(err) {
				rotateName = candidate
				break
			}
		}
	}

	if err := os.Rename(current, rotateName); err != nil {
		return errors.Join(ErrRotateFile, err)
	}
	return nil
}

func (l *LogFile) formatFilename(ctx context.Context, format string) string {
	buffer := strings.Builder{}
	for _, part := range strings.Split(format, ".") {
		switch part {
		case "$prefix":
			prefix, _ := l.config.Get(ctx, "PREFIX")
			prefix = strings.ReplaceAll(prefix, " ", "_")
			buffer.WriteString(strings.ToLower(prefix))
		case "$suffix":
			suffix, _ := l.config.Get(ctx, "SUFFIX")
			buffer.WriteString(suffix)
		case "$date":
			buffer.WriteString(time.Now().Format("2006-01-02"))
		case "$time":
			buffer.WriteString(time.Now().Format("15-04-05"))
		default:
			buffer.WriteString(part)
		}
		buffer.WriteString(".")
	}
	return strings.TrimSuffix(buffer.String(), ".")
}

func (l *LogFile) assemblePath(ctx context.Context, raw string) (string, error) {
	if strings.Contains(raw, "$") {
		raw = l.formatFilename(ctx, raw)
	} else {
		raw = filepath.Base(raw)
	}
	if raw == "" || raw == "." {
		return "", ErrFormattingFilename
	}
	folder, _ := l.config.Get(ctx, "FOLDER")
	return filepath.Abs(filepath.Join(folder, raw))
}
