package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/myLogic207/boundedbuf/config"
)

func TestLogFileRotate(t *testing.T) {
	logDir := t.TempDir()
	logfileConf, err := config.WithInitialValues(context.TODO(), map[string]interface{}{
		"PREFIX":       "test",
		"ACTIVE":       true,
		"FOLDER":       logDir,
		"SUFFIX":       "log",
		"ROTATING":     true,
		"ROTATEFORMAT": "$prefix.test.$suffix",
	})
	if err != nil {
		t.Fatal(err)
	}

	logFile, err := NewLogFile(context.Background(), logfileConf)
	if err != nil {
		t.Fatalf("Error creating log file: %v", err)
	}
	if _, err := logFile.Write([]byte("This is a test log message")); err != nil {
		t.Fatal(err)
	}

	filePath := filepath.Join(logDir, "test.log")
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		t.Errorf("Log file does not exist: %v", err)
	}

	if err := logFile.Close(context.Background()); err != nil {
		t.Fatalf("Error closing log file: %v", err)
	}

	if _, err := os.Stat(filepath.Join(logDir, "test.test.log")); err != nil {
		t.Fatalf("Log file was not rotated: %v", err)
	}
	if _, err := os.Stat(filePath); !os.IsNotExist(err) {
		t.Error("Active log file still exists after rotation")
	}
	if _, err := logFile.Write([]byte("late")); err == nil {
		t.Error("Writing to a closed log file must fail")
	}
}

func TestLogFileRotateExisting(t *testing.T) {
	logDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(logDir, "test.test.log"), []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	logfileConf, err := config.WithInitialValues(context.TODO(), map[string]interface{}{
		"PREFIX":       "test",
		"FOLDER":       logDir,
		"ROTATING":     true,
		"ROTATEFORMAT": "$prefix.test.$suffix",
	})
	if err != nil {
		t.Fatal(err)
	}
	logFile, err := NewLogFile(context.Background(), logfileConf)
	if err != nil {
		t.Fatal(err)
	}
	if err := logFile.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(logDir, "test.test.0.log")); err != nil {
		t.Fatalf("Rotated log file was not numbered: %v", err)
	}
}
