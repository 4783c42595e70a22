package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestFileOutputWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sms-cost.log")

	cfg := DefaultConfig()
	cfg.Format = "json"
	cfg.Output = path

	logger := New(cfg)
	logger.Info("cost computed", zap.String("total", "28.00"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"total":"28.00"`) {
		t.Errorf("expected structured field in log output, got %s", data)
	}
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "chatty"
	logger := New(cfg)

	if logger.Core().Enabled(zap.DebugLevel) {
		t.Error("debug should be disabled when level falls back to info")
	}
	if !logger.Core().Enabled(zap.InfoLevel) {
		t.Error("info should be enabled")
	}
}
