package common_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/guarzo/splitwise-mcp/common"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := common.NewLogger("debug", "json", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.WithField("tool", "get_user").Debug("tool call")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a JSON line, got %q", buf.String())
	}
	if entry["msg"] != "tool call" || entry["tool"] != "get_user" || entry["level"] != "debug" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNewLogger_TextFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := common.NewLogger("warn", "text", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("unexpected level %v", logger.GetLevel())
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestNewLogger_Invalid(t *testing.T) {
	if _, err := common.NewLogger("loud", "text", &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := common.NewLogger("info", "xml", &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown format")
	}
}
