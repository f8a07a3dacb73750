package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"jobtracker/internal/logging"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logging.New(&buf, "info", "json").Info("digest", "applications", 3)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if line["service"] != "tracker" || line["msg"] != "digest" || line["applications"] != float64(3) {
		t.Errorf("unexpected record %v", line)
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(&buf, "warn", "text")
	l.Info("hidden")
	l.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("level filtering failed: %q", buf.String())
	}
}
