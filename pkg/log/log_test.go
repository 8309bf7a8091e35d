package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func newBufLogger(level Level, f Formatter) (Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewLogger(WithLevel(level), WithFormatter(f), WithOutput(NewWriterOutput(buf))), buf
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufLogger(WarnLevel, &TextFormatter{})
	logger.Debug("d")
	logger.Info("i")
	logger.Warn("w")
	logger.Error("e")
	out := buf.String()
	if strings.Contains(out, "DEBUG") || strings.Contains(out, "INFO") {
		t.Fatalf("levels below warn should be filtered, got %q", out)
	}
	if !strings.Contains(out, "WARN w") || !strings.Contains(out, "ERROR e") {
		t.Fatalf("warn/error missing from output %q", out)
	}
}

func TestWithCarriesFields(t *testing.T) {
	logger, buf := newBufLogger(InfoLevel, &TextFormatter{})
	child := logger.With(Component("lane"), Int("lane", 2))
	child.Info("enqueued", Uint64("seq", 7))
	out := buf.String()
	for _, want := range []string{"component=lane", "lane=2", "seq=7", "enqueued"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}

func TestJSONFormatter(t *testing.T) {
	logger, buf := newBufLogger(InfoLevel, &JSONFormatter{})
	logger.Info("hello", Str("k", "v"))
	var obj map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &obj); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if obj["msg"] != "hello" || obj["level"] != "INFO" || obj["k"] != "v" {
		t.Fatalf("unexpected json entry: %v", obj)
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel("debug"); err != nil || lvl != DebugLevel {
		t.Fatalf("ParseLevel(debug) = %v, %v", lvl, err)
	}
	if lvl, err := ParseLevel(""); err != nil || lvl != InfoLevel {
		t.Fatalf("ParseLevel(empty) = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("ParseLevel(loud) should fail")
	}
}

func TestApplyConfig(t *testing.T) {
	if _, err := ApplyConfig(Config{Level: "info", Format: "json"}); err != nil {
		t.Fatalf("ApplyConfig: %v", err)
	}
	if _, err := ApplyConfig(Config{Format: "xml"}); err == nil {
		t.Fatalf("ApplyConfig should reject unknown format")
	}
}
