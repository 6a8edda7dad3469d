package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestInit_jsonOutput_writesStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, JSONOutput: true, Output: &buf})

	Logger.Info().Str("domain", "orders").Msg("handled command")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected valid JSON line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "handled command" {
		t.Errorf("expected message field, got %+v", line)
	}
	if line["domain"] != "orders" {
		t.Errorf("expected domain field, got %+v", line)
	}
}

func TestInit_warnLevel_suppressesBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: WarnLevel, JSONOutput: true, Output: &buf})

	Logger.Info().Msg("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("expected info line to be suppressed at warn level, got %q", buf.String())
	}

	Logger.Warn().Msg("should appear")
	if buf.Len() == 0 {
		t.Error("expected warn line to appear at warn level")
	}
}

func TestWithComponent_tagsComponentField(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, JSONOutput: true, Output: &buf})

	log := WithComponent("aggregate")
	log.Info().Msg("tick")

	if !strings.Contains(buf.String(), `"component":"aggregate"`) {
		t.Errorf("expected component field in output, got %q", buf.String())
	}
}

func TestWithAggregate_tagsIdentityFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: InfoLevel, JSONOutput: true, Output: &buf})

	log := WithAggregate("orders", "deadbeef", "corr-1")
	log.Info().Msg("dispatching")

	out := buf.String()
	for _, want := range []string{`"domain":"orders"`, `"root":"deadbeef"`, `"correlation_id":"corr-1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got %q", want, out)
		}
	}
}
