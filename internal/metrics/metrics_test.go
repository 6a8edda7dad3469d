package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNew_registersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CommandsTotal.WithLabelValues("orders", "ok").Inc()
	m.SequenceConflicts.WithLabelValues("orders", "merge_strict").Inc()
	m.CascadeDepth.Observe(3)
	m.RevocationOutcomes.WithLabelValues("compensated").Inc()
	m.RootLockWaitSeconds.Observe(0.01)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	names := map[string]*dto.MetricFamily{}
	for _, f := range families {
		names[f.GetName()] = f
	}
	for _, want := range []string{
		"angzarr_commands_total",
		"angzarr_sequence_conflicts_total",
		"angzarr_projector_dispatch_seconds",
		"angzarr_projector_poisoned_total",
		"angzarr_cascade_depth",
		"angzarr_revocation_outcomes_total",
		"angzarr_root_lock_wait_seconds",
	} {
		if _, ok := names[want]; !ok {
			t.Errorf("expected registered metric family %q", want)
		}
	}
}

func TestHandler_exposesMetricsOverHTTP(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.CommandsTotal.WithLabelValues("orders", "ok").Inc()

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	body := string(raw)
	if !strings.Contains(body, "angzarr_commands_total") {
		t.Errorf("expected metrics body to contain angzarr_commands_total, got %q", body)
	}
}
