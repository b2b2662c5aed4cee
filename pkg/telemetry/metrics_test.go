package telemetry

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRecordMetrics(t *testing.T) {
	// Registration must be idempotent across all record paths.
	RegisterMetrics()
	RegisterMetrics()

	RecordPass(2*time.Millisecond, 3)
	RecordRecomposition()
	RecordScopeMounted()
	RecordScopeUnmounted()
	RecordTaskSpawned()
}

func TestMetricsHandlerServesScrape(t *testing.T) {
	RecordPass(time.Millisecond, 1)

	srv := httptest.NewServer(MetricsHandler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	out := string(body)
	for _, want := range []string{
		"loom_compose_passes_total",
		"loom_compose_pass_duration_seconds",
		"loom_compose_scopes_live",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("scrape output missing %q", want)
		}
	}
}

func TestServeMetricsDisabled(t *testing.T) {
	if srv := ServeMetrics(MetricsConfig{Enabled: false}); srv != nil {
		t.Error("disabled config should not start a server")
	}
}
