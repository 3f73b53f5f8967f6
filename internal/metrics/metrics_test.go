package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flemzord/parley/internal/provider"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_TurnCompleted(t *testing.T) {
	t.Parallel()

	m := New()
	m.TurnCompleted(100*time.Millisecond, provider.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, 2)
	m.TurnCompleted(300*time.Millisecond, provider.TokenUsage{PromptTokens: 20, CompletionTokens: 5, TotalTokens: 25}, 4)

	if got := testutil.ToFloat64(m.turns.WithLabelValues("success")); got != 2 {
		t.Errorf("turns{success} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.history); got != 4 {
		t.Errorf("history = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.tokens.WithLabelValues("prompt")); got != 30 {
		t.Errorf("tokens{prompt} = %v, want 30", got)
	}

	snap := m.Snapshot()
	if snap.Completions != 2 {
		t.Errorf("Completions = %d, want 2", snap.Completions)
	}
	if snap.TotalTokens != 40 {
		t.Errorf("TotalTokens = %d, want 40", snap.TotalTokens)
	}
	if snap.AvgLatency != 200*time.Millisecond {
		t.Errorf("AvgLatency = %v, want 200ms", snap.AvgLatency)
	}
}

func TestMetrics_TurnFailed(t *testing.T) {
	t.Parallel()

	m := New()
	m.TurnFailed(provider.KindAuth, time.Millisecond)
	m.TurnFailed(provider.KindRateLimit, time.Millisecond)
	m.TurnFailed(provider.KindNone, time.Millisecond)

	if got := testutil.ToFloat64(m.turns.WithLabelValues("error")); got != 3 {
		t.Errorf("turns{error} = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.gatewayErrors.WithLabelValues("auth")); got != 1 {
		t.Errorf("errors{auth} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.gatewayErrors.WithLabelValues("unknown")); got != 1 {
		t.Errorf("errors{unknown} = %v, want 1", got)
	}
	if snap := m.Snapshot(); snap.Failures != 3 || snap.AvgLatency != 0 {
		t.Errorf("Snapshot() = %+v", snap)
	}
}

func TestMetrics_HistoryChanged(t *testing.T) {
	t.Parallel()

	m := New()
	m.TurnCompleted(time.Millisecond, provider.TokenUsage{}, 6)
	m.HistoryChanged(0)
	if got := testutil.ToFloat64(m.history); got != 0 {
		t.Errorf("history after clear = %v, want 0", got)
	}
	m.HistoryChanged(14)
	if got := testutil.ToFloat64(m.history); got != 14 {
		t.Errorf("history after import = %v, want 14", got)
	}
	if snap := m.Snapshot(); snap.Completions != 1 {
		t.Errorf("history changes must not count as turns: %+v", snap)
	}
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := New()
	m.TurnCompleted(time.Millisecond, provider.TokenUsage{}, 2)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{"parley_turns_total", "parley_history_messages 2", "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
