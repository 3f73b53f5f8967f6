package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flemzord/parley/internal/chat"
	"github.com/flemzord/parley/internal/metrics"
	"github.com/flemzord/parley/internal/provider/providertest"
	"github.com/flemzord/parley/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestGateway wires a gateway over a fresh session and the given mock.
func newTestGateway(t *testing.T, mock *providertest.MockProvider) *Gateway {
	t.Helper()
	sess := session.NewManager(session.Config{Capacity: 20}, discardLogger())
	m := metrics.New()
	svc := chat.NewService(sess, mock, chat.Config{MaxTokens: 100, Temperature: 0.7}, discardLogger(), chat.WithObserver(m))
	g := New(Config{}, svc, m, discardLogger())
	g.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }
	return g
}

// do performs one request against the gateway router.
func do(t *testing.T, g *Gateway, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	g.Handler().ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
}
