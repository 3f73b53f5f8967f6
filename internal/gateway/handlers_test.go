package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/flemzord/parley/internal/provider"
	"github.com/flemzord/parley/internal/provider/providertest"
	"github.com/flemzord/parley/internal/session"
)

func TestChat_Success(t *testing.T) {
	t.Parallel()

	mock := &providertest.MockProvider{
		CompleteFunc: func(_ context.Context, _ provider.CompletionRequest) (provider.CompletionResponse, error) {
			return provider.CompletionResponse{Content: "**hi** there"}, nil
		},
	}
	g := newTestGateway(t, mock)

	rr := do(t, g, http.MethodPost, "/api/chat", map[string]string{"message": "hello"})
	expectStatus(t, rr, http.StatusOK)

	resp := decode[chatResponse](t, rr)
	if resp.Response != "**hi** there" {
		t.Errorf("response = %q", resp.Response)
	}
	if !strings.Contains(resp.FormattedResponse, "<strong>hi</strong>") {
		t.Errorf("formatted_response = %q", resp.FormattedResponse)
	}
	if resp.Timestamp == "" {
		t.Error("timestamp is empty")
	}
	if resp.ConversationSummary != "Conversation contains 2 messages: 1 from user, 1 from assistant." {
		t.Errorf("conversation_summary = %q", resp.ConversationSummary)
	}

	reqs := mock.Requests()
	if len(reqs) != 1 || reqs[0].Messages[len(reqs[0].Messages)-1].Content != "hello" {
		t.Errorf("provider requests = %+v", reqs)
	}
}

func TestChat_BadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body any
	}{
		{"no body", nil},
		{"malformed", "{not json"},
		{"missing message", map[string]string{}},
		{"empty message", map[string]string{"message": ""}},
		{"blank message", map[string]string{"message": "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mock := &providertest.MockProvider{}
			g := newTestGateway(t, mock)

			rr := do(t, g, http.MethodPost, "/api/chat", tt.body)
			expectStatus(t, rr, http.StatusBadRequest)
			if resp := decode[errorResponse](t, rr); resp.Error == "" {
				t.Error("error message is empty")
			}
			if n := len(mock.Requests()); n != 0 {
				t.Errorf("provider called %d times", n)
			}
		})
	}
}

func TestChat_ProviderFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"auth", fmt.Errorf("%w: invalid x-api-key", provider.ErrAuth), "authentication failed"},
		{"rate limit", fmt.Errorf("%w: slow down", provider.ErrRateLimit), "rate limit"},
		{"gateway", fmt.Errorf("%w: overloaded", provider.ErrGateway), "overloaded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mock := &providertest.MockProvider{
				CompleteFunc: func(context.Context, provider.CompletionRequest) (provider.CompletionResponse, error) {
					return provider.CompletionResponse{}, tt.err
				},
			}
			g := newTestGateway(t, mock)

			rr := do(t, g, http.MethodPost, "/api/chat", map[string]string{"message": "hi"})
			expectStatus(t, rr, http.StatusInternalServerError)
			if resp := decode[errorResponse](t, rr); !strings.Contains(resp.Error, tt.contains) {
				t.Errorf("error = %q, want it to contain %q", resp.Error, tt.contains)
			}
			if n := g.chat.Session().Len(); n != 0 {
				t.Errorf("history length = %d after failure, want 0", n)
			}
		})
	}
}

func TestClear(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, &providertest.MockProvider{})
	do(t, g, http.MethodPost, "/api/chat", map[string]string{"message": "one"})

	rr := do(t, g, http.MethodPost, "/api/conversation/clear", nil)
	expectStatus(t, rr, http.StatusOK)
	if resp := decode[messageResponse](t, rr); resp.Message == "" {
		t.Error("message is empty")
	}
	if n := g.chat.Session().Len(); n != 0 {
		t.Errorf("history length = %d, want 0", n)
	}
}

func TestHistory(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, &providertest.MockProvider{})

	rr := do(t, g, http.MethodGet, "/api/conversation/history", nil)
	expectStatus(t, rr, http.StatusOK)
	empty := decode[historyResponse](t, rr)
	if empty.History == nil || len(empty.History) != 0 {
		t.Errorf("history = %#v, want empty array", empty.History)
	}
	if empty.Summary != session.NoHistorySummary {
		t.Errorf("summary = %q", empty.Summary)
	}

	do(t, g, http.MethodPost, "/api/chat", map[string]string{"message": "# title"})
	rr = do(t, g, http.MethodGet, "/api/conversation/history", nil)
	expectStatus(t, rr, http.StatusOK)
	resp := decode[historyResponse](t, rr)
	if len(resp.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(resp.History))
	}
	if resp.History[0].Role != "user" || resp.History[0].Content != "# title" {
		t.Errorf("history[0] = %+v", resp.History[0])
	}
	if !strings.Contains(resp.History[0].FormattedContent, "<h1>title</h1>") {
		t.Errorf("formatted_content = %q", resp.History[0].FormattedContent)
	}
	if resp.History[1].Role != "assistant" || resp.History[1].Content != "echo: # title" {
		t.Errorf("history[1] = %+v", resp.History[1])
	}
}

func TestExportImport(t *testing.T) {
	t.Parallel()

	src := newTestGateway(t, &providertest.MockProvider{})
	do(t, src, http.MethodPost, "/api/chat", map[string]string{"message": "remember me"})

	rr := do(t, src, http.MethodGet, "/api/conversation/export", nil)
	expectStatus(t, rr, http.StatusOK)
	exported := decode[exportResponse](t, rr)
	if exported.Filename != "conversation_20240309_140507.json" {
		t.Errorf("filename = %q", exported.Filename)
	}
	if !strings.Contains(exported.Conversation, "remember me") {
		t.Errorf("conversation = %q", exported.Conversation)
	}

	dst := newTestGateway(t, &providertest.MockProvider{})
	rr = do(t, dst, http.MethodPost, "/api/conversation/import", map[string]string{"conversation": exported.Conversation})
	expectStatus(t, rr, http.StatusOK)
	imported := decode[messageResponse](t, rr)
	if imported.Summary != "Conversation contains 2 messages: 1 from user, 1 from assistant." {
		t.Errorf("summary = %q", imported.Summary)
	}

	want := src.chat.Session().History()
	got := dst.chat.Session().History()
	if len(got) != len(want) {
		t.Fatalf("imported %d messages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Role != want[i].Role || got[i].Content != want[i].Content || !got[i].Timestamp.Equal(want[i].Timestamp) {
			t.Errorf("message %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestImport_InvalidLeavesHistory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body any
	}{
		{"missing conversation", map[string]string{}},
		{"not json", map[string]string{"conversation": "garbage"}},
		{"wrong shape", map[string]string{"conversation": `{"role":"user"}`}},
		{"bad role", map[string]string{"conversation": `[{"role":"system","content":"x","timestamp":"2024-01-01T00:00:00Z"}]`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := newTestGateway(t, &providertest.MockProvider{})
			do(t, g, http.MethodPost, "/api/chat", map[string]string{"message": "keep"})

			rr := do(t, g, http.MethodPost, "/api/conversation/import", tt.body)
			expectStatus(t, rr, http.StatusBadRequest)
			if n := g.chat.Session().Len(); n != 2 {
				t.Errorf("history length = %d, want 2", n)
			}
		})
	}
}

func TestSystemPrompt(t *testing.T) {
	t.Parallel()

	mock := &providertest.MockProvider{}
	g := newTestGateway(t, mock)

	rr := do(t, g, http.MethodGet, "/api/system-prompt", nil)
	expectStatus(t, rr, http.StatusOK)
	if resp := decode[systemPromptResponse](t, rr); resp.SystemPrompt != session.DefaultInstructions {
		t.Errorf("system_prompt = %q", resp.SystemPrompt)
	}

	rr = do(t, g, http.MethodPost, "/api/system-prompt", map[string]string{"system_prompt": "Be terse."})
	expectStatus(t, rr, http.StatusOK)

	rr = do(t, g, http.MethodGet, "/api/system-prompt", nil)
	if resp := decode[systemPromptResponse](t, rr); resp.SystemPrompt != "Be terse." {
		t.Errorf("system_prompt = %q, want %q", resp.SystemPrompt, "Be terse.")
	}

	do(t, g, http.MethodPost, "/api/chat", map[string]string{"message": "hi"})
	if reqs := mock.Requests(); len(reqs) != 1 || reqs[0].System != "Be terse." {
		t.Errorf("provider system = %+v", reqs)
	}
}

func TestSystemPrompt_RejectsEmpty(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, &providertest.MockProvider{})
	for _, body := range []any{map[string]string{}, map[string]string{"system_prompt": "  "}} {
		rr := do(t, g, http.MethodPost, "/api/system-prompt", body)
		expectStatus(t, rr, http.StatusBadRequest)
	}
	if got := g.chat.Session().Instructions(); got != session.DefaultInstructions {
		t.Errorf("instructions changed to %q", got)
	}
}

func historyGauge(t *testing.T, g *Gateway) string {
	t.Helper()
	rr := do(t, g, http.MethodGet, "/metrics", nil)
	expectStatus(t, rr, http.StatusOK)
	for line := range strings.SplitSeq(rr.Body.String(), "\n") {
		if v, ok := strings.CutPrefix(line, "parley_history_messages "); ok {
			return v
		}
	}
	t.Fatal("parley_history_messages not exposed")
	return ""
}

func TestHistoryGauge_FollowsClearAndImport(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, &providertest.MockProvider{})
	do(t, g, http.MethodPost, "/api/chat", map[string]string{"message": "one"})
	if got := historyGauge(t, g); got != "2" {
		t.Fatalf("gauge after turn = %s, want 2", got)
	}

	export := decode[exportResponse](t, do(t, g, http.MethodGet, "/api/conversation/export", nil))
	expectStatus(t, do(t, g, http.MethodPost, "/api/conversation/clear", nil), http.StatusOK)
	if got := historyGauge(t, g); got != "0" {
		t.Errorf("gauge after clear = %s, want 0", got)
	}

	rr := do(t, g, http.MethodPost, "/api/conversation/import", map[string]string{"conversation": export.Conversation})
	expectStatus(t, rr, http.StatusOK)
	if got := historyGauge(t, g); got != "2" {
		t.Errorf("gauge after import = %s, want 2", got)
	}
}
