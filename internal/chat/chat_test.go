package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/womenwealthwave/wealthwave/internal/llm"
)

// ── Client ──

func TestClientSubmit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/chat" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Message != "What is a SIP?" || len(req.ChatHistory) != 1 || req.ChatHistory[0].Role != RoleUser {
			t.Errorf("unexpected request body: %+v", req)
		}
		json.NewEncoder(w).Encode(Response{Response: "A SIP is a monthly investment.", Sources: []string{"rbi.pdf"}})
	}))
	defer server.Close()

	c := NewClient(server.URL + "/api/v1/")
	resp, err := c.Submit(context.Background(), "What is a SIP?", []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.Response != "A SIP is a monthly investment." || len(resp.Sources) != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestClientSendsEmptyHistoryArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]json.RawMessage
		json.NewDecoder(r.Body).Decode(&raw)
		if string(raw["chat_history"]) != "[]" {
			t.Errorf("chat_history = %s, want []", raw["chat_history"])
		}
		w.Write([]byte(`{"response":"ok","sources":[]}`))
	}))
	defer server.Close()

	if _, err := NewClient(server.URL).Submit(context.Background(), "budget", nil); err != nil {
		t.Fatal(err)
	}
}

func TestClientErrorDetail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"detail string", 400, `{"detail":"Message cannot be empty"}`, "Message cannot be empty"},
		{"server error", 500, `{"detail":"An error occurred: ollama down"}`, "An error occurred: ollama down"},
		{"non-json body", 502, `<html>Bad Gateway</html>`, "Unknown error"},
		{"empty body", 503, ``, "Unknown error"},
		{"json without detail", 500, `{"error":"x"}`, "Failed to get response"},
		{"structured detail", 422, `{"detail":[{"msg":"field required"}]}`, `[{"msg":"field required"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL).Submit(context.Background(), "loan", nil)
			var re *RemoteError
			if !errors.As(err, &re) {
				t.Fatalf("expected *RemoteError, got %T: %v", err, err)
			}
			if re.Status != tt.status || re.Detail != tt.want {
				t.Errorf("RemoteError = %+v, want status %d detail %q", re, tt.status, tt.want)
			}
			if calls != 1 {
				t.Errorf("expected exactly one request, got %d", calls)
			}
		})
	}
}

func TestClientTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url, WithTimeout(time.Second)).Submit(context.Background(), "tax", nil)
	if err == nil || !strings.Contains(err.Error(), "chat: request failed") {
		t.Fatalf("unexpected error: %v", err)
	}
}

// ── Assistant ──

type fakeProvider struct {
	mu       sync.Mutex
	calls    int
	messages []llm.Message
	opts     *llm.ChatOptions
	reply    string
	err      error
}

func (f *fakeProvider) Name() string                 { return "fake" }
func (f *fakeProvider) Models() []string             { return nil }
func (f *fakeProvider) Ping(ctx context.Context) error { return nil }
func (f *fakeProvider) Chat(ctx context.Context, messages []llm.Message, opts *llm.ChatOptions) (*llm.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.messages = messages
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Content: f.reply, Provider: "fake"}, nil
}

func TestIsFinanceRelated(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"How do I start INVESTING?", true},
		{"What is a good EMI for a home loan", true},
		{"Tell me about real estate", true},
		{"Is ₹500 a month enough?", true},
		{"What is the weather today?", false},
		{"Write me a poem", false},
	}
	for _, tt := range tests {
		if got := IsFinanceRelated(tt.msg); got != tt.want {
			t.Errorf("IsFinanceRelated(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}

func TestAssistantRejectsEmpty(t *testing.T) {
	p := &fakeProvider{}
	a := NewAssistant(p, nil, nil)
	for _, msg := range []string{"", "   ", "\n\t"} {
		if _, err := a.Submit(context.Background(), msg, nil); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("Submit(%q) error = %v, want ErrEmptyMessage", msg, err)
		}
	}
	if p.calls != 0 {
		t.Error("provider must not be called for empty messages")
	}
}

func TestAssistantScopeGate(t *testing.T) {
	p := &fakeProvider{reply: "should not be used"}
	resp, err := NewAssistant(p, nil, nil).Submit(context.Background(), "Who won the cricket match?", nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Response != ScopeReply {
		t.Errorf("expected scope reply, got %q", resp.Response)
	}
	if resp.Sources == nil || len(resp.Sources) != 0 {
		t.Errorf("Sources = %v, want empty non-nil", resp.Sources)
	}
	if p.calls != 0 {
		t.Error("provider must not be called for off-topic messages")
	}
}

func TestAssistantCallsProvider(t *testing.T) {
	p := &fakeProvider{reply: "English Response:\nStart a SIP of ₹500."}
	opts := &llm.ChatOptions{Temperature: 0.7, TopP: 0.9, MaxTokens: 300}
	a := NewAssistant(p, opts, nil)

	history := []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: "system", Content: "ignored"},
	}
	resp, err := a.Submit(context.Background(), "  How should I invest?  ", history)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Response != p.reply {
		t.Errorf("Response = %q", resp.Response)
	}
	if p.opts != opts {
		t.Error("chat options not forwarded")
	}

	if len(p.messages) != 4 {
		t.Fatalf("expected system + 2 history + user, got %d messages", len(p.messages))
	}
	if p.messages[0].Role != llm.RoleSystem || !strings.Contains(p.messages[0].Content, "You are WomenWealthWave") {
		t.Errorf("first message should be the system prompt: %+v", p.messages[0])
	}
	if !strings.Contains(p.messages[0].Content, noContext) {
		t.Error("system prompt should fall back to general knowledge context")
	}
	last := p.messages[3]
	if last.Role != llm.RoleUser || last.Content != "How should I invest?" {
		t.Errorf("last message = %+v", last)
	}
}

func TestAssistantProviderError(t *testing.T) {
	p := &fakeProvider{err: llm.ErrProviderDown}
	_, err := NewAssistant(p, nil, nil).Submit(context.Background(), "budget tips", nil)
	if !errors.Is(err, llm.ErrProviderDown) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestSystemPromptContext(t *testing.T) {
	got := SystemPrompt("[rbi.pdf]: Savings accounts earn 3%.")
	if !strings.Contains(got, "Context:\n[rbi.pdf]: Savings accounts earn 3%.") {
		t.Errorf("context not embedded: %s", got)
	}
}

// ── Session ──

func TestSessionSend(t *testing.T) {
	var gotHistory []Message
	s := NewSession(SubmitterFunc(func(ctx context.Context, message string, history []Message) (*Response, error) {
		gotHistory = history
		return &Response{Response: "echo: " + message}, nil
	}))
	if s.ID == "" {
		t.Fatal("session should have an ID")
	}

	reply, ok := s.Send(context.Background(), "first")
	if !ok || reply.Content != "echo: first" || reply.Role != RoleAssistant {
		t.Fatalf("Send = %+v, %v", reply, ok)
	}
	if len(gotHistory) != 0 {
		t.Errorf("first send should carry empty history, got %v", gotHistory)
	}

	s.Send(context.Background(), "second")
	if len(gotHistory) != 2 {
		t.Errorf("second send should carry prior two messages, got %v", gotHistory)
	}
	if h := s.History(); len(h) != 4 || h[2].Content != "second" {
		t.Errorf("History = %+v", h)
	}
	if s.Loading() {
		t.Error("loading flag left set")
	}
}

func TestSessionIgnoresBlankInput(t *testing.T) {
	called := false
	s := NewSession(SubmitterFunc(func(context.Context, string, []Message) (*Response, error) {
		called = true
		return &Response{}, nil
	}))
	if _, ok := s.Send(context.Background(), "   "); ok {
		t.Error("blank input should be ignored")
	}
	if called || len(s.History()) != 0 {
		t.Error("blank input must not reach the submitter or history")
	}
}

func TestSessionFailureClearsLoading(t *testing.T) {
	s := NewSession(SubmitterFunc(func(context.Context, string, []Message) (*Response, error) {
		return nil, &RemoteError{Status: 500, Detail: "ollama is down"}
	}))

	reply, ok := s.Send(context.Background(), "loan help")
	if !ok {
		t.Fatal("send should run")
	}
	if reply.Content != "⚠️ Error: ollama is down" {
		t.Errorf("reply = %q", reply.Content)
	}
	if s.Loading() {
		t.Error("loading flag must be cleared after a failure")
	}

	// The view stays usable afterwards.
	if _, ok := s.Send(context.Background(), "again"); !ok {
		t.Error("session should accept new messages after a failure")
	}
}

func TestSessionPanicClearsLoading(t *testing.T) {
	s := NewSession(SubmitterFunc(func(context.Context, string, []Message) (*Response, error) {
		panic("boom")
	}))
	reply, _ := s.Send(context.Background(), "tax")
	if reply.Content != "⚠️ Error: Unknown error occurred" {
		t.Errorf("reply = %q", reply.Content)
	}
	if s.Loading() {
		t.Error("loading flag must be cleared")
	}
}

func TestSessionEmptyReply(t *testing.T) {
	s := NewSession(SubmitterFunc(func(context.Context, string, []Message) (*Response, error) {
		return &Response{Response: "  "}, nil
	}))
	reply, _ := s.Send(context.Background(), "savings")
	if reply.Content != EmptyReply {
		t.Errorf("reply = %q, want apology", reply.Content)
	}
}

func TestSessionRejectsSendWhileLoading(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	s := NewSession(SubmitterFunc(func(ctx context.Context, msg string, h []Message) (*Response, error) {
		close(started)
		<-release
		return &Response{Response: "done"}, nil
	}))

	done := make(chan struct{})
	go func() {
		s.Send(context.Background(), "first")
		close(done)
	}()
	<-started

	if !s.Loading() {
		t.Error("expected loading during send")
	}
	if _, ok := s.Send(context.Background(), "second"); ok {
		t.Error("send while loading must be ignored")
	}

	close(release)
	<-done
	if len(s.History()) != 2 {
		t.Errorf("History = %+v", s.History())
	}

	s.Reset()
	if len(s.History()) != 0 {
		t.Error("Reset should clear history")
	}
}
