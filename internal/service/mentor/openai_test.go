package mentor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/tawfi332/Fsociety-T/backend/internal/model/chat"
	"github.com/tawfi332/Fsociety-T/backend/internal/model/topic"
)

type capturedRequest struct {
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content any    `json:"content"`
	} `json:"messages"`
}

func completionBody(content string) string {
	encoded, _ := json.Marshal(content)
	return `{"id":"chatcmpl-1","object":"chat.completion","created":1700000000,"model":"gpt-4o-mini",` +
		`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":` + string(encoded) + `}}],` +
		`"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`
}

func newOpenAITestServer(t *testing.T, status int, body string, captured *capturedRequest, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if captured != nil {
			_ = json.NewDecoder(r.Body).Decode(captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIClientRequestTurn(t *testing.T) {
	var captured capturedRequest
	var hits atomic.Int32
	srv := newOpenAITestServer(t, http.StatusOK, completionBody(`{"mentorResponse":"Good attempt.","corrections":[],"overallFeedback":"Clear."}`), &captured, &hits)

	client, err := NewOpenAIClient("sk-test", "gpt-4o-mini", topic.Topic{Name: "Business"}, WithBaseURL(srv.URL+"/v1/"), WithTemperature(0.3))
	if err != nil {
		t.Fatalf("NewOpenAIClient err: %v", err)
	}

	reply, err := client.RequestTurn(context.Background(), "I has a apple", sampleHistory())
	if err != nil {
		t.Fatalf("RequestTurn err: %v", err)
	}
	if reply.MentorResponse != "Good attempt." || reply.OverallFeedback != "Clear." {
		t.Fatalf("unexpected reply %+v", reply)
	}

	if captured.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model %q", captured.Model)
	}
	if captured.Temperature == nil || *captured.Temperature != 0.3 {
		t.Fatalf("unexpected temperature %v", captured.Temperature)
	}
	roles := make([]string, 0, len(captured.Messages))
	for _, m := range captured.Messages {
		roles = append(roles, m.Role)
	}
	want := []string{"system", "assistant", "user", "assistant", "user"}
	if strings.Join(roles, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected roles %v", roles)
	}
	if captured.Messages[4].Content != "I has a apple" {
		t.Fatalf("unexpected utterance %v", captured.Messages[4].Content)
	}
}

func TestOpenAIClientServerErrorIsUnavailableWithoutRetry(t *testing.T) {
	var hits atomic.Int32
	srv := newOpenAITestServer(t, http.StatusInternalServerError, `{"error":{"message":"boom"}}`, nil, &hits)

	client, err := NewOpenAIClient("sk-test", "gpt-4o-mini", topic.Topic{}, WithBaseURL(srv.URL+"/v1/"))
	if err != nil {
		t.Fatalf("NewOpenAIClient err: %v", err)
	}

	_, err = client.RequestTurn(context.Background(), "hello", nil)
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected exactly one request, got %d", hits.Load())
	}
}

func TestOpenAIClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	client, err := NewOpenAIClient("sk-test", "gpt-4o-mini", topic.Topic{}, WithBaseURL(baseURL+"/v1/"))
	if err != nil {
		t.Fatalf("NewOpenAIClient err: %v", err)
	}

	_, err = client.RequestTurn(context.Background(), "hello", nil)
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestOpenAIClientMalformedContent(t *testing.T) {
	var hits atomic.Int32
	srv := newOpenAITestServer(t, http.StatusOK, completionBody(`{"corrections":[]}`), nil, &hits)

	client, err := NewOpenAIClient("sk-test", "gpt-4o-mini", topic.Topic{}, WithBaseURL(srv.URL+"/v1/"))
	if err != nil {
		t.Fatalf("NewOpenAIClient err: %v", err)
	}

	_, err = client.RequestTurn(context.Background(), "hello", nil)
	if !errors.Is(err, ErrMalformedReply) {
		t.Fatalf("expected ErrMalformedReply, got %v", err)
	}
}

func TestNewOpenAIClientValidation(t *testing.T) {
	if _, err := NewOpenAIClient("", "gpt-4o-mini", topic.Topic{}); err == nil {
		t.Fatal("expected error for empty api key")
	}
	if _, err := NewOpenAIClient("sk", "", topic.Topic{}); err == nil {
		t.Fatal("expected error for empty model")
	}
}

func TestConvertEntryRoles(t *testing.T) {
	if got := convertEntry(chat.HistoryEntry{Role: chat.RoleAssistant, Content: "hi"}); got.OfAssistant == nil {
		t.Fatal("expected assistant param")
	}
	if got := convertEntry(chat.HistoryEntry{Role: chat.RoleUser, Content: "hi"}); got.OfUser == nil {
		t.Fatal("expected user param")
	}
}

func TestOpenAIClientUndecodableBodyIsMalformed(t *testing.T) {
	var hits atomic.Int32
	srv := newOpenAITestServer(t, http.StatusOK, `<html>gateway hiccup</html>`, nil, &hits)

	client, err := NewOpenAIClient("sk-test", "gpt-4o-mini", topic.Topic{}, WithBaseURL(srv.URL+"/v1/"))
	if err != nil {
		t.Fatalf("NewOpenAIClient err: %v", err)
	}

	_, err = client.RequestTurn(context.Background(), "hello", nil)
	if !errors.Is(err, ErrMalformedReply) {
		t.Fatalf("expected ErrMalformedReply, got %v", err)
	}
	if errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("decode failure must not be reported as unavailable: %v", err)
	}
}

func TestClassifyCompletionError(t *testing.T) {
	unavailableCases := []error{
		&url.Error{Op: "Post", URL: "http://x", Err: errors.New("connection refused")},
		context.DeadlineExceeded,
		fmt.Errorf("wrapped: %w", context.Canceled),
	}
	for _, err := range unavailableCases {
		if got := classifyCompletionError(err); !errors.Is(got, ErrServiceUnavailable) {
			t.Fatalf("classifyCompletionError(%v) = %v, want unavailable", err, got)
		}
	}

	if got := classifyCompletionError(errors.New("error parsing response json")); !errors.Is(got, ErrMalformedReply) {
		t.Fatalf("expected malformed, got %v", got)
	}
}
