package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func TestParseSubtasks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "plain json array",
			text: `["Draft agenda", "Book venue", "Send invites"]`,
			want: []string{"Draft agenda", "Book venue", "Send invites"},
		},
		{
			name: "fenced json array",
			text: "```json\n[\"Draft agenda\", \"Book venue\"]\n```",
			want: []string{"Draft agenda", "Book venue"},
		},
		{
			name: "array embedded in prose",
			text: `Here are the subtasks: ["One", "Two", "Three"] hope that helps`,
			want: []string{"One", "Two", "Three"},
		},
		{
			name: "bullet list fallback",
			text: "- Draft agenda\n* Book venue\n• Send invites",
			want: []string{"Draft agenda", "Book venue", "Send invites"},
		},
		{
			name: "numbered list fallback",
			text: "1. Draft agenda\n2. Book venue\n\n3. Send invites",
			want: []string{"Draft agenda", "Book venue", "Send invites"},
		},
		{
			name: "fallback capped at five",
			text: "1. a\n2. b\n3. c\n4. d\n5. e\n6. f",
			want: []string{"a", "b", "c", "d", "e"},
		},
		{
			name: "long lines dropped",
			text: fmt.Sprintf("- keep\n- %s", strings.Repeat("x", 250)),
			want: []string{"keep"},
		},
		{
			name: "json entries over limit dropped",
			text: fmt.Sprintf(`["keep", "%s"]`, strings.Repeat("x", 250)),
			want: []string{"keep"},
		},
		{
			name: "empty output",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSubtasks(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d subtasks %v, want %d %v", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("subtask %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func newTestBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "test-cb",
		Timeout: time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
	})
}

func newTestAIService(upstream *httptest.Server) *AIService {
	s := NewAIService("test-key", "gemini-2.5-flash", upstream.Client(), newTestBreaker())
	s.BaseURL = upstream.URL
	return s
}

func geminiReply(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text)
}

func TestBreakdownTaskSuccess(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if !strings.Contains(r.URL.Path, "gemini-2.5-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		fmt.Fprint(w, geminiReply(`["Define scope", "Set timeline", "Assign owners", "Review plan"]`))
	}))
	defer upstream.Close()

	subtasks, err := newTestAIService(upstream).BreakdownTask(context.Background(), "Plan launch", "")
	if err != nil {
		t.Fatalf("BreakdownTask() error = %v", err)
	}
	if len(subtasks) < 3 || len(subtasks) > 5 {
		t.Fatalf("got %d subtasks, want 3-5", len(subtasks))
	}
	for _, s := range subtasks {
		if s == "" || len(s) >= 200 {
			t.Errorf("subtask %q violates length bounds", s)
		}
	}
}

func TestBreakdownTaskFallbackParsing(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, geminiReply("1. Define scope\n2. Set timeline\n3. Assign owners"))
	}))
	defer upstream.Close()

	subtasks, err := newTestAIService(upstream).BreakdownTask(context.Background(), "Plan launch", "big launch")
	if err != nil {
		t.Fatalf("BreakdownTask() error = %v", err)
	}
	if len(subtasks) != 3 {
		t.Fatalf("got %v, want 3 subtasks", subtasks)
	}
	if subtasks[0] != "Define scope" {
		t.Errorf("first subtask = %q, want %q", subtasks[0], "Define scope")
	}
}

func TestBreakdownTaskMissingTitle(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should not be called without a title")
	}))
	defer upstream.Close()

	_, err := newTestAIService(upstream).BreakdownTask(context.Background(), "", "desc")
	if err == nil {
		t.Fatal("expected validation error for missing title")
	}
}

func TestBreakdownTaskUpstreamSuggestions(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		wantSuggestion string
	}{
		{"model not found", http.StatusNotFound, "model was not found"},
		{"bad api key", http.StatusUnauthorized, "GEMINI_API_KEY"},
		{"restricted key", http.StatusForbidden, "GEMINI_API_KEY"},
		{"server error", http.StatusInternalServerError, "check your connection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream failure", tt.status)
			}))
			defer upstream.Close()

			_, err := newTestAIService(upstream).BreakdownTask(context.Background(), "Plan launch", "")
			var upstreamErr *UpstreamError
			if !errors.As(err, &upstreamErr) {
				t.Fatalf("error = %v, want *UpstreamError", err)
			}
			if !strings.Contains(upstreamErr.Suggestion, tt.wantSuggestion) {
				t.Errorf("suggestion %q does not mention %q", upstreamErr.Suggestion, tt.wantSuggestion)
			}
		})
	}
}

func TestBreakdownTaskBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	service := newTestAIService(upstream)
	for i := 0; i < 10; i++ {
		if _, err := service.BreakdownTask(context.Background(), "Plan launch", ""); err == nil {
			t.Fatal("expected failure")
		}
	}
	if calls >= 10 {
		t.Errorf("breaker never opened: upstream called %d times", calls)
	}
}
