package openaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sqlbot "github.com/kochurovskyi/sqlbot"
)

func TestProviderChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o" {
			t.Errorf("expected model gpt-4o, got %s", req.Model)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ChatResponse{
			ID: "chatcmpl-1",
			Choices: []Choice{{
				Index:   0,
				Message: &ChoiceMessage{Role: "assistant", Content: "Hello!"},
			}},
			Usage: &Usage{PromptTokens: 5, CompletionTokens: 2},
		})
	}))
	defer srv.Close()

	p := NewProvider("test-key", "gpt-4o", srv.URL)

	resp, err := p.Chat(context.Background(), sqlbot.ChatRequest{
		Messages: []sqlbot.ChatMessage{sqlbot.UserMessage("Hi")},
	})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if resp.Content != "Hello!" {
		t.Errorf("expected content 'Hello!', got %q", resp.Content)
	}
	if resp.Usage.InputTokens != 5 || resp.Usage.OutputTokens != 2 {
		t.Errorf("unexpected usage: %+v", resp.Usage)
	}
}

func TestProviderChatWithToolsSendsToolDefs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Tools) != 1 || req.Tools[0].Function.Name != "execute_sql" {
			t.Fatalf("expected 1 tool named execute_sql, got %+v", req.Tools)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ChatResponse{
			Choices: []Choice{{
				Message: &ChoiceMessage{
					ToolCalls: []ToolCallRequest{{
						ID:       "call_1",
						Function: FunctionCall{Name: "execute_sql", Arguments: `{"sql":"SELECT 1"}`},
					}},
				},
			}},
		})
	}))
	defer srv.Close()

	p := NewProvider("test-key", "gpt-4o", srv.URL)
	resp, err := p.ChatWithTools(context.Background(), sqlbot.ChatRequest{
		Messages: []sqlbot.ChatMessage{sqlbot.UserMessage("run it")},
	}, []sqlbot.ToolDefinition{{Name: "execute_sql", Description: "run SQL", Parameters: json.RawMessage(`{}`)}})
	if err != nil {
		t.Fatalf("ChatWithTools returned error: %v", err)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Name != "execute_sql" {
		t.Fatalf("expected one execute_sql tool call, got %+v", resp.ToolCalls)
	}
}

func TestProviderChatNonOKStatusReturnsErrHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limited"))
	}))
	defer srv.Close()

	p := NewProvider("test-key", "gpt-4o", srv.URL)
	_, err := p.Chat(context.Background(), sqlbot.ChatRequest{Messages: []sqlbot.ChatMessage{sqlbot.UserMessage("hi")}})
	if err == nil {
		t.Fatal("expected an error")
	}
	httpErr, ok := err.(*sqlbot.ErrHTTP)
	if !ok {
		t.Fatalf("expected *sqlbot.ErrHTTP, got %T", err)
	}
	if httpErr.Status != http.StatusTooManyRequests {
		t.Errorf("unexpected status: %d", httpErr.Status)
	}
}

func TestProviderNameDefaultsToOpenAI(t *testing.T) {
	p := NewProvider("", "gpt-4o", "http://example.invalid")
	if p.Name() != "openai" {
		t.Errorf("expected default name 'openai', got %q", p.Name())
	}
	p2 := NewProvider("", "gpt-4o", "http://example.invalid", WithName("groq"))
	if p2.Name() != "groq" {
		t.Errorf("expected name 'groq', got %q", p2.Name())
	}
}
