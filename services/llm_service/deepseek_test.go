package llm_service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDeepSeekService_CallChat(t *testing.T) {
	tests := []struct {
		name          string
		statusCode    int
		responseBody  string
		expectedText  string
		expectedError bool
	}{
		{
			name:         "Successful completion",
			statusCode:   http.StatusOK,
			responseBody: `{"choices":[{"message":{"role":"assistant","content":"hello there"}}]}`,
			expectedText: "hello there",
		},
		{
			name:          "Provider error with details",
			statusCode:    http.StatusTooManyRequests,
			responseBody:  `{"error":{"message":"rate limited","type":"rate_limit_error","code":"429"}}`,
			expectedError: true,
		},
		{
			name:          "Empty choices",
			statusCode:    http.StatusOK,
			responseBody:  `{"choices":[]}`,
			expectedError: true,
		},
		{
			name:          "Malformed response body",
			statusCode:    http.StatusOK,
			responseBody:  `{not json`,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "Bearer test-key" {
					t.Errorf("missing Authorization header")
				}

				var payload struct {
					Model       string    `json:"model"`
					Messages    []Message `json:"messages"`
					Temperature float64   `json:"temperature"`
				}
				if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
					t.Fatalf("failed to decode request body: %v", err)
				}
				if payload.Model != "deepseek-chat" {
					t.Errorf("expected model deepseek-chat, got %s", payload.Model)
				}
				if payload.Temperature != 0.2 {
					t.Errorf("expected temperature 0.2, got %v", payload.Temperature)
				}

				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.responseBody))
			}))
			defer srv.Close()

			service := NewDeepSeekService(srv.URL, "test-key", "deepseek-chat", newTestLogger())

			messages := []Message{
				{Role: "system", Content: "You are a triage agent."},
				{Role: "user", Content: "Analyze this query."},
			}
			text, err := service.CallChat(context.Background(), messages, 0.2)

			if tt.expectedError {
				if err == nil {
					t.Fatalf("expected an error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if text != tt.expectedText {
				t.Errorf("expected %q, got %q", tt.expectedText, text)
			}
		})
	}
}

func TestDeepSeekService_CallChat_ProviderErrorDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key","type":"authentication_error"}}`))
	}))
	defer srv.Close()

	service := NewDeepSeekService(srv.URL, "bad-key", "deepseek-chat", newTestLogger())
	_, err := service.CallChat(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0.2)
	if err == nil {
		t.Fatal("expected an error")
	}

	var httpErr *ProviderHTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected ProviderHTTPError, got %T", err)
	}
	if httpErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", httpErr.StatusCode)
	}
	if httpErr.Message != "invalid api key" {
		t.Errorf("expected provider message to be extracted, got %q", httpErr.Message)
	}
}

func TestDeepSeekService_CallChat_MissingAPIKey(t *testing.T) {
	service := NewDeepSeekService("http://localhost:0", "", "deepseek-chat", newTestLogger())
	_, err := service.CallChat(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0.2)
	if err == nil {
		t.Fatal("expected an error when the API key is not configured")
	}
}
