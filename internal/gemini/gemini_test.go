// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the HTTP client for the Gemini generateContent API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newTestClient points a client at a test server with retries disabled
// delay-wise and the throttle opened up.
func newTestClient(url string) *Client {
	return NewClientWithConfig(&ClientConfig{
		BaseURL:           url,
		APIKey:            "test-key",
		Model:             "test-model",
		Timeout:           5 * time.Second,
		MaxRetries:        2,
		RetryDelay:        1 * time.Millisecond,
		RequestsPerMinute: 100000,
	})
}

func textResponse(text string) GenerateResponse {
	return GenerateResponse{
		Candidates: []Candidate{{
			Content: Content{Role: "model", Parts: []Part{{Text: text}}},
		}},
	}
}

func TestGenerateText(t *testing.T) {
	var gotPath, gotKey string
	var gotBody GenerateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(textResponse("generated section"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	text, err := client.GenerateText(context.Background(), "write about caching")
	if err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}

	if text != "generated section" {
		t.Errorf("text = %q", text)
	}
	if gotPath != "/v1beta/models/test-model:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "write about caching" {
		t.Errorf("request body = %+v", gotBody)
	}
	if gotBody.GenerationConfig != nil {
		t.Error("free-form generation should not set a response schema")
	}
}

func TestGenerateStructuredRequestsJSON(t *testing.T) {
	var gotBody GenerateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(textResponse(`[{"title":"A","description":"a"}]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	out, err := client.GenerateStructured(context.Background(), "plan it")
	if err != nil {
		t.Fatalf("GenerateStructured failed: %v", err)
	}
	if !strings.HasPrefix(out, "[") {
		t.Errorf("output = %q", out)
	}

	cfg := gotBody.GenerationConfig
	if cfg == nil || cfg.ResponseMimeType != "application/json" {
		t.Fatalf("generation config = %+v, want application/json", cfg)
	}
	if cfg.ResponseSchema == nil || cfg.ResponseSchema.Type != "ARRAY" {
		t.Errorf("schema = %+v, want array schema", cfg.ResponseSchema)
	}
	items := cfg.ResponseSchema.Items
	if items == nil || items.Properties["title"].Type != "STRING" {
		t.Errorf("item schema = %+v", items)
	}
}

func TestGenerateMissingAPIKey(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{BaseURL: "http://127.0.0.1:1"})
	_, err := client.GenerateText(context.Background(), "prompt")
	if !IsUnauthorized(err) {
		t.Errorf("error = %v, want unauthorized", err)
	}
}

func TestGenerateErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"unauthorized", http.StatusUnauthorized, IsUnauthorized},
		{"forbidden", http.StatusForbidden, IsUnauthorized},
		{"blocked style 400", http.StatusBadRequest, func(err error) bool {
			var cerr *ClientError
			return errors.As(err, &cerr) && cerr.Type == ErrTypeInvalidResponse
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error": map[string]interface{}{"code": tt.status, "message": "nope"},
				})
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).GenerateText(context.Background(), "prompt")
			if err == nil || !tt.check(err) {
				t.Errorf("error = %v", err)
			}
			if err != nil && !strings.Contains(err.Error(), "nope") {
				t.Errorf("error should carry API message: %v", err)
			}
		})
	}
}

func TestGenerateRetriesTransientErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(textResponse("eventually"))
	}))
	defer server.Close()

	text, err := newTestClient(server.URL).GenerateText(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}
	if text != "eventually" || calls != 3 {
		t.Errorf("text = %q after %d calls", text, calls)
	}
}

func TestGenerateDoesNotRetryAuthErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GenerateText(context.Background(), "prompt")
	if !IsUnauthorized(err) {
		t.Fatalf("error = %v", err)
	}
	if calls != 1 {
		t.Errorf("auth failure retried %d times", calls)
	}
}

func TestGenerateBlockedPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(GenerateResponse{
			PromptFeedback: &PromptFeedback{BlockReason: "SAFETY"},
		})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GenerateText(context.Background(), "prompt")
	if !IsBlocked(err) {
		t.Errorf("error = %v, want blocked", err)
	}
}

func TestGenerateEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(GenerateResponse{})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GenerateText(context.Background(), "prompt")
	if err == nil || !strings.Contains(err.Error(), "no candidates") {
		t.Errorf("error = %v", err)
	}
}

func TestGenerateJoinsMultipleParts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(GenerateResponse{
			Candidates: []Candidate{{
				Content: Content{Parts: []Part{{Text: "first "}, {Text: "second"}}},
			}},
		})
	}))
	defer server.Close()

	text, err := newTestClient(server.URL).GenerateText(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}
	if text != "first second" {
		t.Errorf("text = %q", text)
	}
}

func TestDefaultConfigFillIn(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{APIKey: "k"})
	cfg := client.GetConfig()
	if cfg.BaseURL == "" || cfg.Model == "" || cfg.Timeout == 0 {
		t.Errorf("defaults not filled in: %+v", cfg)
	}
	if cfg.APIKey != "k" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
}
