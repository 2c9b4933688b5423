package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aman1195/risk-scan-pro/config"
)

func TestNewGemini(t *testing.T) {
	g := NewGemini(config.BackendConfig{APIKey: "k", Model: "gemini-1.5-pro", Timeout: time.Second})
	if g.baseURL != defaultGeminiURL {
		t.Errorf("Expected default base URL, got %s", g.baseURL)
	}
	if g.httpClient == nil {
		t.Error("Expected httpClient to be set")
	}
}

func TestGeminiComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-1.5-pro:generateContent" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Error("Expected API key header")
		}

		var req GeminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
			return
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "Draft an NDA" {
			t.Errorf("Unexpected contents: %+v", req.Contents)
		}
		if req.SystemInstruction == nil || req.SystemInstruction.Parts[0].Text != "be formal" {
			t.Error("Expected system instruction")
		}
		if req.GenerationConfig.Temperature != 0.2 {
			t.Errorf("Expected temperature 0.2, got %v", req.GenerationConfig.Temperature)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"<h1>NDA</h1>"},{"text":"<p>1.</p>"}]}}]}`))
	}))
	defer server.Close()

	g := NewGemini(config.BackendConfig{APIKey: "test-key", BaseURL: server.URL, Model: "gemini-1.5-pro", Timeout: 5 * time.Second})
	out, err := g.Complete(context.Background(), Request{System: "be formal", Prompt: "Draft an NDA"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out != "<h1>NDA</h1><p>1.</p>" {
		t.Errorf("Unexpected content %q", out)
	}
}

func TestGeminiCompleteErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantMalformed bool
	}{
		{"api error envelope", http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`, false},
		{"non-json 502", http.StatusBadGateway, `bad gateway`, false},
		{"non-json 200", http.StatusOK, `<html>maintenance</html>`, true},
		{"truncated json 200", http.StatusOK, `{"candidates":[{"content":`, true},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, true},
		{"blank text", http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			g := NewGemini(config.BackendConfig{APIKey: "k", BaseURL: server.URL, Model: "m", Timeout: 5 * time.Second})
			_, err := g.Complete(context.Background(), Request{Prompt: "x"})
			if !errors.Is(err, ErrUpstream) {
				t.Fatalf("Expected ErrUpstream, got %v", err)
			}
			if errors.Is(err, ErrMalformedCompletion) != tt.wantMalformed {
				t.Errorf("ErrMalformedCompletion = %v, expected %v (%v)", !tt.wantMalformed, tt.wantMalformed, err)
			}
		})
	}
}

func TestGeminiResponseSizeLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"`))
		w.Write(bytes.Repeat([]byte("a"), maxGeminiResponseBytes))
		w.Write([]byte(`"}]}}]}`))
	}))
	defer server.Close()

	g := NewGemini(config.BackendConfig{APIKey: "k", BaseURL: server.URL, Model: "m", Timeout: 5 * time.Second})
	_, err := g.Complete(context.Background(), Request{Prompt: "x"})
	if !errors.Is(err, ErrMalformedCompletion) {
		t.Errorf("Expected oversized body to be cut off as malformed, got %v", err)
	}
}

func TestGeminiCompleteTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	g := NewGemini(config.BackendConfig{APIKey: "k", BaseURL: url, Model: "m", Timeout: time.Second})
	_, err := g.Complete(context.Background(), Request{Prompt: "x"})
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("Expected ErrUpstream, got %v", err)
	}
}
