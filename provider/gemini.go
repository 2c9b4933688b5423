package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aman1195/risk-scan-pro/config"
)

const defaultGeminiURL = "https://generativelanguage.googleapis.com"

// maxGeminiResponseBytes caps how much of a response body is read
const maxGeminiResponseBytes = 4 << 20

type Gemini struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

// GeminiRequest is the generateContent request body
type GeminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

// GeminiResponse is the generateContent response body, including the
// error envelope returned with non-2xx statuses
type GeminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

func NewGemini(cfg config.BackendConfig) *Gemini {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiURL
	}
	return &Gemini{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       cfg.Model,
		temperature: 0.2,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (g *Gemini) Name() string {
	return GeminiName
}

// Complete calls models/{model}:generateContent and joins the text parts
// of the first candidate
func (g *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	model := g.model
	if req.Model != "" {
		model = req.Model
	}

	var body GeminiRequest
	body.Contents = []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	body.GenerationConfig.Temperature = g.temperature

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, url.PathEscape(model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxGeminiResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: gemini: failed to read response: %v", ErrUpstream, err)
	}

	var result GeminiResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		if resp.StatusCode/100 != 2 {
			return "", fmt.Errorf("%w: gemini: status %d", ErrUpstream, resp.StatusCode)
		}
		return "", fmt.Errorf("%w: gemini: failed to parse response: %v", ErrMalformedCompletion, err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("%w: gemini API error: %s", ErrUpstream, result.Error.Message)
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("%w: gemini: status %d", ErrUpstream, resp.StatusCode)
	}

	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("%w (gemini)", ErrEmptyCompletion)
	}
	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("%w (gemini)", ErrEmptyCompletion)
	}
	return sb.String(), nil
}
