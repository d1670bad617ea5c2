package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/user/linkcleaner-service/internal/repository"
	"golang.org/x/time/rate"
)

// Default configuration values.
const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-3-5-haiku-20241022"
	defaultMaxTokens = 1024
	defaultTimeout   = 60 * time.Second
)

// Rate limiter defaults: 50 requests per minute.
const (
	defaultRateLimit = 50.0 / 60.0
	defaultBurst     = 5
)

// originalLinkSchema is the literal output-schema description handed to the
// model. The boundary is untyped by nature; the parsed result is validated
// against originalLinkResult before it leaves this package.
const originalLinkSchema = `{"original_link": "string — the clean destination URL, stripped of all tracking parameters (utm_*, fbclid, gclid, etc.) and redirect wrappers. Return only the final destination URL."}`

// originalLinkResult is the typed shape the schema above describes.
type originalLinkResult struct {
	OriginalLink string `json:"original_link"`
}

// Config configures the LLM extractor.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Extractor implements repository.LinkExtractor using Anthropic's messages
// API. A single attempt is made per call; the caller owns any retry policy.
type Extractor struct {
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewExtractor creates a new LLM-backed link extractor.
func NewExtractor(cfg Config) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Extractor{
		model:   model,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
	}, nil
}

// anthropicRequest represents the request format for the messages API.
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse represents the response from the messages API.
type anthropicResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
}

// anthropicError represents an error response from the messages API.
type anthropicError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ExtractOriginalLink recovers the clean destination URL from a wrapped or
// tracking-laden input URL. An empty result means the model produced nothing
// usable; the fallback policy belongs to the caller.
func (e *Extractor) ExtractOriginalLink(ctx context.Context, rawURL string) (string, error) {
	raw, err := e.completeJSON(ctx, rawURL, originalLinkSchema)
	if err != nil {
		return "", err
	}

	var result originalLinkResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", &repository.ExtractionError{
			Message: fmt.Sprintf("extraction output did not match expected shape: %v", err),
		}
	}
	return result.OriginalLink, nil
}

// completeJSON sends rawText to the model with a literal schema description
// and returns the raw JSON object from the response, with any markdown fences
// stripped. The typed callers validate the shape.
func (e *Extractor) completeJSON(ctx context.Context, rawText, outputSchema string) ([]byte, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, &repository.ExtractionError{Message: fmt.Sprintf("rate limiter error: %v", err)}
	}

	system := "You extract data from the user's input.\n\n" +
		"Respond ONLY with a JSON object matching this shape, no additional text:\n" + outputSchema

	req := anthropicRequest{
		Model:       e.model,
		MaxTokens:   defaultMaxTokens,
		Temperature: 0.3, // Low temperature for consistent extraction
		System:      system,
		Messages: []anthropicMessage{
			{Role: "user", Content: rawText},
		},
	}

	text, err := e.doRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	return []byte(stripFences(text)), nil
}

// doRequest performs the single HTTP round-trip to the messages API.
func (e *Extractor) doRequest(ctx context.Context, req anthropicRequest) (string, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", &repository.ExtractionError{Message: fmt.Sprintf("failed to marshal request: %v", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &repository.ExtractionError{Message: fmt.Sprintf("failed to create request: %v", err)}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", e.apiKey)
	httpReq.Header.Set("Anthropic-Version", "2023-06-01")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return "", &repository.ExtractionError{Message: fmt.Sprintf("API request failed: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &repository.ExtractionError{Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		var errResp anthropicError
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return "", &repository.ExtractionError{Message: fmt.Sprintf("API error (%d): %s", resp.StatusCode, errResp.Error.Message)}
		}
		return "", &repository.ExtractionError{Message: fmt.Sprintf("API error (%d): %s", resp.StatusCode, string(body))}
	}

	var claudeResp anthropicResponse
	if err := json.Unmarshal(body, &claudeResp); err != nil {
		return "", &repository.ExtractionError{Message: fmt.Sprintf("failed to parse response: %v", err)}
	}

	if len(claudeResp.Content) == 0 {
		return "", &repository.ExtractionError{Message: "empty response from API"}
	}
	return claudeResp.Content[0].Text, nil
}

// stripFences removes markdown code fences some models wrap JSON output in.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

var _ repository.LinkExtractor = (*Extractor)(nil)
