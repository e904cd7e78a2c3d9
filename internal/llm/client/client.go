package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"meallens/internal/apperrors"
	"meallens/internal/models"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 30 * time.Second

	apiKeyPrefix = "sk-"
	maxTokens    = 500
)

// analysisPrompt is the fixed instruction sent with every photo.
const analysisPrompt = `Analyze this food photo. Return a JSON object with an 'items' array. Each item should have: 'name' (string, food name), 'grams' (number, estimated portion in grams), 'calories' (number, estimated calories), 'confidence' (string: 'high', 'medium', or 'low'). Return up to 10 food items. If no food is detected, return an empty array. Example: {"items": [{"name": "White Rice", "grams": 180, "calories": 230, "confidence": "high"}]}`

// Config holds vision client configuration. Zero values get defaults.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// VisionClient calls a vision-capable chat-completions endpoint and turns the
// reply into validated, normalized food items.
type VisionClient struct {
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

func New(cfg Config) *VisionClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	return &VisionClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		httpClient: cfg.HTTPClient,
	}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze sends the base64 image with the fixed instruction and returns the
// recognized food items (no meal assigned yet). The request races against the
// configured timeout; a late response is discarded. Every failure surfaces as
// a taxonomy error, never a raw provider error.
func (c *VisionClient) Analyze(ctx context.Context, encodedImage, apiKey string) ([]models.FoodItem, error) {
	if apiKey == "" {
		return nil, apperrors.NewInvalidAPIKey("API key is required, configure it in settings")
	}
	if !strings.HasPrefix(apiKey, apiKeyPrefix) {
		return nil, apperrors.NewInvalidAPIKey(`invalid API key format, key must start with "sk-"`)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: analysisPrompt},
					{Type: "image_url", ImageURL: &imageURL{
						URL: "data:image/jpeg;base64," + encodedImage,
					}},
				},
			},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
		MaxTokens:      maxTokens,
	})
	if err != nil {
		return nil, apperrors.NewUnknown(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewUnknown(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, MapProviderStatus(resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, apperrors.NewMalformedResponse(err.Error())
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, apperrors.NewMalformedResponse("empty response from AI")
	}

	return ParseItems(parsed.Choices[0].Message.Content)
}

// transportError classifies a failed round trip: a fired deadline means the
// 30s race was lost, anything else is a network failure.
func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeout()
	}
	return apperrors.NewNetwork(err)
}

// MapProviderStatus maps a provider HTTP status to the stable error taxonomy.
// Defined once so the mapping is testable independently of the network layer.
func MapProviderStatus(status int, message string) error {
	switch {
	case status == http.StatusUnauthorized:
		return apperrors.NewInvalidAPIKey("")
	case status == http.StatusTooManyRequests:
		return apperrors.NewRateLimited()
	case status >= 500:
		return apperrors.NewServiceUnavailable()
	default:
		return apperrors.NewUnknown(fmt.Errorf("provider returned status %d: %s", status, message))
	}
}
