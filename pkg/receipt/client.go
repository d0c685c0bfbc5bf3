package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/splitledger/splitledger/internal/config"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

var ErrNoApiKey = errors.New("generative AI API key is not configured")

// Client calls the generative AI model with a prompt and optional inline
// image data, returning the model's raw text output.
type Client interface {
	GenerateFromImage(ctx context.Context, prompt string, base64Image string, mimeType string) (string, error)
	GenerateFromText(ctx context.Context, prompt string) (string, error)
}

type ClientImpl struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewClient(cfg config.Gemini) *ClientImpl {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &ClientImpl{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		apiKey:     cfg.ApiKey,
		model:      cfg.Model,
	}
}

type generatePart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *generateInline `json:"inline_data,omitempty"`
}

type generateInline struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *ClientImpl) GenerateFromImage(ctx context.Context, prompt string, base64Image string, mimeType string) (string, error) {
	return c.generate(ctx, []generatePart{
		{Text: prompt},
		{InlineData: &generateInline{MimeType: mimeType, Data: base64Image}},
	})
}

func (c *ClientImpl) GenerateFromText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, []generatePart{{Text: prompt}})
}

func (c *ClientImpl) generate(ctx context.Context, parts []generatePart) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoApiKey
	}

	body, err := json.Marshal(generateRequest{Contents: []generateContent{{Parts: parts}}})
	if err != nil {
		return "", fmt.Errorf("could not encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		log.Errorf("Failed to create request: %v", err)
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Errorf("Failed to execute request: %v", err)
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("could not read response: %w", err)
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("could not decode response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("model request failed: %s (code %d)", parsed.Error.Message, parsed.Error.Code)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model request failed with status %d", resp.StatusCode)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model returned no candidates")
	}

	var text string
	for _, part := range parsed.Candidates[0].Content.Parts {
		text += part.Text
	}
	log.Debugf("Received model response, length: %d", len(text))
	return text, nil
}
