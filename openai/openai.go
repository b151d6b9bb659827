package openai

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"alt-text-pipeline/llm"
	"alt-text-pipeline/parser"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type ImageContent struct {
	Type     string   `json:"type"`
	ImageURL ImageURL `json:"image_url"`
}

type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content any `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client represents an OpenAI API client
type Client struct {
	apiKey   string
	model    string
	prompt   string
	endpoint string
	client   *http.Client
}

// NewClient creates a new OpenAI client
func NewClient(apiKey, model, prompt string, timeout time.Duration) *Client {
	return &Client{
		apiKey:   apiKey,
		model:    model,
		prompt:   prompt,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// SourceName identifies this provider in logs
func (c *Client) SourceName() string {
	return "ChatGPT"
}

// encodeImageToBase64 converts image bytes to a base64 data URL
func encodeImageToBase64(imageData []byte) string {
	base64Data := base64.StdEncoding.EncodeToString(imageData)
	return fmt.Sprintf("data:image/jpeg;base64,%s", base64Data)
}

// GenerateAltText describes an image using OpenAI's vision API. The model
// argument overrides the configured default when non-empty.
func (c *Client) GenerateAltText(imageData []byte, model string) (string, error) {
	if model == "" {
		model = c.model
	}

	textPrompt := TextContent{
		Type: "text",
		Text: c.prompt,
	}

	imagePrompt := ImageContent{
		Type: "image_url",
		ImageURL: ImageURL{
			URL: encodeImageToBase64(imageData),
		},
	}

	reqBody := ChatRequest{
		Model: model,
		Messages: []Message{
			{
				Role: "user",
				Content: []any{
					textPrompt,
					imagePrompt,
				},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to send request: %v", llm.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response body: %v", llm.ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: API error (status %d): %s", llm.ErrUpstream, resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %v", llm.ErrUpstream, err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", llm.ErrUpstream)
	}

	content := chatResp.Choices[0].Message.Content
	if contentStr, ok := content.(string); ok {
		return parser.NormalizeAltText(contentStr), nil
	}

	// If content is not a string, marshal it back to JSON
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("failed to marshal content: %w", err)
	}

	return parser.NormalizeAltText(string(contentJSON)), nil
}

// ListModels returns the configured vision model. OpenAI's full model
// listing is mostly non-multimodal, so the catalog is not proxied.
func (c *Client) ListModels() ([]string, error) {
	return []string{c.model}, nil
}

// Verify that Client implements llm.Client
var _ llm.Client = (*Client)(nil)
