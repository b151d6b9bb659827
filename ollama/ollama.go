package ollama

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

// GenerateRequest is the body of a non-streaming generate call.
type GenerateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
	Stream bool     `json:"stream"`
}

// GenerateResponse is the subset of the generate reply we consume.
type GenerateResponse struct {
	Response string `json:"response"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Client talks to a locally running Ollama instance
type Client struct {
	baseURL string
	prompt  string
	client  *http.Client
}

// NewClient creates a new Ollama client
func NewClient(baseURL, prompt string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		prompt:  prompt,
		client:  &http.Client{Timeout: timeout},
	}
}

// SourceName identifies this provider in logs
func (c *Client) SourceName() string {
	return "Ollama"
}

// GenerateAltText sends the image with the configured instruction prompt
// to the generate endpoint and returns the normalized description. One
// attempt per call; response content is not cached.
func (c *Client) GenerateAltText(imageData []byte, model string) (string, error) {
	reqBody := GenerateRequest{
		Model:  model,
		Prompt: c.prompt,
		Images: []string{base64.StdEncoding.EncodeToString(imageData)},
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.client.Post(c.baseURL+"/api/generate", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: failed to reach %s: %v", llm.ErrUpstream, c.baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response body: %v", llm.ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: generate returned status %d: %s", llm.ErrUpstream, resp.StatusCode, string(body))
	}

	var genResp GenerateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %v", llm.ErrUpstream, err)
	}

	return parser.NormalizeAltText(genResp.Response), nil
}

// ListModels returns the model identifiers the local instance serves
func (c *Client) ListModels() ([]string, error) {
	resp, err := c.client.Get(c.baseURL + "/api/tags")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to reach %s: %v", llm.ErrUpstream, c.baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", llm.ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: tags returned status %d: %s", llm.ErrUpstream, resp.StatusCode, string(body))
	}

	var tags tagsResponse
	if err := json.Unmarshal(body, &tags); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", llm.ErrUpstream, err)
	}

	models := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		models = append(models, m.Name)
	}

	return models, nil
}

// Verify that Client implements llm.Client
var _ llm.Client = (*Client)(nil)
