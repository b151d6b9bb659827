package stubllm

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"alt-text-pipeline/llm"
	"alt-text-pipeline/parser"
)

// Client is a deterministic, no-network provider stub intended for CI and
// local end-to-end tests. Output is stable per input so downstream
// normalization + DB writes exercise the full pipeline.
type Client struct{}

func NewClient() *Client { return &Client{} }

func (c *Client) SourceName() string { return "Stub" }

func (c *Client) GenerateAltText(imageData []byte, model string) (string, error) {
	sum := sha256.Sum256(imageData)
	short := hex.EncodeToString(sum[:8])
	raw := fmt.Sprintf("Stub alt text for a %d-byte image (%s).", len(imageData), short)
	return parser.NormalizeAltText(raw), nil
}

func (c *Client) ListModels() ([]string, error) {
	return []string{"stub"}, nil
}

// Verify that Client implements llm.Client
var _ llm.Client = (*Client)(nil)
