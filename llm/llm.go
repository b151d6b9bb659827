package llm

import "errors"

// ErrUpstream marks failures of the external inference endpoint, either
// unreachable or answering with a non-success status. Callers make one
// attempt per image; there is no automatic retry.
var ErrUpstream = errors.New("upstream inference error")

// Client abstracts a multimodal inference provider used to describe images.
// Implementations must be concurrency-safe if used across goroutines.
type Client interface {
	// GenerateAltText takes raw image bytes and a model identifier and
	// returns a normalized description of at most 125 characters.
	GenerateAltText(imageData []byte, model string) (string, error)
	// ListModels returns the identifiers of the models the provider
	// currently serves.
	ListModels() ([]string, error)
	// SourceName returns a short provider label for logs (e.g. "Ollama").
	SourceName() string
}
