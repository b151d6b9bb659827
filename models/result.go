package models

import (
	"time"
)

// Result is one durably stored outcome of successfully processing an image.
// Rows are immutable once created; the only destructor is a bulk delete.
type Result struct {
	ID        int64     `json:"id"`
	Thumbnail []byte    `json:"thumbnail,omitempty"`
	Filename  string    `json:"filename"`
	AltText   string    `json:"alt_text"`
	CharCount int       `json:"char_count"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

// Item is one (image bytes, filename) pair within a batch submission.
type Item struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// BatchOutcome aggregates one batch run. Items skipped for not being
// images appear in neither Attempted nor Succeeded.
type BatchOutcome struct {
	Attempted int      `json:"attempted"`
	Succeeded int      `json:"succeeded"`
	Results   []Result `json:"results,omitempty"`
}

// ResultEvent is the message published to RabbitMQ after a result is
// persisted. The thumbnail payload is deliberately left out.
type ResultEvent struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	AltText   string    `json:"alt_text"`
	CharCount int       `json:"char_count"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}
