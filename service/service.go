package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"alt-text-pipeline/config"
	"alt-text-pipeline/database"
	"alt-text-pipeline/llm"
	"alt-text-pipeline/metrics"
	"alt-text-pipeline/models"
	"alt-text-pipeline/ollama"
	"alt-text-pipeline/openai"
	"alt-text-pipeline/rabbitmq"
	"alt-text-pipeline/stubllm"
	"alt-text-pipeline/thumbnail"

	"github.com/apex/log"
)

// ErrInvalidRequest marks a batch that was rejected before any item was
// touched (missing model identifier or empty item list).
var ErrInvalidRequest = errors.New("invalid request")

// Service runs the per-batch processing pipeline
type Service struct {
	config    *config.Config
	db        *database.Database
	llmClient llm.Client
	deriver   *thumbnail.Deriver
	publisher *rabbitmq.Publisher
}

// NewService creates a new batch processing service with the configured
// provider, resizer backend and optional RabbitMQ publisher.
func NewService(cfg *config.Config, db *database.Database) *Service {
	var client llm.Client
	switch cfg.LLMProvider {
	case "openai":
		client = openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.AltTextPrompt, cfg.RequestTimeout)
	case "stub":
		client = stubllm.NewClient()
	default:
		client = ollama.NewClient(cfg.OllamaURL, cfg.AltTextPrompt, cfg.RequestTimeout)
	}
	log.Infof("Generator provider=%s", client.SourceName())

	deriver := thumbnail.NewDeriver(thumbnail.NewResizer(cfg.ResizerBackend), cfg.ThumbnailMaxSize, cfg.ThumbnailQuality)

	// The publisher is optional; processing works without it.
	var publisher *rabbitmq.Publisher
	if cfg.AMQPURL != "" {
		var err error
		publisher, err = rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPResultRoutingKey)
		if err != nil {
			log.WithError(err).Error("Failed to initialize RabbitMQ publisher, continuing without it")
			publisher = nil
		}
	}

	return New(cfg, db, client, deriver, publisher)
}

// New wires a Service from explicit collaborators. Tests use it to
// substitute doubles for the provider and resizer.
func New(cfg *config.Config, db *database.Database, client llm.Client, deriver *thumbnail.Deriver, publisher *rabbitmq.Publisher) *Service {
	return &Service{
		config:    cfg,
		db:        db,
		llmClient: client,
		deriver:   deriver,
		publisher: publisher,
	}
}

// Start prepares the result store
func (s *Service) Start() error {
	return s.db.CreateAltTextsTable()
}

// Stop releases the service's messaging resources
func (s *Service) Stop() {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			log.WithError(err).Error("Failed to close RabbitMQ publisher")
		}
	}
}

// ListModels proxies the provider's model listing
func (s *Service) ListModels() ([]string, error) {
	return s.llmClient.ListModels()
}

// ProcessBatch processes the items of one batch sequentially, in
// submission order. Each item is independent: a generation failure drops
// that item only and the batch continues. Non-image items are skipped
// silently. Returns ErrInvalidRequest before touching any item when the
// model is missing or the batch is empty; returns a store error when the
// store becomes unusable mid-batch, together with the outcome so far.
func (s *Service) ProcessBatch(items []models.Item, model string) (*models.BatchOutcome, error) {
	if model == "" {
		return nil, fmt.Errorf("%w: model is required", ErrInvalidRequest)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no images provided", ErrInvalidRequest)
	}

	outcome := &models.BatchOutcome{}

	for _, item := range items {
		if !strings.HasPrefix(item.ContentType, "image/") {
			log.Infof("Skipping non-image file %q (%s)", item.Filename, item.ContentType)
			metrics.ItemsTotal.WithLabelValues("skipped").Inc()
			continue
		}
		outcome.Attempted++

		log.Infof("Processing %q (%.1f KB)", item.Filename, float64(len(item.Data))/1024)
		thumb := s.deriver.Derive(item.Data, item.Filename)

		start := time.Now()
		altText, err := s.llmClient.GenerateAltText(item.Data, model)
		metrics.GenerationDurationSeconds.WithLabelValues(s.llmClient.SourceName()).Observe(time.Since(start).Seconds())
		if err != nil {
			// One attempt per item; the batch continues.
			log.WithError(err).Errorf("Description generation failed for %q, dropping item", item.Filename)
			metrics.ItemsTotal.WithLabelValues("generation_failed").Inc()
			continue
		}

		result, err := s.db.InsertResult(thumb, item.Filename, altText, model)
		if err != nil {
			log.WithError(err).Errorf("Failed to persist result for %q", item.Filename)
			metrics.ItemsTotal.WithLabelValues("store_failed").Inc()
			if database.IsUnavailable(err) {
				// Further inserts would repeat the same failure.
				metrics.BatchesTotal.WithLabelValues("aborted").Inc()
				return outcome, fmt.Errorf("store unavailable after %d succeeded items: %w", outcome.Succeeded, err)
			}
			continue
		}

		log.Infof("Saved alt text for %q, id=%d, chars=%d", item.Filename, result.ID, result.CharCount)
		metrics.ItemsTotal.WithLabelValues("succeeded").Inc()
		outcome.Succeeded++
		outcome.Results = append(outcome.Results, *result)

		s.publishResult(result)
	}

	if outcome.Succeeded == outcome.Attempted {
		metrics.BatchesTotal.WithLabelValues("ok").Inc()
	} else {
		metrics.BatchesTotal.WithLabelValues("partial").Inc()
	}

	return outcome, nil
}

// publishResult emits the persisted result to RabbitMQ, thumbnail
// excluded. Failures are logged and never affect the batch outcome.
func (s *Service) publishResult(result *models.Result) {
	if s.publisher == nil {
		return
	}

	event := models.ResultEvent{
		ID:        result.ID,
		Filename:  result.Filename,
		AltText:   result.AltText,
		CharCount: result.CharCount,
		Model:     result.Model,
		CreatedAt: result.CreatedAt,
	}

	if err := s.publisher.Publish(event); err != nil {
		log.WithError(err).Errorf("Failed to publish result %d", result.ID)
	} else {
		log.Debugf("Published result %d", result.ID)
	}
}
