// Package queue dispatches ingestion work to the worker process. The API
// returns as soon as the task is enqueued; the pipeline runs to completion
// server-side regardless of what the caller does afterwards.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/cognitext/cognitext/internal/config"
	"github.com/cognitext/cognitext/internal/ingest"
)

const TypeDocumentIngest = "document:ingest"

type Client struct {
	client *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueDocumentIngest schedules the pipeline for one upload-completion
// event. Retries re-deliver the event; deduplication inside the orchestrator
// makes redelivery harmless.
func (c *Client) EnqueueDocumentIngest(ev ingest.UploadEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal upload event: %w", err)
	}
	task := asynq.NewTask(TypeDocumentIngest, data)
	if _, err := c.client.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(10*time.Minute)); err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeDocumentIngest, err)
	}
	return nil
}
