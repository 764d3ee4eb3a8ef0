package repository

import (
	"context"

	"marketpulse/internal/domain/models"
)

// Metrics records pipeline observations.
type Metrics interface {
	RecordFetch(source string, seconds float64)
	RecordFetchError(source, kind string)
	RecordCacheResult(source, outcome string)
	RecordSnapshot()
	RecordQuote(label string, value float64)
}

// Publisher ships each assembled snapshot to an external bus for downstream
// consumers. Optional; a nil publisher disables it.
type Publisher interface {
	Publish(ctx context.Context, key []byte, value interface{}) error
	Close() error
}

// TaskStore is the boundary to the external task list consumed by the brief
// pack. Only open tasks are read by the pipeline.
type TaskStore interface {
	Add(ctx context.Context, title string) (models.Task, error)
	Open(ctx context.Context) ([]models.Task, error)
	MarkDone(ctx context.Context, id uint) error
}
