package ports

import (
	"context"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
	"github.com/kirillkom/docresult-viewer/internal/core/normalizer"
	"github.com/kirillkom/docresult-viewer/internal/core/outcome"
)

// ResultViewer is the inbound contract used by the HTTP adapter.
type ResultViewer interface {
	Upload(ctx context.Context, fileBytes []byte, filename string) (outcome.Outcome, error)
	Load(ctx context.Context, fileID string) outcome.Outcome
	Original(ctx context.Context, fileID string) ([]byte, error)
	Table(ctx context.Context, fileID string, index int) (normalizer.TableView, error)
	Recent(ctx context.Context) []domain.FileSummary
	BackendHealth(ctx context.Context) domain.HealthStatus
}

// ResultWatcher is the inbound contract used by the worker.
type ResultWatcher interface {
	Watch(ctx context.Context, fileID string) (outcome.Outcome, error)
}
