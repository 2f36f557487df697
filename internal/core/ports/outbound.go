package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
)

// ResultBackend is the transport to the document processing backend.
// Implementations never return errors: failures become data.
type ResultBackend interface {
	Upload(ctx context.Context, fileBytes []byte, filename string) domain.UploadResult
	FetchResult(ctx context.Context, fileID string) *domain.ProcessedDocument
	DownloadOriginal(ctx context.Context, fileID string) []byte
	ListFiles(ctx context.Context) []domain.FileSummary
	Probe(ctx context.Context) domain.HealthStatus
	BaseURL() string
}

// TransportObserver receives one observation per backend call.
type TransportObserver interface {
	ObserveBackendCall(operation, outcome string, duration time.Duration)
}

// ObjectStorage stores downloaded originals and exported tables.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// FileInspector validates a local file before upload.
type FileInspector interface {
	Inspect(filename string, data []byte) (domain.FileDetails, error)
}

// EventPublisher announces classified results.
type EventPublisher interface {
	PublishResultClassified(ctx context.Context, event domain.ResultClassifiedEvent) error
}

// UploadAnnouncer hands still-pending uploads to the watcher worker.
type UploadAnnouncer interface {
	PublishFileUploaded(ctx context.Context, fileID string) error
}
