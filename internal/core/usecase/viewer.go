package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
	"github.com/kirillkom/docresult-viewer/internal/core/normalizer"
	"github.com/kirillkom/docresult-viewer/internal/core/outcome"
	"github.com/kirillkom/docresult-viewer/internal/core/ports"
)

// ViewerService serves many clients and keeps no per-user state.
type ViewerService struct {
	backend   ports.ResultBackend
	inspector ports.FileInspector
	announcer ports.UploadAnnouncer
}

var _ ports.ResultViewer = (*ViewerService)(nil)

func NewViewerService(backend ports.ResultBackend, inspector ports.FileInspector, announcer ports.UploadAnnouncer) *ViewerService {
	return &ViewerService{
		backend:   backend,
		inspector: inspector,
		announcer: announcer,
	}
}

func (s *ViewerService) Upload(ctx context.Context, fileBytes []byte, filename string) (outcome.Outcome, error) {
	if s.inspector != nil {
		if _, err := s.inspector.Inspect(filename, fileBytes); err != nil {
			return outcome.Outcome{}, fmt.Errorf("preflight: %w", err)
		}
	}

	out := outcome.Build(s.backend.Upload(ctx, fileBytes, filename), s.backend.BaseURL())
	if out.Pending() && out.FileID != "" && s.announcer != nil {
		if err := s.announcer.PublishFileUploaded(ctx, out.FileID); err != nil {
			return out, fmt.Errorf("announce pending upload: %w", err)
		}
	}
	return out, nil
}

func (s *ViewerService) Load(ctx context.Context, fileID string) outcome.Outcome {
	return loadOutcome(ctx, s.backend, fileID)
}

func (s *ViewerService) Original(ctx context.Context, fileID string) ([]byte, error) {
	content := s.backend.DownloadOriginal(ctx, fileID)
	if content == nil {
		return nil, domain.WrapError(domain.ErrNotFound, "download original", fmt.Errorf("original of %q is unavailable", fileID))
	}
	return content, nil
}

// Table returns one materialized table of a successful result.
func (s *ViewerService) Table(ctx context.Context, fileID string, index int) (normalizer.TableView, error) {
	const op = "load table"

	out := loadOutcome(ctx, s.backend, fileID)
	if isNotFound(out) {
		return normalizer.TableView{}, domain.WrapError(domain.ErrNotFound, op, fmt.Errorf("result %q not found", fileID))
	}
	if !out.Succeeded() {
		return normalizer.TableView{}, domain.WrapError(domain.ErrInvalidInput, op, fmt.Errorf("result %q is %s", fileID, out.Classification.Label()))
	}
	if index < 0 || index >= len(out.View.Tables) {
		return normalizer.TableView{}, domain.WrapError(domain.ErrNotFound, op, fmt.Errorf("table %d of %q not found", index, fileID))
	}
	return out.View.Tables[index], nil
}

func (s *ViewerService) Recent(ctx context.Context) []domain.FileSummary {
	return s.backend.ListFiles(ctx)
}

func (s *ViewerService) BackendHealth(ctx context.Context) domain.HealthStatus {
	return s.backend.Probe(ctx)
}
