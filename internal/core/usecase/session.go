package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
	"github.com/kirillkom/docresult-viewer/internal/core/outcome"
	"github.com/kirillkom/docresult-viewer/internal/core/ports"
)

// Session holds the most recent outcome for one interactive user.
// It is single-owner and not safe for concurrent use.
type Session struct {
	backend   ports.ResultBackend
	inspector ports.FileInspector

	last    *outcome.Outcome
	details *domain.FileDetails
}

func NewSession(backend ports.ResultBackend, inspector ports.FileInspector) *Session {
	return &Session{
		backend:   backend,
		inspector: inspector,
	}
}

// Preflight validates a local file. Without an inspector every file passes.
func (s *Session) Preflight(filename string, fileBytes []byte) (domain.FileDetails, error) {
	if s.inspector == nil {
		return domain.FileDetails{Filename: filename, Size: int64(len(fileBytes))}, nil
	}
	details, err := s.inspector.Inspect(filename, fileBytes)
	if err != nil {
		return domain.FileDetails{}, fmt.Errorf("preflight: %w", err)
	}
	return details, nil
}

// Process uploads a file and replaces the session's last outcome, which is
// cleared first so a rejected file leaves nothing behind. The only error is a
// preflight rejection; backend failures are part of the outcome.
func (s *Session) Process(ctx context.Context, fileBytes []byte, filename string) (outcome.Outcome, error) {
	s.Clear()
	details, err := s.Preflight(filename, fileBytes)
	if err != nil {
		return outcome.Outcome{}, err
	}

	result := s.backend.Upload(ctx, fileBytes, filename)
	out := outcome.Build(result, s.backend.BaseURL())
	s.last = &out
	s.details = &details
	return out, nil
}

// Load shows a stored result; a missing one becomes a "Not found" failure.
func (s *Session) Load(ctx context.Context, fileID string) outcome.Outcome {
	out := loadOutcome(ctx, s.backend, fileID)
	s.last = &out
	s.details = nil
	return out
}

func (s *Session) Last() (outcome.Outcome, bool) {
	if s.last == nil {
		return outcome.Outcome{}, false
	}
	return *s.last, true
}

// Details returns the preflight details of the last processed file.
func (s *Session) Details() (domain.FileDetails, bool) {
	if s.details == nil {
		return domain.FileDetails{}, false
	}
	return *s.details, true
}

func (s *Session) Clear() {
	s.last = nil
	s.details = nil
}

// Recent lists files known to the backend; empty when unreachable.
func (s *Session) Recent(ctx context.Context) []domain.FileSummary {
	return s.backend.ListFiles(ctx)
}

func (s *Session) BackendHealth(ctx context.Context) domain.HealthStatus {
	return s.backend.Probe(ctx)
}

// DownloadOriginal fetches the original bytes of the last successful result.
func (s *Session) DownloadOriginal(ctx context.Context) ([]byte, string, error) {
	const op = "download original"
	if s.last == nil || !s.last.Succeeded() {
		return nil, "", domain.WrapError(domain.ErrNotFound, op, fmt.Errorf("no successful result in session"))
	}

	view := s.last.View
	content := s.backend.DownloadOriginal(ctx, view.FileID)
	if content == nil {
		return nil, "", domain.WrapError(domain.ErrNotFound, op, fmt.Errorf("original of %s is unavailable", view.FileID))
	}
	return content, view.Filename, nil
}
