package usecase

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
	"github.com/kirillkom/docresult-viewer/internal/core/outcome"
	"github.com/kirillkom/docresult-viewer/internal/core/ports"
)

const notFoundMessage = "Not found"

// loadOutcome fetches a stored result; a missing result becomes a backend
// error outcome so it flows through the same classification path.
func loadOutcome(ctx context.Context, backend ports.ResultBackend, fileID string) outcome.Outcome {
	result := domain.BackendError(notFoundMessage)
	if doc := backend.FetchResult(ctx, fileID); doc != nil {
		result = domain.Ok(doc)
	}
	out := outcome.Build(result, backend.BaseURL())
	if out.FileID == "" {
		out.FileID = fileID
	}
	return out
}

func isNotFound(out outcome.Outcome) bool {
	return out.Result.Error != nil && out.Result.Error.Message == notFoundMessage
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == "_" {
		return "document.bin"
	}
	return base
}
