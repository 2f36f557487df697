package usecase

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
	"github.com/kirillkom/docresult-viewer/internal/core/normalizer"
	"github.com/kirillkom/docresult-viewer/internal/core/outcome"
	"github.com/kirillkom/docresult-viewer/internal/core/ports"
)

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(raw) {
	case ExportCSV, ExportXLSX:
		return ExportFormat(raw), nil
	default:
		return "", domain.WrapError(domain.ErrInvalidInput, "parse export format", fmt.Errorf("unknown format %q (want csv or xlsx)", raw))
	}
}

// Exporter writes tables and originals of stored results to object storage.
type Exporter struct {
	backend ports.ResultBackend
	storage ports.ObjectStorage
}

func NewExporter(backend ports.ResultBackend, storage ports.ObjectStorage) *Exporter {
	return &Exporter{backend: backend, storage: storage}
}

type ExportReport struct {
	FileID  string   `json:"fileId"`
	Paths   []string `json:"paths"`
	Skipped []string `json:"skipped,omitempty"`
}

// ExportTables saves every well-formed table; malformed ones are skipped.
func (e *Exporter) ExportTables(ctx context.Context, fileID string, format ExportFormat) (ExportReport, error) {
	const op = "export tables"

	out, err := e.successfulOutcome(ctx, fileID, op)
	if err != nil {
		return ExportReport{}, err
	}

	report := ExportReport{FileID: fileID, Paths: []string{}}
	used := make(map[string]bool, len(out.View.Tables))
	for _, table := range out.View.Tables {
		if table.Malformed {
			report.Skipped = append(report.Skipped, table.Name)
			continue
		}
		content, name, err := encodeTable(table, format)
		if err != nil {
			return report, fmt.Errorf("%s: %w", op, err)
		}
		name = uniqueTableFileName(sanitizeFilename(name), table.Index, used)
		savedPath, err := e.storage.Save(ctx, path.Join(sanitizeFilename(fileID), name), bytes.NewReader(content))
		if err != nil {
			return report, fmt.Errorf("%s: save %s: %w", op, name, err)
		}
		report.Paths = append(report.Paths, savedPath)
	}
	if len(report.Paths) == 0 {
		return report, domain.WrapError(domain.ErrNotFound, op, fmt.Errorf("%s has no exportable tables", fileID))
	}
	return report, nil
}

// ExportOriginal saves the original upload next to its tables.
func (e *Exporter) ExportOriginal(ctx context.Context, fileID string) (string, error) {
	const op = "export original"

	out, err := e.successfulOutcome(ctx, fileID, op)
	if err != nil {
		return "", err
	}
	content := e.backend.DownloadOriginal(ctx, fileID)
	if content == nil {
		return "", domain.WrapError(domain.ErrNotFound, op, fmt.Errorf("original of %s is unavailable", fileID))
	}
	savedPath, err := e.storage.Save(ctx, path.Join(sanitizeFilename(fileID), sanitizeFilename(out.View.Filename)), bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return savedPath, nil
}

func (e *Exporter) successfulOutcome(ctx context.Context, fileID, op string) (outcome.Outcome, error) {
	out := loadOutcome(ctx, e.backend, fileID)
	if isNotFound(out) {
		return out, domain.WrapError(domain.ErrNotFound, op, fmt.Errorf("result %q not found", fileID))
	}
	if !out.Succeeded() {
		return out, domain.WrapError(domain.ErrInvalidInput, op, fmt.Errorf("result %q is %s", fileID, out.Classification.Label()))
	}
	return out, nil
}

func encodeTable(table normalizer.TableView, format ExportFormat) ([]byte, string, error) {
	switch format {
	case ExportXLSX:
		content, err := normalizer.TableXLSX(table)
		return content, table.XLSXFileName(), err
	default:
		content, err := normalizer.TableCSV(table)
		return content, table.CSVFileName(), err
	}
}

// uniqueTableFileName suffixes the table position when two tables share a
// name, so neither export overwrites the other.
func uniqueTableFileName(name string, index int, used map[string]bool) string {
	candidate := name
	if used[candidate] {
		ext := path.Ext(name)
		base := strings.TrimSuffix(name, ext)
		candidate = fmt.Sprintf("%s_%d%s", base, index+1, ext)
		for n := 2; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s_%d_%d%s", base, index+1, n, ext)
		}
	}
	used[candidate] = true
	return candidate
}
