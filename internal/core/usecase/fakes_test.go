package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
)

type backendFake struct {
	mu sync.Mutex

	uploadResult domain.UploadResult
	uploaded     []string

	// fetches are served in order; the last one repeats.
	fetches    []*domain.ProcessedDocument
	fetchCalls int

	originals map[string][]byte
	files     []domain.FileSummary
	health    domain.HealthStatus
}

func (f *backendFake) Upload(_ context.Context, _ []byte, filename string) domain.UploadResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, filename)
	return f.uploadResult
}

func (f *backendFake) FetchResult(_ context.Context, _ string) *domain.ProcessedDocument {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if len(f.fetches) == 0 {
		return nil
	}
	idx := min(f.fetchCalls-1, len(f.fetches)-1)
	return f.fetches[idx]
}

func (f *backendFake) DownloadOriginal(_ context.Context, fileID string) []byte {
	return f.originals[fileID]
}

func (f *backendFake) ListFiles(context.Context) []domain.FileSummary {
	if f.files == nil {
		return []domain.FileSummary{}
	}
	return f.files
}

func (f *backendFake) Probe(context.Context) domain.HealthStatus {
	return f.health
}

func (f *backendFake) BaseURL() string {
	return "http://backend.test"
}

type inspectorFake struct {
	err error
}

func (f *inspectorFake) Inspect(filename string, data []byte) (domain.FileDetails, error) {
	if f.err != nil {
		return domain.FileDetails{}, f.err
	}
	return domain.FileDetails{Filename: filename, Size: int64(len(data)), MimeType: "application/pdf", Pages: 1}, nil
}

type announcerFake struct {
	fileIDs []string
	err     error
}

func (f *announcerFake) PublishFileUploaded(_ context.Context, fileID string) error {
	if f.err != nil {
		return f.err
	}
	f.fileIDs = append(f.fileIDs, fileID)
	return nil
}

type storageFake struct {
	saved map[string]string
	err   error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	f.saved[key] = string(raw)
	return "/exports/" + key, nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	content, ok := f.saved[key]
	if !ok {
		return nil, errors.New("missing")
	}
	return io.NopCloser(bytes.NewBufferString(content)), nil
}

func invoiceDocument() *domain.ProcessedDocument {
	return &domain.ProcessedDocument{
		FileID:          "f-1",
		Filename:        "invoice 01.pdf",
		FileSize:        1234,
		FileType:        "application/pdf",
		Category:        domain.CategoryInvoice,
		ConfidenceScore: 0.95,
		Entities: []domain.Entity{
			{Type: "vendor_name", Value: "ACME", Confidence: 0.9},
			{Type: "total_amount", Value: "42.00", Confidence: 0.6},
		},
		Dates: []string{"2024-01-01"},
		Tables: []domain.Table{
			{TableName: "Line Items", Headers: []string{"Item", "Qty"}, Rows: [][]any{{"Bolt", float64(3)}}},
			{Headers: []string{"A", "B"}, Rows: [][]any{{"only one"}}},
		},
	}
}

func pendingDocument() *domain.ProcessedDocument {
	return &domain.ProcessedDocument{FileID: "f-1", Category: domain.CategoryProcessing, Entities: []domain.Entity{}, Tables: []domain.Table{}}
}
