package backend

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
	"github.com/kirillkom/docresult-viewer/internal/infrastructure/resilience"
)

const invoicePayload = `{
  "fileId": "f-1",
  "filename": "invoice.pdf",
  "fileSize": 1234,
  "fileType": "application/pdf",
  "category": "invoice",
  "confidenceScore": 0.95,
  "entities": [{"type": "vendor_name", "value": "ACME", "confidence": 0.9}],
  "dates": ["2024-01-01"],
  "tables": [{"headers": ["Item", "Qty"], "rows": [["Bolt", 3]]}]
}`

type recordedCall struct {
	operation string
	outcome   string
}

type fakeObserver struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (f *fakeObserver) ObserveBackendCall(operation, outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{operation: operation, outcome: outcome})
}

func (f *fakeObserver) last() recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return recordedCall{}
	}
	return f.calls[len(f.calls)-1]
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUploadSendsMultipartFileField(t *testing.T) {
	var gotName, gotContent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/files/upload" {
			http.NotFound(w, r)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile() error = %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer file.Close()
		body, _ := io.ReadAll(file)
		gotName, gotContent = header.Filename, string(body)
		_, _ = w.Write([]byte(invoicePayload))
	}))
	defer server.Close()

	observer := &fakeObserver{}
	client := NewWithOptions(server.URL, Options{Observer: observer, Logger: quietLogger()})
	result := client.Upload(context.Background(), []byte("%PDF-1.4 data"), "invoice.pdf")

	if result.IsError() {
		t.Fatalf("Upload() returned error result: %+v", result.Error)
	}
	if gotName != "invoice.pdf" || gotContent != "%PDF-1.4 data" {
		t.Fatalf("unexpected multipart part: name=%q content=%q", gotName, gotContent)
	}
	doc := result.Document
	if doc.FileID != "f-1" || doc.Category != domain.CategoryInvoice || doc.FileSize != 1234 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if len(doc.Tables) != 1 || len(doc.Entities) != 1 {
		t.Fatalf("expected one table and one entity, got %+v", doc)
	}
	if got := observer.last(); got.operation != opUpload || got.outcome != "ok" {
		t.Fatalf("unexpected observed call: %+v", got)
	}
}

func TestUploadConnectionRefusedBecomesTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	observer := &fakeObserver{}
	client := NewWithOptions(baseURL, Options{Observer: observer, Logger: quietLogger()})
	result := client.Upload(context.Background(), []byte("x"), "a.pdf")

	if !result.IsError() || !result.Error.Transport {
		t.Fatalf("expected transport error, got %+v", result)
	}
	if !strings.HasPrefix(result.Error.Message, "Upload failed: ") {
		t.Fatalf("unexpected message prefix: %q", result.Error.Message)
	}
	if !strings.Contains(result.Error.Message, "Connection failed") {
		t.Fatalf("expected connection failure in message, got %q", result.Error.Message)
	}
	if result.FileID() != "" {
		t.Fatalf("expected empty file id, got %q", result.FileID())
	}
	if got := observer.last(); got.outcome != "connection_error" {
		t.Fatalf("unexpected observed outcome: %+v", got)
	}
}

func TestUploadBackendErrorObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": true, "message": "AI service busy, please wait", "fileId": null}`))
	}))
	defer server.Close()

	result := NewWithOptions(server.URL, Options{Logger: quietLogger()}).Upload(context.Background(), []byte("x"), "a.png")
	if !result.IsError() {
		t.Fatalf("expected error result")
	}
	if result.Error.Transport {
		t.Fatalf("backend error must not be marked as transport error")
	}
	if result.Error.Message != "AI service busy, please wait" {
		t.Fatalf("unexpected message: %q", result.Error.Message)
	}
}

func TestUploadIncludesStatusAndBodyInMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "storage exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	result := NewWithOptions(server.URL, Options{Logger: quietLogger()}).Upload(context.Background(), []byte("x"), "a.pdf")
	if !result.IsError() || !result.Error.Transport {
		t.Fatalf("expected transport error, got %+v", result)
	}
	msg := result.Error.Message
	if !strings.Contains(msg, "500") || !strings.Contains(msg, "storage exploded") {
		t.Fatalf("expected status and body in message, got %q", msg)
	}
}

func TestUploadMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	result := NewWithOptions(server.URL, Options{Logger: quietLogger()}).Upload(context.Background(), []byte("x"), "a.pdf")
	if !result.IsError() || !strings.HasPrefix(result.Error.Message, "Upload failed: decode response: ") {
		t.Fatalf("expected decode failure, got %+v", result)
	}
}

func TestUploadTimeoutMentionsTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewWithOptions(server.URL, Options{UploadTimeout: 50 * time.Millisecond, Logger: quietLogger()})
	result := client.Upload(context.Background(), []byte("x"), "a.pdf")
	if !result.IsError() || !strings.Contains(result.Error.Message, "timeout after 50ms") {
		t.Fatalf("expected timeout message, got %+v", result)
	}
}

func TestFetchResultReturnsNilOnNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/files/f-1" {
			_, _ = w.Write([]byte(invoicePayload))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewWithOptions(server.URL, Options{Logger: quietLogger()})
	if doc := client.FetchResult(context.Background(), "missing"); doc != nil {
		t.Fatalf("expected nil for missing file, got %+v", doc)
	}
	if doc := client.FetchResult(context.Background(), ""); doc != nil {
		t.Fatalf("expected nil for empty id, got %+v", doc)
	}
	doc := client.FetchResult(context.Background(), "f-1")
	if doc == nil || doc.Filename != "invoice.pdf" {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestFetchResultTreatsErrorObjectAsMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": true, "message": "gone"}`))
	}))
	defer server.Close()

	if doc := NewWithOptions(server.URL, Options{Logger: quietLogger()}).FetchResult(context.Background(), "f-1"); doc != nil {
		t.Fatalf("expected nil, got %+v", doc)
	}
}

func TestDownloadOriginal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/files/f-1/download" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("original-bytes"))
	}))
	defer server.Close()

	client := NewWithOptions(server.URL, Options{Logger: quietLogger()})
	if got := string(client.DownloadOriginal(context.Background(), "f-1")); got != "original-bytes" {
		t.Fatalf("unexpected content: %q", got)
	}
	if got := client.DownloadOriginal(context.Background(), "nope"); got != nil {
		t.Fatalf("expected nil on failure, got %q", got)
	}
}

func TestDownloadOriginalRejectsOversizedFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/files/big/download":
			_, _ = w.Write([]byte(strings.Repeat("x", 20)))
		case "/api/files/exact/download":
			_, _ = w.Write([]byte(strings.Repeat("x", 16)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	observer := &fakeObserver{}
	client := NewWithOptions(server.URL, Options{MaxDownloadBytes: 16, Observer: observer, Logger: quietLogger()})

	if got := client.DownloadOriginal(context.Background(), "big"); got != nil {
		t.Fatalf("expected nil for a file over the limit, got %d bytes", len(got))
	}
	if got := observer.last(); got.operation != opDownload || got.outcome != "too_large" {
		t.Fatalf("unexpected observed call: %+v", got)
	}
	if got := client.DownloadOriginal(context.Background(), "exact"); len(got) != 16 {
		t.Fatalf("expected a file at the limit to download, got %d bytes", len(got))
	}
}

func TestListFilesBestEffort(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"a","filename":"a.pdf","status":"done","category":"invoice"},{"filename":"no-id.pdf"}]`))
	}))
	defer server.Close()

	client := NewWithOptions(server.URL, Options{Logger: quietLogger()})
	files := client.ListFiles(context.Background())
	if len(files) != 1 || files[0].ID != "a" {
		t.Fatalf("unexpected files: %+v", files)
	}

	healthy.Store(false)
	files = client.ListFiles(context.Background())
	if files == nil || len(files) != 0 {
		t.Fatalf("expected empty non-nil listing, got %#v", files)
	}
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   domain.HealthStatus
	}{
		{name: "ok", status: http.StatusOK, want: domain.HealthConnected},
		{name: "not found still reachable", status: http.StatusNotFound, want: domain.HealthConnected},
		{name: "server error", status: http.StatusBadGateway, want: domain.HealthDegraded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/test" {
					t.Errorf("unexpected probe path %q", r.URL.Path)
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			if got := NewWithOptions(server.URL, Options{Logger: quietLogger()}).Probe(context.Background()); got != tt.want {
				t.Fatalf("Probe() = %q, want %q", got, tt.want)
			}
		})
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()
	if got := NewWithOptions(baseURL, Options{Logger: quietLogger()}).Probe(context.Background()); got != domain.HealthOffline {
		t.Fatalf("Probe() on closed server = %q, want offline", got)
	}
}

func TestOpenBreakerFailsFastAsTransportError(t *testing.T) {
	var hits int
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := resilience.DefaultConfig()
	cfg.BreakerMinRequests = 2
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute
	executor := resilience.NewExecutor(cfg, quietLogger())
	client := NewWithOptions(server.URL, Options{Executor: executor, Logger: quietLogger()})

	for range 2 {
		_ = client.Upload(context.Background(), []byte("x"), "a.pdf")
	}
	result := client.Upload(context.Background(), []byte("x"), "a.pdf")
	if !result.IsError() || !strings.Contains(result.Error.Message, "circuit open") {
		t.Fatalf("expected circuit open transport error, got %+v", result)
	}
	mu.Lock()
	defer mu.Unlock()
	if hits != 2 {
		t.Fatalf("expected breaker to stop requests after 2 hits, got %d", hits)
	}
}

func TestPayloadLinterReportsDriftWithoutRejecting(t *testing.T) {
	linter := newPayloadLinter(quietLogger())
	if violations := linter.lint([]byte(invoicePayload)); len(violations) != 0 {
		t.Fatalf("expected valid payload, got %v", violations)
	}
	violations := linter.lint([]byte(`{"fileId": "f", "category": "invoice", "confidenceScore": 7}`))
	if len(violations) == 0 {
		t.Fatalf("expected schema violation for out of range confidence")
	}
}
