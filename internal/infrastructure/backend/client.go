// Package backend is the HTTP transport to the document processing backend.
// Every failure is turned into data at this boundary: an error-marked
// UploadResult, a nil document, nil bytes or an empty listing.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
	"github.com/kirillkom/docresult-viewer/internal/core/ports"
	"github.com/kirillkom/docresult-viewer/internal/infrastructure/resilience"
)

const (
	DefaultBaseURL       = "http://localhost:8080"
	DefaultUploadTimeout = 60 * time.Second
	DefaultFetchTimeout  = 30 * time.Second
	DefaultProbeTimeout  = 5 * time.Second

	opUpload   = "upload"
	opFetch    = "fetch_result"
	opDownload = "download_original"
	opList     = "list_files"
	opProbe    = "probe"
)

type Options struct {
	UploadTimeout time.Duration
	FetchTimeout  time.Duration
	ProbeTimeout  time.Duration

	// MaxDownloadBytes caps original downloads; larger files fail.
	MaxDownloadBytes int64

	HTTPClient *http.Client
	Executor   *resilience.Executor
	Observer   ports.TransportObserver
	Logger     *slog.Logger
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
	observer   ports.TransportObserver
	logger     *slog.Logger
	linter     *payloadLinter

	uploadTimeout time.Duration
	fetchTimeout  time.Duration
	probeTimeout  time.Duration

	maxDownloadBytes int64
}

var _ ports.ResultBackend = (*Client)(nil)

func New(baseURL string) *Client {
	return NewWithOptions(baseURL, Options{})
}

func NewWithOptions(baseURL string, options Options) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := options.HTTPClient
	if httpClient == nil {
		// Deadlines come from per-call contexts.
		httpClient = &http.Client{}
	}

	client := &Client{
		baseURL:       baseURL,
		httpClient:    httpClient,
		executor:      options.Executor,
		observer:      options.Observer,
		logger:        logger,
		linter:        newPayloadLinter(logger),
		uploadTimeout: durationOr(options.UploadTimeout, DefaultUploadTimeout),
		fetchTimeout:  durationOr(options.FetchTimeout, DefaultFetchTimeout),
		probeTimeout:  durationOr(options.ProbeTimeout, DefaultProbeTimeout),

		maxDownloadBytes: maxDownloadBytes,
	}
	if options.MaxDownloadBytes > 0 {
		client.maxDownloadBytes = options.MaxDownloadBytes
	}
	return client
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Upload sends the file as multipart field "file" and returns the decoded
// result. Transport failures come back as a TransportError result.
func (c *Client) Upload(ctx context.Context, fileBytes []byte, filename string) domain.UploadResult {
	var result domain.UploadResult
	err := c.call(ctx, opUpload, c.uploadTimeout, true, func(callCtx context.Context) error {
		body, contentType, err := multipartBody(filename, fileBytes)
		if err != nil {
			return err
		}
		raw, err := c.do(callCtx, http.MethodPost, "/api/files/upload", body, contentType, maxJSONBytes)
		if err != nil {
			return err
		}
		result, err = c.decodeUploadResponse(raw)
		return err
	})
	if err != nil {
		msg := "Upload failed: " + describeError(err, c.uploadTimeout)
		c.logger.Warn("backend_upload_failed", "filename", filename, "error", err)
		return domain.TransportError(msg)
	}
	return result
}

// FetchResult returns nil on any failure, including 404.
func (c *Client) FetchResult(ctx context.Context, fileID string) *domain.ProcessedDocument {
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return nil
	}

	var doc *domain.ProcessedDocument
	err := c.call(ctx, opFetch, c.fetchTimeout, true, func(callCtx context.Context) error {
		raw, err := c.do(callCtx, http.MethodGet, "/api/files/"+url.PathEscape(fileID), nil, "", maxJSONBytes)
		if err != nil {
			return err
		}
		result, err := c.decodeUploadResponse(raw)
		if err != nil {
			return err
		}
		if result.Error != nil {
			return &backendErrorPayload{Message: result.Error.Message}
		}
		doc = result.Document
		return nil
	})
	if err != nil {
		c.logger.Debug("backend_fetch_failed", "file_id", fileID, "error", err)
		return nil
	}
	return doc
}

// DownloadOriginal returns nil on any failure.
func (c *Client) DownloadOriginal(ctx context.Context, fileID string) []byte {
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return nil
	}

	var content []byte
	err := c.call(ctx, opDownload, c.fetchTimeout, true, func(callCtx context.Context) error {
		raw, err := c.do(callCtx, http.MethodGet, "/api/files/"+url.PathEscape(fileID)+"/download", nil, "", c.maxDownloadBytes)
		if err != nil {
			return err
		}
		content = raw
		return nil
	})
	if err != nil {
		c.logger.Debug("backend_download_failed", "file_id", fileID, "error", err)
		return nil
	}
	return content
}

// ListFiles is best effort and degrades to an empty listing.
func (c *Client) ListFiles(ctx context.Context) []domain.FileSummary {
	files := []domain.FileSummary{}
	err := c.call(ctx, opList, c.fetchTimeout, true, func(callCtx context.Context) error {
		raw, err := c.do(callCtx, http.MethodGet, "/api/files", nil, "", maxJSONBytes)
		if err != nil {
			return err
		}
		var decoded []domain.FileSummary
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return &decodeError{err: err}
		}
		files = make([]domain.FileSummary, 0, len(decoded))
		for _, f := range decoded {
			if f.ID == "" {
				continue
			}
			files = append(files, f)
		}
		return nil
	})
	if err != nil {
		c.logger.Debug("backend_list_failed", "error", err)
		return []domain.FileSummary{}
	}
	return files
}

// Probe treats both 200 and 404 from /test as a reachable backend.
func (c *Client) Probe(ctx context.Context) domain.HealthStatus {
	status := domain.HealthOffline
	_ = c.call(ctx, opProbe, c.probeTimeout, false, func(callCtx context.Context) error {
		req, err := http.NewRequestWithContext(callCtx, http.MethodGet, c.baseURL+"/test", nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK, http.StatusNotFound:
			status = domain.HealthConnected
		default:
			status = domain.HealthDegraded
		}
		return nil
	})
	return status
}

// call applies the timeout, the optional breaker and the observer.
func (c *Client) call(ctx context.Context, operation string, timeout time.Duration, guarded bool, fn func(context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	var err error
	if guarded && c.executor != nil {
		err = c.executor.Execute(callCtx, "backend."+operation, fn, classifyTransportError)
	} else {
		err = fn(callCtx)
	}

	if c.observer != nil {
		c.observer.ObserveBackendCall(operation, outcomeLabel(err), time.Since(start))
	}
	return err
}

func multipartBody(filename string, fileBytes []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(fileBytes); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}
