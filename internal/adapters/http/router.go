package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
	"github.com/kirillkom/docresult-viewer/internal/core/normalizer"
	"github.com/kirillkom/docresult-viewer/internal/core/outcome"
	"github.com/kirillkom/docresult-viewer/internal/core/ports"
	"github.com/kirillkom/docresult-viewer/internal/observability/metrics"
)

const (
	defaultMaxUploadBytes = 50 << 20
	defaultQueueWait      = 100 * time.Millisecond
)

type Options struct {
	Service        string
	MaxUploadBytes int64
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
	QueueWait      time.Duration
	Metrics        *metrics.HTTPServerMetrics
	Logger         *slog.Logger
}

type Router struct {
	viewer  ports.ResultViewer
	opts    Options
	logger  *slog.Logger
	metrics *metrics.HTTPServerMetrics
}

func NewRouter(viewer ports.ResultViewer, opts Options) *Router {
	if opts.Service == "" {
		opts.Service = "api"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.QueueWait <= 0 {
		opts.QueueWait = defaultQueueWait
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		viewer:  viewer,
		opts:    opts,
		logger:  logger,
		metrics: opts.Metrics,
	}
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /v1/backend/health", rt.backendHealth)
	api.HandleFunc("POST /v1/documents", rt.uploadDocument)
	api.HandleFunc("GET /v1/documents", rt.listDocuments)
	api.HandleFunc("GET /v1/documents/{id}", rt.getDocument)
	api.HandleFunc("GET /v1/documents/{id}/original", rt.getOriginal)
	api.HandleFunc("GET /v1/documents/{id}/tables/{file}", rt.getTable)

	var limited http.Handler = api
	limited = backpressureMiddleware(limited, rt.opts.MaxInFlight, rt.opts.QueueWait, rt.rejected("backpressure"))
	limited = rateLimitMiddleware(limited, rt.opts.RateLimitRPS, rt.opts.RateLimitBurst, rt.rejected("rate_limit"))

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		root.Handle("GET /metrics", rt.metrics.Handler())
	}
	root.Handle("/", limited)

	var handler http.Handler = root
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.opts.Service, handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) rejected(reason string) func() {
	if rt.metrics == nil {
		return nil
	}
	return func() { rt.metrics.RecordRejected(rt.opts.Service, reason) }
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) backendHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": string(rt.viewer.BackendHealth(r.Context()))})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > rt.opts.MaxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: fmt.Sprintf("file exceeds %d bytes", rt.opts.MaxUploadBytes)})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, rt.opts.MaxUploadBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: fmt.Sprintf("file exceeds %d bytes", maxErr.Limit)})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "read uploaded file"})
		return
	}

	out, err := rt.viewer.Upload(r.Context(), content, fileHeader.Filename)
	if err != nil {
		if out.Classification.State == "" {
			rt.writeError(w, r, err)
			return
		}
		rt.logger.Warn("upload_side_effect_failed",
			"request_id", requestIDFromContext(r.Context()),
			"file_id", out.FileID,
			"error", err,
		)
	}

	rt.recordOutcome("upload", out)
	status := http.StatusOK
	if out.Pending() {
		status = http.StatusAccepted
	}
	writeJSON(w, status, out)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	files := rt.viewer.Recent(r.Context())
	labels := make([]string, 0, len(files))
	for _, f := range files {
		labels = append(labels, f.Label())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"files":  files,
		"labels": labels,
	})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "file id is required"})
		return
	}

	out := rt.viewer.Load(r.Context(), id)
	rt.recordOutcome("result", out)

	status := http.StatusOK
	if isNotFoundOutcome(out) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, out)
}

func (rt *Router) getOriginal(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	content, err := rt.viewer.Original(r.Context(), id)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(content))
	w.Header().Set("Content-Disposition", attachment(id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// getTable serves /tables/{index}.csv and /tables/{index}.xlsx.
func (rt *Router) getTable(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	index, format, err := parseTableFile(r.PathValue("file"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	table, err := rt.viewer.Table(r.Context(), id, index)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	var (
		content     []byte
		filename    string
		contentType string
	)
	switch format {
	case "xlsx":
		content, err = normalizer.TableXLSX(table)
		filename = table.XLSXFileName()
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		content, err = normalizer.TableCSV(table)
		filename = table.CSVFileName()
		contentType = "text/csv"
	}
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordTableDownload(rt.opts.Service, format)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", attachment(filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func parseTableFile(file string) (int, string, error) {
	const op = "parse table path"
	stem, format, ok := strings.Cut(file, ".")
	if !ok || (format != "csv" && format != "xlsx") {
		return 0, "", domain.WrapError(domain.ErrInvalidInput, op, fmt.Errorf("want {index}.csv or {index}.xlsx, got %q", file))
	}
	index, err := strconv.Atoi(stem)
	if err != nil || index < 0 {
		return 0, "", domain.WrapError(domain.ErrInvalidInput, op, fmt.Errorf("invalid table index %q", stem))
	}
	return index, format, nil
}

func (rt *Router) recordOutcome(endpoint string, out outcome.Outcome) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordOutcome(rt.opts.Service, endpoint, out.Classification.Label())
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		rt.logger.Error("request_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func isNotFoundOutcome(out outcome.Outcome) bool {
	return out.Result.Error != nil && !out.Result.Error.Transport && out.Classification.Message == "Not found"
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
