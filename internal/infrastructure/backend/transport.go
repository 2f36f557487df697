package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
)

const (
	maxJSONBytes     = 16 << 20
	maxDownloadBytes = 100 << 20
	maxErrorBody     = 2048
)

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, newHTTPStatusError(resp)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(raw)) > limit {
		return nil, &responseTooLargeError{limit: limit}
	}
	return raw, nil
}

func newHTTPStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &HTTPStatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(body)),
	}
}

// decodeUploadResponse recognises the backend error object
// {"error": true, "message": ...} before decoding a document.
func (c *Client) decodeUploadResponse(raw []byte) (domain.UploadResult, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return domain.UploadResult{}, &decodeError{err: err}
	}
	if envelope == nil {
		return domain.UploadResult{}, &decodeError{err: fmt.Errorf("response is null")}
	}

	if flag, ok := envelope["error"]; ok {
		var isError bool
		if err := json.Unmarshal(flag, &isError); err == nil && isError {
			var message string
			if rawMessage, ok := envelope["message"]; ok {
				var value any
				if err := json.Unmarshal(rawMessage, &value); err == nil {
					message = domain.CellString(value)
				}
			}
			return domain.BackendError(message), nil
		}
	}

	c.linter.lint(raw)

	var doc domain.ProcessedDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.UploadResult{}, &decodeError{err: err}
	}
	return domain.Ok(&doc), nil
}
