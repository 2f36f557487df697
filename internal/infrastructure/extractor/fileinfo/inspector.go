// Package fileinfo validates local files before they are uploaded and
// reports the details shown in the upload preview.
package fileinfo

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
	"github.com/kirillkom/docresult-viewer/internal/core/ports"
)

const (
	mimePDF  = "application/pdf"
	mimePNG  = "image/png"
	mimeJPEG = "image/jpeg"
)

var extensionMIME = map[string]string{
	".pdf":  mimePDF,
	".png":  mimePNG,
	".jpg":  mimeJPEG,
	".jpeg": mimeJPEG,
}

type Inspector struct {
	maxBytes int64
}

var _ ports.FileInspector = (*Inspector)(nil)

// NewInspector returns an inspector; maxBytes <= 0 disables the size limit.
func NewInspector(maxBytes int64) *Inspector {
	return &Inspector{maxBytes: maxBytes}
}

func (i *Inspector) Inspect(filename string, data []byte) (domain.FileDetails, error) {
	const op = "inspect file"

	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return domain.FileDetails{}, domain.WrapError(domain.ErrInvalidInput, op, fmt.Errorf("filename is required"))
	}
	if len(data) == 0 {
		return domain.FileDetails{}, domain.WrapError(domain.ErrInvalidInput, op, fmt.Errorf("%s is empty", name))
	}
	if i.maxBytes > 0 && int64(len(data)) > i.maxBytes {
		return domain.FileDetails{}, domain.WrapError(domain.ErrInvalidInput, op, fmt.Errorf("%s exceeds %d bytes", name, i.maxBytes))
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(domain.SupportedExtensions, ext) {
		return domain.FileDetails{}, domain.WrapError(domain.ErrUnsupportedFormat, op, fmt.Errorf("%s: supported formats are %s", name, strings.Join(domain.SupportedExtensions, ", ")))
	}

	expected := extensionMIME[ext]
	sniffed := http.DetectContentType(data)
	if sniffed != expected {
		return domain.FileDetails{}, domain.WrapError(domain.ErrUnsupportedFormat, op, fmt.Errorf("%s: content is %s, expected %s", name, sniffed, expected))
	}

	details := domain.FileDetails{
		Filename: name,
		Size:     int64(len(data)),
		MimeType: sniffed,
	}
	if sniffed == mimePDF {
		details.Pages = countPages(data)
	}
	return details, nil
}

// countPages returns 0 when the document cannot be parsed; the backend
// makes the final call on such files.
func countPages(data []byte) (pages int) {
	defer func() {
		if recover() != nil {
			pages = 0
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0
	}
	return reader.NumPage()
}
