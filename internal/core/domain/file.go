package domain

// FileDetails describes a local file before it is sent for processing.
type FileDetails struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
	// Pages is known for PDF files only.
	Pages int `json:"pages,omitempty"`
}

// SupportedExtensions are the upload formats accepted by the backend.
var SupportedExtensions = []string{".pdf", ".png", ".jpg", ".jpeg"}
