package domain

// UploadResult is either a decoded document or an error marker. The error
// marker covers both transport failures and error objects sent by the backend.
type UploadResult struct {
	Document *ProcessedDocument
	Error    *ResultError
}

type ResultError struct {
	Message string `json:"message"`
	// Transport is set when no backend payload was received.
	Transport bool `json:"transport"`
}

func Ok(doc *ProcessedDocument) UploadResult {
	return UploadResult{Document: doc}
}

func TransportError(message string) UploadResult {
	return UploadResult{Error: &ResultError{Message: message, Transport: true}}
}

func BackendError(message string) UploadResult {
	return UploadResult{Error: &ResultError{Message: message}}
}

func (r UploadResult) IsError() bool {
	return r.Error != nil || r.Document == nil
}

// FileID returns the backend identifier, empty for error results.
func (r UploadResult) FileID() string {
	if r.Document == nil {
		return ""
	}
	return r.Document.FileID
}

// Payload renders the result in the backend's wire shape, with the
// {error, message, fileId} object standing in for failures.
func (r UploadResult) Payload() any {
	if r.Error != nil || r.Document == nil {
		msg := ""
		if r.Error != nil {
			msg = r.Error.Message
		}
		return map[string]any{"error": true, "message": msg, "fileId": nil}
	}
	return r.Document
}

type ClassificationState string

const (
	StateSuccess        ClassificationState = "success"
	StatePending        ClassificationState = "pending"
	StateKnownFailure   ClassificationState = "known_failure"
	StateUnknownFailure ClassificationState = "unknown_failure"
)

type FailureKind string

const (
	FailureAPIConfiguration FailureKind = "api_configuration"
	FailureAIProcessing     FailureKind = "ai_processing"
	FailureTimeout          FailureKind = "timeout"
	FailureServiceBusy      FailureKind = "service_busy"
	FailureGeneric          FailureKind = "generic"
)

// Classification is the decided interpretation of a backend response.
// Kind is set only for known failures; Message carries the failure text.
type Classification struct {
	State   ClassificationState `json:"state"`
	Kind    FailureKind         `json:"kind,omitempty"`
	Message string              `json:"message,omitempty"`
}

func (c Classification) IsFailure() bool {
	return c.State == StateKnownFailure || c.State == StateUnknownFailure
}

// Label is a compact name used for metrics and events.
func (c Classification) Label() string {
	if c.State == StateKnownFailure && c.Kind != "" {
		return string(c.State) + ":" + string(c.Kind)
	}
	return string(c.State)
}

type HealthStatus string

const (
	HealthConnected HealthStatus = "connected"
	HealthDegraded  HealthStatus = "degraded"
	HealthOffline   HealthStatus = "offline"
)
