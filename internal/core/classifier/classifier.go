// Package classifier decides how a backend response should be presented:
// as a success, an in-progress document, or one of the known failure modes.
package classifier

import (
	"strings"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
)

const (
	unknownErrorMessage       = "Unknown error occurred"
	categorizationFailMessage = "Unable to categorize this document. The AI service may be having issues."
)

type messagePattern struct {
	substrings []string
	kind       domain.FailureKind
}

// Matched case-sensitively, first match wins.
var messagePatterns = []messagePattern{
	{substrings: []string{"API configuration"}, kind: domain.FailureAPIConfiguration},
	{substrings: []string{"categorize", "extract"}, kind: domain.FailureAIProcessing},
	{substrings: []string{"timeout"}, kind: domain.FailureTimeout},
	{substrings: []string{"busy", "wait"}, kind: domain.FailureServiceBusy},
}

// Classify never fails; every result maps to exactly one classification.
func Classify(result domain.UploadResult) domain.Classification {
	if result.Error != nil || result.Document == nil {
		msg := ""
		if result.Error != nil {
			msg = result.Error.Message
		}
		return classifyFailure(msg)
	}
	return ClassifyDocument(result.Document)
}

func ClassifyDocument(doc *domain.ProcessedDocument) domain.Classification {
	if doc == nil {
		return classifyFailure("")
	}
	switch {
	case doc.Category == domain.CategoryProcessing:
		return domain.Classification{State: domain.StatePending}
	case doc.Category == domain.CategoryOther && doc.ConfidenceScore == 0.0:
		return domain.Classification{
			State:   domain.StateKnownFailure,
			Kind:    domain.FailureAIProcessing,
			Message: categorizationFailMessage,
		}
	default:
		return domain.Classification{State: domain.StateSuccess}
	}
}

// MatchFailureKind reports the known failure kind for a message, if any.
func MatchFailureKind(message string) (domain.FailureKind, bool) {
	for _, p := range messagePatterns {
		for _, s := range p.substrings {
			if strings.Contains(message, s) {
				return p.kind, true
			}
		}
	}
	return "", false
}

func classifyFailure(message string) domain.Classification {
	if strings.TrimSpace(message) == "" {
		return domain.Classification{
			State:   domain.StateKnownFailure,
			Kind:    domain.FailureGeneric,
			Message: unknownErrorMessage,
		}
	}
	if kind, ok := MatchFailureKind(message); ok {
		return domain.Classification{State: domain.StateKnownFailure, Kind: kind, Message: message}
	}
	return domain.Classification{State: domain.StateUnknownFailure, Message: message}
}
