package classifier

import (
	"fmt"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
)

// Remediation is the troubleshooting text shown next to a failed result.
type Remediation struct {
	Title    string   `json:"title"`
	Tips     []string `json:"tips"`
	CanRetry bool     `json:"can_retry"`
}

// Remediate returns nil for successful and pending results.
func Remediate(c domain.Classification, backendURL string) *Remediation {
	if !c.IsFailure() {
		return nil
	}
	kind := c.Kind
	if c.State == domain.StateUnknownFailure {
		kind = domain.FailureGeneric
	}

	switch kind {
	case domain.FailureAPIConfiguration:
		return &Remediation{
			Title: "API Configuration Issue",
			Tips: []string{
				"The AI provider API key may not be set correctly",
				"Contact the administrator to verify the API configuration",
			},
			CanRetry: true,
		}
	case domain.FailureAIProcessing:
		return &Remediation{
			Title: "AI Processing Issue",
			Tips: []string{
				"The AI service may be temporarily unavailable",
				"Try uploading a different file format (PDF works best)",
				"Wait a few minutes and try again",
			},
			CanRetry: true,
		}
	case domain.FailureTimeout:
		return &Remediation{
			Title: "Timeout Issue",
			Tips: []string{
				"Your file may be too large to process quickly",
				"Try with a smaller file (under 5MB recommended)",
				"Ensure you have a stable internet connection",
			},
			CanRetry: true,
		}
	case domain.FailureServiceBusy:
		return &Remediation{
			Title: "Service Busy",
			Tips: []string{
				"The AI service is currently handling many requests",
				"Wait 30-60 seconds and try again",
				"Consider trying during off-peak hours",
			},
			CanRetry: true,
		}
	default:
		return &Remediation{
			Title: "General troubleshooting",
			Tips: []string{
				fmt.Sprintf("Make sure the backend server is running on %s", backendURL),
				"Check that your file is in a supported format (PDF, PNG, JPEG)",
				"Try with a different file to see if the issue persists",
				"Retry the request",
			},
			CanRetry: true,
		}
	}
}
