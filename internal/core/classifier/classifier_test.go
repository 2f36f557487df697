package classifier

import (
	"strings"
	"testing"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
)

func TestClassifyErrorMessages(t *testing.T) {
	cases := []struct {
		name      string
		message   string
		wantState domain.ClassificationState
		wantKind  domain.FailureKind
	}{
		{"api configuration", "API configuration missing: OPENROUTER_API_KEY", domain.StateKnownFailure, domain.FailureAPIConfiguration},
		{"categorize", "Failed to categorize document", domain.StateKnownFailure, domain.FailureAIProcessing},
		{"extract", "could not extract entities", domain.StateKnownFailure, domain.FailureAIProcessing},
		{"timeout", "upstream timeout after 30s", domain.StateKnownFailure, domain.FailureTimeout},
		{"busy", "model is busy", domain.StateKnownFailure, domain.FailureServiceBusy},
		{"wait", "please wait and retry", domain.StateKnownFailure, domain.FailureServiceBusy},
		{"first match wins", "timeout while trying to extract", domain.StateKnownFailure, domain.FailureAIProcessing},
		{"case sensitive", "Upload failed: Timeout", domain.StateUnknownFailure, ""},
		{"unmatched", "Not found", domain.StateUnknownFailure, ""},
		{"empty", "", domain.StateKnownFailure, domain.FailureGeneric},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(domain.BackendError(tc.message))
			if got.State != tc.wantState || got.Kind != tc.wantKind {
				t.Fatalf("Classify(%q) = %+v, want state=%s kind=%s", tc.message, got, tc.wantState, tc.wantKind)
			}
		})
	}
}

func TestClassifyTimeoutIgnoresOtherFields(t *testing.T) {
	for _, msg := range []string{"timeout", "gateway timeout", "read timeout (30s)"} {
		got := Classify(domain.TransportError("Upload failed: " + msg))
		if got.State != domain.StateKnownFailure || got.Kind != domain.FailureTimeout {
			t.Fatalf("expected timeout for %q, got %+v", msg, got)
		}
		if got.Message != "Upload failed: "+msg {
			t.Fatalf("expected raw message to be kept, got %q", got.Message)
		}
	}
}

func TestClassifyPendingRegardlessOfOtherFields(t *testing.T) {
	docs := []*domain.ProcessedDocument{
		{Category: domain.CategoryProcessing},
		{Category: domain.CategoryProcessing, ConfidenceScore: 0.99},
		{Category: domain.CategoryProcessing, Entities: []domain.Entity{{Type: "amount", Value: "$1"}}},
	}
	for _, doc := range docs {
		if got := Classify(domain.Ok(doc)); got.State != domain.StatePending {
			t.Fatalf("expected pending, got %+v", got)
		}
	}
}

func TestClassifyOtherWithZeroConfidenceIsAIProcessingFailure(t *testing.T) {
	got := Classify(domain.Ok(&domain.ProcessedDocument{Category: domain.CategoryOther, ConfidenceScore: 0.0}))
	if got.State != domain.StateKnownFailure || got.Kind != domain.FailureAIProcessing {
		t.Fatalf("expected ai processing failure, got %+v", got)
	}

	got = Classify(domain.Ok(&domain.ProcessedDocument{Category: domain.CategoryOther, ConfidenceScore: 0.4}))
	if got.State != domain.StateSuccess {
		t.Fatalf("expected success for scored other, got %+v", got)
	}
}

func TestClassifySuccess(t *testing.T) {
	doc := &domain.ProcessedDocument{
		Category:        domain.CategoryInvoice,
		ConfidenceScore: 0.95,
		Entities:        []domain.Entity{{Type: "amount", Value: "$100", Confidence: 0.9}},
	}
	if got := Classify(domain.Ok(doc)); got.State != domain.StateSuccess {
		t.Fatalf("expected success, got %+v", got)
	}
	if got := Classify(domain.Ok(&domain.ProcessedDocument{})); got.State != domain.StateSuccess {
		t.Fatalf("expected missing category to classify as success, got %+v", got)
	}
}

func TestRemediateGenericMentionsBackend(t *testing.T) {
	rem := Remediate(Classify(domain.BackendError("boom")), "http://backend:8080")
	if rem == nil || !rem.CanRetry {
		t.Fatalf("expected retryable remediation, got %+v", rem)
	}
	if !strings.Contains(strings.Join(rem.Tips, "\n"), "http://backend:8080") {
		t.Fatalf("expected backend url in tips: %+v", rem.Tips)
	}
	if Remediate(domain.Classification{State: domain.StateSuccess}, "") != nil {
		t.Fatalf("expected no remediation for success")
	}
}
