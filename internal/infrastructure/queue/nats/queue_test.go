package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
	"github.com/kirillkom/docresult-viewer/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

func TestEncodeClassifiedEvent(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	payload, err := encodeClassifiedEvent(domain.ResultClassifiedEvent{
		FileID:          "f-1",
		State:           domain.StateSuccess,
		Category:        domain.CategoryInvoice,
		ConfidenceScore: 0.95,
		EntityCount:     3,
		ClassifiedAt:    at,
	})
	if err != nil {
		t.Fatalf("encodeClassifiedEvent() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded["fileId"] != "f-1" || decoded["state"] != string(domain.StateSuccess) {
		t.Fatalf("unexpected payload: %s", payload)
	}
	if _, ok := decoded["kind"]; ok {
		t.Fatalf("kind must be omitted for success: %s", payload)
	}
}

func TestEncodeClassifiedEventRequiresFileID(t *testing.T) {
	_, err := encodeClassifiedEvent(domain.ResultClassifiedEvent{State: domain.StatePending})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestAsTemporaryMarksConnectionFailures(t *testing.T) {
	err := asTemporary("nats publish", fmt.Errorf("nats publish: %w", nats.ErrConnectionClosed))
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}

	plain := errors.New("permissions violation")
	if got := asTemporary("nats publish", plain); domain.IsKind(got, domain.ErrTemporary) {
		t.Fatalf("non retryable error must not be temporary: %v", got)
	}
}

func TestClassifyPublishError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		retryable     bool
		recordFailure bool
	}{
		{name: "canceled", err: context.Canceled},
		{name: "oversized payload", err: fmt.Errorf("nats publish: %w", nats.ErrMaxPayload)},
		{name: "missing file id", err: domain.WrapError(domain.ErrInvalidInput, "nats publish", errors.New("file id is required"))},
		{name: "no servers", err: nats.ErrNoServers, retryable: true, recordFailure: true},
		{name: "reconnecting", err: nats.ErrConnectionReconnecting, retryable: true, recordFailure: true},
		{name: "other", err: errors.New("permissions violation"), recordFailure: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyPublishError(tt.err)
			if got.Retryable != tt.retryable || got.RecordFailure != tt.recordFailure {
				t.Fatalf("unexpected classification: %+v", got)
			}
		})
	}
}

func TestPublishRetriesConnectionFailures(t *testing.T) {
	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
	}, nil)

	attempts := 0
	err := executor.Execute(context.Background(), "nats.publish", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("nats publish: %w", nats.ErrNoServers)
		}
		return nil
	}, classifyPublishError)
	if err != nil {
		t.Fatalf("expected publish to succeed after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}

	attempts = 0
	err = executor.Execute(context.Background(), "nats.publish", func(context.Context) error {
		attempts++
		return fmt.Errorf("nats publish: %w", nats.ErrMaxPayload)
	}, classifyPublishError)
	if err == nil || attempts != 1 {
		t.Fatalf("oversized payload must fail without retry: attempts=%d err=%v", attempts, err)
	}
}
