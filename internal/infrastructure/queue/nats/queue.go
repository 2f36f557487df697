package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
	"github.com/kirillkom/docresult-viewer/internal/core/ports"
	"github.com/kirillkom/docresult-viewer/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

const workerQueueGroup = "result-watchers"

// Queue carries uploaded file ids to the watcher worker and classified
// results back out.
type Queue struct {
	conn              *nats.Conn
	uploadedSubject   string
	classifiedSubject string
	executor          *resilience.Executor
	logger            *slog.Logger
}

var _ ports.EventPublisher = (*Queue)(nil)

type Options struct {
	ClassifiedSubject    string
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
	Logger               *slog.Logger
}

func New(url, uploadedSubject string) (*Queue, error) {
	return NewWithOptions(url, uploadedSubject, Options{})
}

func NewWithOptions(url, uploadedSubject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	classifiedSubject := strings.TrimSpace(options.ClassifiedSubject)
	if classifiedSubject == "" {
		classifiedSubject = uploadedSubject + ".classified"
	}

	conn, err := nats.Connect(
		url,
		nats.Name("docresult-viewer"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:              conn,
		uploadedSubject:   uploadedSubject,
		classifiedSubject: classifiedSubject,
		executor:          options.ResilienceExecutor,
		logger:            logger,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// PublishFileUploaded hands a file id to the watcher worker.
func (q *Queue) PublishFileUploaded(ctx context.Context, fileID string) error {
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "nats publish", fmt.Errorf("file id is required"))
	}
	return q.publish(ctx, q.uploadedSubject, []byte(fileID))
}

func (q *Queue) PublishResultClassified(ctx context.Context, event domain.ResultClassifiedEvent) error {
	payload, err := encodeClassifiedEvent(event)
	if err != nil {
		return err
	}
	return q.publish(ctx, q.classifiedSubject, payload)
}

func (q *Queue) publish(ctx context.Context, subject string, payload []byte) error {
	call := func(_ context.Context) error {
		if err := q.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	var err error
	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyPublishError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return asTemporary("nats publish "+subject, err)
	}
	return nil
}

// SubscribeFileUploaded blocks until ctx is done, then drains the subscription.
func (q *Queue) SubscribeFileUploaded(ctx context.Context, handler func(context.Context, string) error) error {
	sub, err := q.conn.QueueSubscribe(q.uploadedSubject, workerQueueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		fileID := strings.TrimSpace(string(msg.Data))
		if fileID == "" {
			q.logger.Warn("nats_empty_file_id", "subject", msg.Subject)
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, fileID); err != nil {
			q.logger.Error("watcher_handler_failed", "file_id", fileID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func encodeClassifiedEvent(event domain.ResultClassifiedEvent) ([]byte, error) {
	if strings.TrimSpace(event.FileID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "encode classified event", fmt.Errorf("file id is required"))
	}
	if event.ClassifiedAt.IsZero() {
		event.ClassifiedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal classified event: %w", err)
	}
	return payload, nil
}
