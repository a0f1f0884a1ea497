// Package publisher decouples audit writes from the request path. The
// default mode is a buffered-channel fire-and-forget dispatch; deletes use
// the synchronous path so their provenance is attempted before the entity
// disappears.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/audit"
	"taskboard/internal/platform/metrics"
)

type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *metrics.Metrics

	inbox     chan audit.Event
	drained   chan struct{}
	closeOnce sync.Once
}

type Option func(p *Publisher)

// WithAsyncBuffer switches Emit to a non-blocking buffered dispatch. Events
// that do not fit the buffer are dropped, not queued: audit completeness is
// secondary to request latency.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.drained = make(chan struct{})
		go p.run()
	}
	return p
}

// Emit records an event best-effort. The returned error is always nil in
// async mode; in sync mode it carries the store failure for tests. The
// triggering operation's outcome never depends on audit-write success, so
// callers may ignore it.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	event = p.fill(event)
	if p.inbox == nil {
		return p.persist(ctx, event)
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		p.drop(ctx, event, nil)
		return nil
	}
}

// EmitSync records an event inline, bypassing the buffer. Used before
// destructive operations so the record is durably attempted first. Failures
// are still absorbed.
func (p *Publisher) EmitSync(ctx context.Context, event audit.Event) {
	_ = p.persist(ctx, p.fill(event))
}

// Close stops accepting async events and drains the buffer.
func (p *Publisher) Close() {
	if p.inbox == nil {
		return
	}
	p.closeOnce.Do(func() {
		close(p.inbox)
	})
	<-p.drained
}

func (p *Publisher) run() {
	// Detached from any request; a request-scoped context would cancel
	// writes still in flight after the response is sent.
	for event := range p.inbox {
		_ = p.persist(context.Background(), event)
	}
	close(p.drained)
}

func (p *Publisher) fill(event audit.Event) audit.Event {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return event
}

func (p *Publisher) persist(ctx context.Context, event audit.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		p.drop(ctx, event, err)
		return err
	}
	if p.metrics != nil {
		p.metrics.AuditEventsPublished.Inc()
	}
	return nil
}

func (p *Publisher) drop(ctx context.Context, event audit.Event, cause error) {
	p.logger.ErrorContext(ctx, "audit event dropped",
		"action", event.Action,
		"entity_type", event.EntityType,
		"entity_id", event.EntityID,
		"error", cause,
	)
	if p.metrics != nil {
		p.metrics.AuditEventsDropped.Inc()
	}
}
