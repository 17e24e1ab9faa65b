// Package publisher provides a store-backed audit publisher with optional
// asynchronous buffering. It is the default Auditor when no Kafka brokers are
// configured.
package publisher

import (
	"context"
	"sync"

	id "careergate/pkg/domain"
	audit "careergate/pkg/platform/audit"
	"careergate/pkg/requestcontext"
)

// Publisher persists audit events to a Store, synchronously by default or
// through a buffered channel when async mode is enabled.
type Publisher struct {
	store audit.Store

	inbox chan audit.Event
	wg    sync.WaitGroup
	once  sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous emission with the given buffer size.
// Emit never blocks the request path; if the buffer is full the event is
// written synchronously instead of being dropped.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// NewPublisher constructs a Publisher over the given store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an audit event. The category is always derived from the
// action; the timestamp is stamped if the caller left it zero.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	event = prepare(ctx, event)

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
		return nil
	default:
		// Buffer full: fall back to a synchronous write rather than lose
		// the event.
		return p.store.Append(ctx, event)
	}
}

// List returns the audit trail for a user.
func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	return p.store.ListByUser(ctx, userID)
}

// Close stops the async drain loop and flushes buffered events.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.inbox {
		// Background writes outlive the originating request context.
		_ = p.store.Append(context.Background(), event)
	}
}

func prepare(ctx context.Context, event audit.Event) audit.Event {
	event.Category = audit.AuditEvent(event.Action).Category()
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	return event
}
