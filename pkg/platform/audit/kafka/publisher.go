// Package kafka publishes audit events to a Kafka topic for downstream
// compliance and SIEM consumers. Production deployments use this Auditor;
// development falls back to the store-backed publisher.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "careergate/pkg/platform/audit"
	"careergate/pkg/requestcontext"
)

// Publisher emits audit events to a single topic. Produce is asynchronous;
// delivery failures are logged, not surfaced to the request path, because
// audit fan-out must never take the gate down.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// payload is the wire form of an audit event. Field names are part of the
// consumer contract; append-only.
type payload struct {
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	UserID    string `json:"user_id,omitempty"`
	Action    string `json:"action"`
	Reason    string `json:"reason,omitempty"`
	Email     string `json:"email,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	ActorID   string `json:"actor_id,omitempty"`
	IP        string `json:"ip,omitempty"`
	Browser   string `json:"browser,omitempty"`
	OS        string `json:"os,omitempty"`
}

// New connects to the given brokers and returns a Publisher for topic.
func New(brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Publisher{client: client, topic: topic, logger: logger}, nil
}

// Emit serializes the event and hands it to the producer. The returned error
// covers serialization only; broker-side failures are reported via the
// produce callback.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	event.Category = audit.AuditEvent(event.Action).Category()
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}

	body := payload{
		Category:  string(event.Category),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Action:    event.Action,
		Reason:    event.Reason,
		Email:     event.Email,
		RequestID: event.RequestID,
		ActorID:   event.ActorID,
		IP:        event.IP,
		Browser:   event.Browser,
		OS:        event.OS,
	}
	if !event.UserID.IsNil() {
		body.UserID = event.UserID.String()
	}

	value, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		// Key by user so one account's trail stays ordered within a partition.
		Key:   []byte(body.UserID),
		Value: value,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("failed to publish audit event",
				"error", err,
				"action", body.Action,
				"request_id", body.RequestID,
			)
		}
	})
	return nil
}

// Close flushes pending records and releases the client.
func (p *Publisher) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
}
