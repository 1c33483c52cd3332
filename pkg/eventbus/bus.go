// Package eventbus publishes Session Orchestrator events to NATS for
// offline analysis and replay; the chat controller hands it each
// session's terminal event (complete or error). Publishing is fire-and-forget and
// never blocks or gates the SSE stream (spec.md section 5); absence of
// NATS_URL disables the bus with a warning, the same degrade-gracefully
// idiom the teacher's container uses for its own optional dependencies.
package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go"

	"analytics-assistant-be/internal/pkg/logger"
	"analytics-assistant-be/pkg/rag/orchestrator"
)

// sessionEventsSubject is the NATS subject PublishSessionEvent
// publishes to, per SPEC_FULL.md's domain-stack wiring for the event
// bus.
const sessionEventsSubject = "session.events"

// Bus wraps a watermill message.Publisher backed directly by a NATS
// connection. There is no ready-made watermill/NATS driver in the
// example corpus's go.mod, so the publisher adapter is authored
// directly against nats.go, following the teacher's own
// pkg/nats/publisher.go connect-with-retry shape.
type Bus struct {
	nc        *nats.Conn
	publisher message.Publisher
	log       logger.ILogger
}

// New connects to NATS at url. A connection failure is logged and
// tolerated: the returned Bus has Enabled() == false and every publish
// call becomes a no-op, matching container.go's non-fatal degradation
// for Redis and NATS.
func New(url string, log logger.ILogger) *Bus {
	if url == "" {
		log.Warn("eventbus", "NATS_URL not configured, session event auditing disabled", nil)
		return &Bus{log: log}
	}

	nc, err := nats.Connect(url,
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		log.Warn("eventbus", "nats unreachable, session event auditing disabled", map[string]interface{}{"error": err.Error()})
		return &Bus{log: log}
	}

	return &Bus{
		nc:        nc,
		publisher: &natsPublisher{nc: nc},
		log:       log,
	}
}

// Enabled reports whether the bus holds a live NATS connection.
func (b *Bus) Enabled() bool {
	return b.publisher != nil
}

// PublishSessionEvent fire-and-forgets ev to the session.events subject,
// tagged with sessionID. It never blocks the caller: the actual publish
// happens on its own goroutine, and any failure is only logged.
func (b *Bus) PublishSessionEvent(sessionID string, ev orchestrator.Event) {
	if !b.Enabled() {
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		b.log.Warn("eventbus", "failed to marshal session event", map[string]interface{}{"error": err.Error()})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("session_id", sessionID)
	msg.Metadata.Set("event_type", string(ev.Type))

	go func() {
		if err := b.publisher.Publish(sessionEventsSubject, msg); err != nil {
			b.log.Warn("eventbus", "failed to publish session event", map[string]interface{}{"error": err.Error(), "session_id": sessionID})
		}
	}()
}

// Close releases the underlying NATS connection, if any.
func (b *Bus) Close() {
	if b.nc != nil {
		b.nc.Close()
	}
}

// natsPublisher adapts a raw *nats.Conn to watermill's message.Publisher
// interface. Audit events need no consumer acknowledgment or durability
// guarantee, so this intentionally uses NATS core pub/sub rather than
// JetStream: a dropped audit message never affects a live session.
type natsPublisher struct {
	nc *nats.Conn
}

func (p *natsPublisher) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if err := p.nc.Publish(topic, msg.Payload); err != nil {
			return fmt.Errorf("publishing to %s: %w", topic, err)
		}
	}
	return nil
}

func (p *natsPublisher) Close() error {
	p.nc.Close()
	return nil
}
