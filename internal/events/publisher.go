// Package events publishes order and withdrawal lifecycle events to NATS for
// downstream consumers (notifications, analytics). Delivery of those
// notifications is out of scope here; publishing is fire-and-forget.
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/haulport/logistics-backend/pkg/logger"
)

// Subjects for lifecycle events
const (
	SubjectOrderClaimed   = "orders.claimed"
	SubjectOrderStarted   = "orders.started"
	SubjectOrderCompleted = "orders.completed"
	SubjectOrderCancelled = "orders.cancelled"
	SubjectWithdrawalPaid = "withdrawals.paid"
)

// Publisher publishes domain events
type Publisher interface {
	Publish(subject string, payload interface{})
}

// Event is the wire envelope for published events
type Event struct {
	Subject    string      `json:"subject"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// NATSPublisher publishes events to a NATS connection
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to NATS and returns a publisher
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{conn: conn}, nil
}

// Publish sends an event. Failures are logged, never propagated: event
// delivery must not affect the transactional outcome already committed.
func (p *NATSPublisher) Publish(subject string, payload interface{}) {
	data, err := json.Marshal(Event{Subject: subject, OccurredAt: time.Now(), Payload: payload})
	if err != nil {
		logger.Error("failed to marshal event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		logger.Error("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

// Close drains the NATS connection
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}

// NoopPublisher drops all events. Used when NATS is disabled and in tests.
type NoopPublisher struct{}

// Publish is a no-op
func (NoopPublisher) Publish(subject string, payload interface{}) {}
