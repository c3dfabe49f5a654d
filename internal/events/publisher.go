// Package events publishes marketplace events to Kafka. Publishing is
// best-effort and happens only after the database transaction has committed;
// the checkout transactor itself performs no external I/O.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventOrderPlaced is emitted once per committed checkout.
const EventOrderPlaced = "OrderPlaced"

// Envelope wraps every published event with routing metadata.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Producer   string          `json:"producer"`
	Payload    json.RawMessage `json:"payload"`
}

// OrderLine is one committed order row inside an OrderPlaced payload.
type OrderLine struct {
	OrderID    string `json:"order_id"`
	VIN        string `json:"vin"`
	Quantity   int    `json:"quantity"`
	TotalPrice string `json:"total_price"`
}

// OrderPlacedPayload describes a committed checkout.
type OrderPlacedPayload struct {
	BuyerID string      `json:"buyer_id"`
	Lines   []OrderLine `json:"lines"`
}

// Publisher writes events to a Kafka topic. A nil Publisher is valid and
// drops all events, so callers need no configuration checks.
type Publisher struct {
	w  *kafka.Writer
	lg *zap.Logger
}

// NewPublisher creates a Publisher for the given brokers and topic.
// It returns nil when brokers is empty, disabling publishing.
func NewPublisher(brokers []string, topic string, lg *zap.Logger) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	return &Publisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        true,
			Completion: func(_ []kafka.Message, err error) {
				if err != nil {
					lg.Warn("event publish failed", zap.Error(err))
				}
			},
		},
		lg: lg,
	}
}

// OrderPlaced publishes an OrderPlaced event keyed by buyer ID. Errors are
// logged, never returned: a lost event must not fail a committed checkout.
func (p *Publisher) OrderPlaced(ctx context.Context, payload OrderPlacedPayload) {
	if p == nil {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		p.lg.Warn("marshal order event", zap.Error(err))
		return
	}
	env, err := json.Marshal(Envelope{
		EventID:    uuid.New().String(),
		EventType:  EventOrderPlaced,
		OccurredAt: time.Now().UTC(),
		Producer:   "parts-market-api",
		Payload:    raw,
	})
	if err != nil {
		p.lg.Warn("marshal event envelope", zap.Error(err))
		return
	}

	if err := p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.BuyerID),
		Value: env,
	}); err != nil {
		p.lg.Warn("publish order event", zap.Error(err))
	}
}

// Close flushes buffered messages and releases writer resources.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.w.Close()
}
