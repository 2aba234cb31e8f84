package outbox

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/nazeru/retail-mock-api/pkg/contracts"
	pkgkafka "github.com/nazeru/retail-mock-api/pkg/kafka"
	"github.com/nazeru/retail-mock-api/pkg/logging"
)

// Publisher stores events in the outbox instead of sending them directly.
type Publisher struct {
	store Store
	topic string
}

func NewPublisher(store Store, topic string) *Publisher {
	return &Publisher{store: store, topic: topic}
}

func (p *Publisher) Publish(ctx context.Context, ev contracts.Event) error {
	return p.store.Insert(ctx, ev.EventID, p.topic, ev.Subject, ev)
}

// Relay drains pending outbox rows to Kafka in id order.
type Relay struct {
	store     Store
	writer    pkgkafka.MessageWriter
	log       *logging.Logger
	interval  time.Duration
	batchSize int
}

func NewRelay(store Store, writer pkgkafka.MessageWriter, log *logging.Logger, interval time.Duration) *Relay {
	if interval <= 0 {
		interval = time.Second
	}
	return &Relay{store: store, writer: writer, log: log, interval: interval, batchSize: 100}
}

// Run polls until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
			r.log.Error(logging.Fields{Step: "outbox_relay", Status: "error", Err: err, Message: "outbox flush failed"})
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Flush sends one batch and returns how many rows were marked sent. It stops
// at the first failed write so ordering is kept.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	recs, err := r.store.FetchPending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, rec := range recs {
		msg := kafka.Message{Topic: rec.Topic, Key: []byte(rec.Key), Value: rec.Payload, Time: rec.CreatedAt}
		if err := r.writer.WriteMessages(ctx, msg); err != nil {
			return sent, err
		}
		if err := r.store.MarkSent(ctx, rec.ID); err != nil {
			return sent, err
		}
		sent++
		r.log.Log(logging.Fields{EventID: rec.EventID, Step: "outbox_relay", Status: "sent", Message: "outbox event relayed"})
	}
	return sent, nil
}
