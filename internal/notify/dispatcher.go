// Package notify delivers order confirmation events to interested
// consumers. Dispatch is queued and best-effort: the checkout request
// path never waits on, or fails because of, a notification.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Dispatcher is the contract consumed by the order service.
type Dispatcher interface {
	// OrderConfirmed enqueues a confirmation event for the order.
	// It never blocks the caller and never returns an error.
	OrderConfirmed(orderID uuid.UUID)

	// Close drains the queue and stops the worker.
	Close() error
}

// event is the payload published to the order.confirmed topic.
type event struct {
	OrderID    string    `json:"order_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// publisher abstracts the Kafka writer for testing.
type publisher interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// kafkaDispatcher publishes order-confirmed events to Kafka from a
// single worker goroutine fed by a buffered queue.
type kafkaDispatcher struct {
	writer  publisher
	queue   chan uuid.UUID
	done    chan struct{}
	timeout time.Duration
	logger  zerolog.Logger
}

// NewKafkaDispatcher creates a dispatcher publishing to the given
// topic. brokers must be non-empty; use NewLogDispatcher when Kafka is
// not configured.
func NewKafkaDispatcher(brokers []string, topic string, logger zerolog.Logger) Dispatcher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return newDispatcher(writer, logger.With().Str("component", "kafka-dispatcher").Logger())
}

func newDispatcher(writer publisher, logger zerolog.Logger) Dispatcher {
	d := &kafkaDispatcher{
		writer:  writer,
		queue:   make(chan uuid.UUID, 256),
		done:    make(chan struct{}),
		timeout: 10 * time.Second,
		logger:  logger,
	}
	go d.run()
	return d
}

// OrderConfirmed enqueues the event. A full queue drops the event with
// a warning rather than blocking the checkout path.
func (d *kafkaDispatcher) OrderConfirmed(orderID uuid.UUID) {
	select {
	case d.queue <- orderID:
	default:
		d.logger.Warn().
			Str("order_id", orderID.String()).
			Msg("notification queue full, event dropped")
	}
}

// run is the worker loop. Publish failures are retried once and then
// dropped with a warning; they are never surfaced to request handlers.
func (d *kafkaDispatcher) run() {
	defer close(d.done)

	for orderID := range d.queue {
		if err := d.publish(orderID); err != nil {
			if err = d.publish(orderID); err != nil {
				d.logger.Warn().
					Err(err).
					Str("order_id", orderID.String()).
					Msg("failed to publish order confirmation")
				continue
			}
		}
		d.logger.Debug().
			Str("order_id", orderID.String()).
			Msg("order confirmation published")
	}
}

func (d *kafkaDispatcher) publish(orderID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	payload, err := json.Marshal(event{OrderID: orderID.String(), OccurredAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	return d.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(orderID.String()),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

// Close stops accepting events, waits for the queue to drain, and
// closes the underlying writer when it supports closing.
func (d *kafkaDispatcher) Close() error {
	close(d.queue)
	<-d.done
	if closer, ok := d.writer.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// logDispatcher is the no-broker fallback: confirmations are only
// logged.
type logDispatcher struct {
	logger zerolog.Logger
}

// NewLogDispatcher creates a dispatcher that records confirmations in
// the log instead of publishing them.
func NewLogDispatcher(logger zerolog.Logger) Dispatcher {
	return &logDispatcher{
		logger: logger.With().Str("component", "log-dispatcher").Logger(),
	}
}

func (d *logDispatcher) OrderConfirmed(orderID uuid.UUID) {
	d.logger.Info().Str("order_id", orderID.String()).Msg("order confirmed")
}

func (d *logDispatcher) Close() error {
	return nil
}
