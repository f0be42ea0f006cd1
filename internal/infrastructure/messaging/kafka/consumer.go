package kafka

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"sync/atomic"

	"github.com/segmentio/kafka-go"

	"github.com/wirkancil/markintel/internal/config"
	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/logging"
	"github.com/wirkancil/markintel/pkg/errors"
)

var ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")

// Handler processes one decoded event. A returned error leaves the
// message uncommitted so it is redelivered.
type Handler func(ctx context.Context, env *EventEnvelope) error

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer runs a group-consumer loop over one topic.
type Consumer struct {
	reader  ReaderInterface
	handler Handler
	logger  logging.Logger
	running atomic.Bool
}

// NewConsumer subscribes to topic as part of the configured consumer
// group.
func NewConsumer(cfg config.KafkaConfig, topic string, handler Handler, log logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers are required")
	}
	if cfg.ConsumerGroup == "" {
		return nil, errors.New(errors.ErrCodeValidation, "kafka consumer group is required")
	}
	if handler == nil {
		return nil, errors.New(errors.ErrCodeValidation, "handler is required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.ConsumerGroup,
		Topic:       topic,
		StartOffset: kafka.FirstOffset,
	})
	return &Consumer{
		reader:  reader,
		handler: handler,
		logger:  log.Named("kafka_consumer").With(logging.String("topic", topic)),
	}, nil
}

// NewConsumerWithReader builds a consumer over an existing reader, used
// in tests.
func NewConsumerWithReader(r ReaderInterface, handler Handler, log logging.Logger) *Consumer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Consumer{reader: r, handler: handler, logger: log.Named("kafka_consumer")}
}

// Run consumes until ctx is cancelled. Messages are committed only
// after the handler succeeds; handler errors are logged and the message
// stays uncommitted for redelivery. Undecodable messages are committed
// and dropped since redelivery cannot fix them.
func (c *Consumer) Run(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	defer c.running.Store(false)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || stderrors.Is(err, io.EOF) {
				return nil
			}
			return errors.Wrap(err, errors.ErrCodeMessageQueueError, "failed to fetch message")
		}

		var env EventEnvelope
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			c.logger.Warn("dropping undecodable message",
				logging.Int64("offset", msg.Offset),
				logging.Err(err))
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				return errors.Wrap(err, errors.ErrCodeMessageQueueError, "failed to commit message")
			}
			continue
		}

		if err := c.handler(ctx, &env); err != nil {
			c.logger.Error("event handler failed",
				logging.String("event_type", env.EventType),
				logging.String("event_id", env.EventID),
				logging.Err(err))
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return errors.Wrap(err, errors.ErrCodeMessageQueueError, "failed to commit message")
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
