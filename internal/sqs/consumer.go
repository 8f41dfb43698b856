package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

const (
	defaultBatchSize   = 10
	defaultWaitSeconds = 20
	defaultRetryDelay  = 5 * time.Second
)

// ErrMalformedMessage marks a notification that can never be handled.
var ErrMalformedMessage = errors.New("malformed product message")

// ConsumerAPI defines the interface for SQS operations used by Consumer.
type ConsumerAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Handler reacts to one product notification. A returned error leaves the message on the queue.
type Handler func(ctx context.Context, msg ProductMessage) error

// LogNotification writes the notification to the structured log.
func LogNotification(_ context.Context, msg ProductMessage) error {
	slog.Info("product notification",
		slog.String("action", msg.Action),
		slog.Int64("product_id", msg.ProductID),
		slog.String("title", msg.Title),
		slog.Float64("price", msg.Price),
		slog.Int("stock", msg.Stock),
	)
	return nil
}

// ConsumerOption customizes a Consumer.
type ConsumerOption func(*Consumer)

// WithHandler replaces LogNotification as the notification handler.
func WithHandler(h Handler) ConsumerOption {
	return func(c *Consumer) { c.handle = h }
}

// WithBatchSize sets how many messages one receive call asks for (1 to 10).
func WithBatchSize(n int32) ConsumerOption {
	return func(c *Consumer) {
		if n >= 1 && n <= 10 {
			c.batchSize = n
		}
	}
}

// WithWaitTime sets the long polling wait of a receive call.
func WithWaitTime(d time.Duration) ConsumerOption {
	return func(c *Consumer) { c.waitSeconds = int32(d / time.Second) }
}

// WithRetryDelay sets the pause after a failed receive call.
func WithRetryDelay(d time.Duration) ConsumerOption {
	return func(c *Consumer) { c.retryDelay = d }
}

// Consumer reads product notifications from AWS SQS and passes them to a Handler.
// Messages are deleted only after the handler succeeds; malformed ones are left for the redrive policy.
type Consumer struct {
	client      ConsumerAPI
	queueURL    string
	handle      Handler
	batchSize   int32
	waitSeconds int32
	retryDelay  time.Duration
}

// NewConsumer creates a new SQS Consumer with the given client and queue URL.
func NewConsumer(client ConsumerAPI, queueURL string, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		client:      client,
		queueURL:    queueURL,
		handle:      LogNotification,
		batchSize:   defaultBatchSize,
		waitSeconds: defaultWaitSeconds,
		retryDelay:  defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start polls the queue until ctx is cancelled. Receive failures are retried after the retry delay.
func (c *Consumer) Start(ctx context.Context) error {
	slog.Info("sqs consumer started", slog.String("queue_url", c.queueURL), slog.Int("batch_size", int(c.batchSize)))

	for {
		acked, err := c.poll(ctx)
		if ctx.Err() != nil {
			slog.Info("sqs consumer stopped")
			return ctx.Err()
		}
		if err != nil {
			slog.Error("sqs receive failed", slog.Any("err", err), slog.Duration("retry_in", c.retryDelay))
			select {
			case <-ctx.Done():
				slog.Info("sqs consumer stopped")
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
			continue
		}
		if acked > 0 {
			slog.Debug("sqs batch acknowledged", slog.Int("count", acked))
		}
	}
}

// poll receives one batch and returns how many messages were handled and deleted.
func (c *Consumer) poll(ctx context.Context) (int, error) {
	out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(c.queueURL),
		MaxNumberOfMessages:   c.batchSize,
		WaitTimeSeconds:       c.waitSeconds,
		MessageAttributeNames: []string{ActionAttribute},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to receive messages: %w", err)
	}

	acked := 0
	for _, message := range out.Messages {
		id := aws.ToString(message.MessageId)

		msg, err := decode(message)
		if err != nil {
			slog.Warn("skipping malformed notification", slog.String("message_id", id), slog.Any("err", err))
			continue
		}
		if err := c.handle(ctx, msg); err != nil {
			slog.Error("notification handler failed", slog.String("message_id", id),
				slog.Int64("product_id", msg.ProductID), slog.Any("err", err))
			continue
		}
		if err := c.ack(ctx, message); err != nil {
			slog.Error("failed to acknowledge notification", slog.String("message_id", id), slog.Any("err", err))
			continue
		}
		acked++
	}

	return acked, nil
}

// decode parses the body and checks it against the action attribute set by Publisher.
func decode(message types.Message) (ProductMessage, error) {
	var msg ProductMessage
	if message.Body == nil {
		return msg, fmt.Errorf("%w: message body is nil", ErrMalformedMessage)
	}
	if err := json.Unmarshal([]byte(*message.Body), &msg); err != nil {
		return msg, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if msg.Action == "" || msg.ProductID <= 0 {
		return msg, fmt.Errorf("%w: action=%q product_id=%d", ErrMalformedMessage, msg.Action, msg.ProductID)
	}
	if attr, ok := message.MessageAttributes[ActionAttribute]; ok && aws.ToString(attr.StringValue) != msg.Action {
		return msg, fmt.Errorf("%w: action attribute %q does not match body action %q",
			ErrMalformedMessage, aws.ToString(attr.StringValue), msg.Action)
	}
	return msg, nil
}

func (c *Consumer) ack(ctx context.Context, message types.Message) error {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
