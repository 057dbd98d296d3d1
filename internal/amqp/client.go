package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"enoteca/internal/core"
)

// Circuit breaker states.
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type Client struct {
	url          string
	exchangeName string
	queueName    string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := setup(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.mu.Lock()
	c.closeLocked()
	c.conn, c.channel = conn, channel
	c.mu.Unlock()
	return nil
}

// closeLocked releases the current channel and connection. Errors from an
// already dead handle are ignored.
func (c *Client) closeLocked() {
	if c.channel != nil && !c.channel.IsClosed() {
		_ = c.channel.Close()
	}
	if c.conn != nil && !c.conn.IsClosed() {
		_ = c.conn.Close()
	}
	c.channel, c.conn = nil, nil
}

func setup(ch *amqp091.Channel, exchange, queue string) error {
	err := ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key equals the queue name on a direct exchange.
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PublishRecordSubmitted publishes a record submitted message.
func (c *Client) PublishRecordSubmitted(ctx context.Context, date core.DateKey, step core.Step) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return fmt.Errorf("publish %s: %w", date, ErrCircuitOpen)
	}

	body, err := NewRecordSubmittedMessage(date, step).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.publish(ctx, body)
	if err != nil && isConnectionError(err) {
		slog.WarnContext(ctx, "AMQP connection lost, reconnecting", "error", err)
		if rerr := c.connect(); rerr == nil {
			err = c.publish(ctx, body)
		}
	}
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	slog.InfoContext(ctx, "Published record submitted message",
		"date", date,
		"step", step,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

func (c *Client) publish(ctx context.Context, body []byte) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil {
		return errors.New("channel not open: connection closed")
	}
	return ch.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// ConsumeRecordSubmitted consumes record submitted messages until ctx is
// done, reconnecting with exponential backoff when the broker goes away.
func (c *Client) ConsumeRecordSubmitted(ctx context.Context, handler func(context.Context, *RecordSubmittedMessage) error) error {
	attempt := 0
	for {
		err := c.consume(ctx, handler)
		if ctx.Err() != nil {
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		}
		if !isConnectionError(err) {
			return err
		}

		wait := exponentialBackoff(attempt)
		slog.WarnContext(ctx, "Consumer disconnected, retrying", "error", err, "attempt", attempt, "wait", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		if err := c.connect(); err != nil {
			attempt++
			continue
		}
		attempt = 0
	}
}

func (c *Client) consume(ctx context.Context, handler func(context.Context, *RecordSubmittedMessage) error) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil {
		return errors.New("channel not open: connection closed")
	}

	msgs, err := ch.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming record submitted messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}

			msg, err := RecordSubmittedMessageFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal message", "error", err)
				delivery.Nack(false, false)
				continue
			}

			if err := handler(ctx, msg); err != nil {
				slog.ErrorContext(ctx, "Failed to handle message",
					"error", err,
					"date", msg.Date,
					"step", msg.Step)
				delivery.Nack(false, true)
				continue
			}

			delivery.Ack(false)
			slog.InfoContext(ctx, "Processed record submitted message", "date", msg.Date, "step", msg.Step)
		}
	}
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.StoreInt32(&c.state, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "closed", "eof", "broken pipe"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
