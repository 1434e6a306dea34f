package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Client publishes and consumes ledger entry events on a direct exchange.
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key matches the queue name on a direct exchange.
	err = c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishEntryEvent publishes a ledger entry event as a persistent message.
func (c *Client) PublishEntryEvent(ctx context.Context, event *EntryEvent) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
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
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	slog.InfoContext(ctx, "Published ledger entry event",
		"event_id", event.EventID,
		"action", event.Action,
		"transaction_id", event.TransactionID,
		"exchange", c.exchangeName,
		"queue", c.queueName)

	return nil
}

// ConsumeEntryEvents delivers entry events to handler until ctx is done.
// A handler error nacks the delivery back onto the queue; a malformed
// message is rejected without requeue.
func (c *Client) ConsumeEntryEvents(ctx context.Context, handler func(*EntryEvent) error) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (manual ack below)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming ledger entry events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping event consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			event, err := EntryEventFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal entry event", "error", err)
				delivery.Nack(false, false)
				continue
			}

			if err := handler(event); err != nil {
				slog.ErrorContext(ctx, "Failed to handle entry event",
					"error", err,
					"event_id", event.EventID,
					"transaction_id", event.TransactionID)
				delivery.Nack(false, true)
				continue
			}

			delivery.Ack(false)
		}
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
