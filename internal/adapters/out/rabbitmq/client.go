// Package rabbitmq provides the AMQP-backed implementations of the dispatch
// queue and notification ports. Pickup offers go through a durable queue the
// courier matcher consumes; notifications go through a delayed-message
// exchange so they can trail the transition that caused them.
package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DispatchQueueName is the durable queue pickup offers are published to.
	DispatchQueueName = "delivery_jobs"

	// NotificationQueueName is the durable queue notifications are drained from.
	NotificationQueueName = "notifications"

	// notificationDelayExchange requires the rabbitmq_delayed_message_exchange
	// plugin. Messages carry an x-delay header and are routed after it elapses.
	notificationDelayExchange = "notifications.delayed"
)

// Client owns one AMQP connection and channel shared by the publishers.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewClient dials the broker and declares the topology both publishers rely on.
func NewClient(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{conn: conn, channel: channel}
	if err := client.declareTopology(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

func (c *Client) declareTopology() error {
	if _, err := c.channel.QueueDeclare(
		DispatchQueueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare dispatch queue: %w", err)
	}

	if err := c.channel.ExchangeDeclare(
		notificationDelayExchange,
		"x-delayed-message",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		amqp.Table{"x-delayed-type": "direct"},
	); err != nil {
		return fmt.Errorf("declare delayed exchange: %w", err)
	}

	if _, err := c.channel.QueueDeclare(
		NotificationQueueName,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare notification queue: %w", err)
	}

	if err := c.channel.QueueBind(
		NotificationQueueName,
		NotificationQueueName, // routing key
		notificationDelayExchange,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("bind notification queue: %w", err)
	}

	return nil
}

// Close releases the channel and connection.
func (c *Client) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
