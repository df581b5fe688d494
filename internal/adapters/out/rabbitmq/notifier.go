package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"fulfillment/internal/core/ports"
)

// Notifier publishes push notifications through the delayed-message exchange.
type Notifier struct {
	client *Client
}

// NewNotifier creates a notification publisher over the shared client.
func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

var _ ports.Notifier = (*Notifier)(nil)

// Notify publishes the notification for immediate delivery.
func (n *Notifier) Notify(ctx context.Context, notification ports.Notification) error {
	return n.publish(ctx, notification, 0)
}

// NotifyDelayed publishes the notification with an x-delay header so the
// broker holds it back for the given duration before routing.
func (n *Notifier) NotifyDelayed(ctx context.Context, notification ports.Notification, delay time.Duration) error {
	return n.publish(ctx, notification, delay)
}

func (n *Notifier) publish(ctx context.Context, notification ports.Notification, delay time.Duration) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now(),
		Body:         body,
	}
	if delay > 0 {
		msg.Headers = amqp.Table{"x-delay": delay.Milliseconds()}
	}

	err = n.client.channel.PublishWithContext(ctx,
		notificationDelayExchange,
		NotificationQueueName, // routing key
		false,                 // mandatory
		false,                 // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("publish notification %s: %w", notification.ID, err)
	}

	return nil
}
