package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// NotificationTarget identifies which kind of principal a notification goes to.
type NotificationTarget string

const (
	NotifyCustomer NotificationTarget = "customer"
	NotifyVendor   NotificationTarget = "vendor"
	NotifyRider    NotificationTarget = "rider"
)

// Notification is the message handed to the notification collaborator.
// Delivery is best-effort and decoupled from the transition that produced it.
type Notification struct {
	ID         kernel.UUID        `json:"id"`
	TargetType NotificationTarget `json:"targetType"`
	TargetID   kernel.UUID        `json:"targetId"`
	Type       string             `json:"type"`
	Title      string             `json:"title"`
	Message    string             `json:"message"`
	Data       map[string]any     `json:"data,omitempty"`
	Priority   string             `json:"priority"`
	Timestamp  time.Time          `json:"timestamp"`
}

// Notifier enqueues notifications for asynchronous delivery.
type Notifier interface {
	// Notify enqueues a notification for immediate delivery.
	Notify(ctx context.Context, notification Notification) error

	// NotifyDelayed enqueues a notification the broker holds back for delay
	// before handing it to consumers.
	NotifyDelayed(ctx context.Context, notification Notification, delay time.Duration) error
}
