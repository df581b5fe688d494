package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
)

// deliveryJobMessage is the wire shape of a pickup offer. The consumer owns
// courier matching, so the payload carries everything needed to rank and
// present the offer without calling back.
type deliveryJobMessage struct {
	OrderID         string    `json:"orderId"`
	OrderNumber     string    `json:"orderNumber"`
	VendorID        string    `json:"vendorId"`
	VendorName      string    `json:"vendorName"`
	CustomerID      string    `json:"customerId"`
	CustomerName    string    `json:"customerName"`
	PickupAddress   string    `json:"pickupAddress"`
	PickupLat       float64   `json:"pickupLat"`
	PickupLon       float64   `json:"pickupLon"`
	DeliveryAddress string    `json:"deliveryAddress"`
	DeliveryLat     float64   `json:"deliveryLat"`
	DeliveryLon     float64   `json:"deliveryLon"`
	DeliveryFee     int64     `json:"deliveryFee"`
	DistanceKm      float64   `json:"distanceKm"`
	ItemSummary     string    `json:"itemSummary"`
	CreatedAt       time.Time `json:"createdAt"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

// DispatchQueue publishes pickup offers to the durable dispatch queue.
type DispatchQueue struct {
	client *Client
}

// NewDispatchQueue creates a dispatch queue publisher over the shared client.
func NewDispatchQueue(client *Client) *DispatchQueue {
	return &DispatchQueue{client: client}
}

var _ ports.DispatchQueue = (*DispatchQueue)(nil)

// Enqueue publishes the offer. Persistent delivery plus a durable queue gives
// at-least-once handoff to the courier matcher.
func (q *DispatchQueue) Enqueue(ctx context.Context, job services.DeliveryJob) error {
	body, err := json.Marshal(deliveryJobMessage{
		OrderID:         job.OrderID.String(),
		OrderNumber:     job.OrderNumber,
		VendorID:        job.VendorID.String(),
		VendorName:      job.VendorName,
		CustomerID:      job.CustomerID.String(),
		CustomerName:    job.CustomerName,
		PickupAddress:   job.PickupAddress,
		PickupLat:       job.PickupLocation.Lat(),
		PickupLon:       job.PickupLocation.Lon(),
		DeliveryAddress: job.DeliveryAddress,
		DeliveryLat:     job.DeliveryLocation.Lat(),
		DeliveryLon:     job.DeliveryLocation.Lon(),
		DeliveryFee:     job.DeliveryFee.Int64(),
		DistanceKm:      job.DistanceKm,
		ItemSummary:     job.ItemSummary,
		CreatedAt:       job.CreatedAt,
		ExpiresAt:       job.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal delivery job: %w", err)
	}

	err = q.client.channel.PublishWithContext(ctx,
		"",                // default exchange
		DispatchQueueName, // routing key
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Timestamp:    time.Now(),
			Expiration:   fmt.Sprintf("%d", time.Until(job.ExpiresAt).Milliseconds()),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("enqueue delivery job %s: %w", job.OrderID, err)
	}

	return nil
}
