package realtimeclient

import (
	"encoding/json"
	"time"
)

// Wire event names pushed by the server.
const (
	EventOrderUpdated      = "ORDER_UPDATED"
	EventOrderStatusUpdate = "order_status_update"
	EventRiderAssigned     = "rider_assigned"
	EventOrderCancelled    = "order_cancelled"
	EventETAUpdate         = "eta_update"
)

// Envelope is one received frame: the room it was published to, the event
// name, and the raw payload.
type Envelope struct {
	Channel   string          `json:"channel"`
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

type statusUpdatePayload struct {
	OrderID string  `json:"orderId"`
	Status  string  `json:"status"`
	RiderID *string `json:"riderId,omitempty"`
}

type orderUpdatedPayload struct {
	OrderID string         `json:"orderId"`
	Order   map[string]any `json:"order"`
}

type riderAssignedPayload struct {
	OrderID string `json:"orderId"`
	Rider   Rider  `json:"rider"`
}

type orderCancelledPayload struct {
	OrderID string  `json:"orderId"`
	Reason  *string `json:"reason,omitempty"`
}

type etaUpdatePayload struct {
	OrderID string    `json:"orderId"`
	ETA     time.Time `json:"eta"`
}

// UpdateFromEnvelope decodes a frame into the typed partial update. Unknown
// events and events carrying no overlay fields return an empty update; the
// caller checks IsEmpty before applying.
func UpdateFromEnvelope(envelope Envelope, arrivedAt time.Time) (OrderUpdate, error) {
	switch envelope.Event {
	case EventOrderStatusUpdate:
		var p statusUpdatePayload
		if err := json.Unmarshal(envelope.Payload, &p); err != nil {
			return OrderUpdate{}, err
		}
		return OrderUpdate{
			OrderID:   p.OrderID,
			Status:    &p.Status,
			ArrivedAt: arrivedAt,
		}, nil

	case EventRiderAssigned:
		var p riderAssignedPayload
		if err := json.Unmarshal(envelope.Payload, &p); err != nil {
			return OrderUpdate{}, err
		}
		return OrderUpdate{
			OrderID:   p.OrderID,
			Rider:     &p.Rider,
			ArrivedAt: arrivedAt,
		}, nil

	case EventETAUpdate:
		var p etaUpdatePayload
		if err := json.Unmarshal(envelope.Payload, &p); err != nil {
			return OrderUpdate{}, err
		}
		return OrderUpdate{
			OrderID:               p.OrderID,
			EstimatedDeliveryTime: &p.ETA,
			ArrivedAt:             arrivedAt,
		}, nil

	case EventOrderCancelled:
		var p orderCancelledPayload
		if err := json.Unmarshal(envelope.Payload, &p); err != nil {
			return OrderUpdate{}, err
		}
		status := "CANCELLED"
		return OrderUpdate{
			OrderID:   p.OrderID,
			Status:    &status,
			Cancelled: &CancellationNote{Reason: p.Reason},
			ArrivedAt: arrivedAt,
		}, nil

	case EventOrderUpdated:
		var p orderUpdatedPayload
		if err := json.Unmarshal(envelope.Payload, &p); err != nil {
			return OrderUpdate{}, err
		}
		update := OrderUpdate{OrderID: p.OrderID, ArrivedAt: arrivedAt}
		if status, ok := p.Order["status"].(string); ok {
			update.Status = &status
		}
		return update, nil

	default:
		return OrderUpdate{}, nil
	}
}
