package realtimeclient

import (
	"sync"
	"time"
)

// fieldValue is one overlaid field stamped with its local arrival time.
type fieldValue[T any] struct {
	value     T
	arrivedAt time.Time
}

func (f *fieldValue[T]) set(value T, arrivedAt time.Time) {
	if f.arrivedAt.After(arrivedAt) {
		return
	}
	f.value = value
	f.arrivedAt = arrivedAt
}

// orderOverlay holds the freshest pushed value of each individual field.
type orderOverlay struct {
	status    *fieldValue[string]
	rider     *fieldValue[*Rider]
	eta       *fieldValue[*time.Time]
	cancelled *fieldValue[CancellationNote]
}

// OverlayStore keeps a per-order overlay of the most recently received
// individual fields. Precedence is last-write-wins per field, never per
// record: an event carrying only a status must not clobber a previously
// known rider.
type OverlayStore struct {
	mu       sync.RWMutex
	overlays map[string]*orderOverlay
}

// NewOverlayStore creates an empty store.
func NewOverlayStore() *OverlayStore {
	return &OverlayStore{overlays: make(map[string]*orderOverlay)}
}

// Apply folds the update's present fields into the order's overlay. Fields
// older than what the overlay already holds are ignored.
func (s *OverlayStore) Apply(update OrderUpdate) {
	if update.OrderID == "" || update.IsEmpty() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	overlay, ok := s.overlays[update.OrderID]
	if !ok {
		overlay = &orderOverlay{}
		s.overlays[update.OrderID] = overlay
	}

	if update.Status != nil {
		if overlay.status == nil {
			overlay.status = &fieldValue[string]{}
		}
		overlay.status.set(*update.Status, update.ArrivedAt)
	}
	if update.Rider != nil {
		if overlay.rider == nil {
			overlay.rider = &fieldValue[*Rider]{}
		}
		rider := *update.Rider
		overlay.rider.set(&rider, update.ArrivedAt)
	}
	if update.EstimatedDeliveryTime != nil {
		if overlay.eta == nil {
			overlay.eta = &fieldValue[*time.Time]{}
		}
		eta := *update.EstimatedDeliveryTime
		overlay.eta.set(&eta, update.ArrivedAt)
	}
	if update.Cancelled != nil {
		if overlay.cancelled == nil {
			overlay.cancelled = &fieldValue[CancellationNote]{}
		}
		overlay.cancelled.set(*update.Cancelled, update.ArrivedAt)
	}
}

// Evict drops the overlay for one order.
func (s *OverlayStore) Evict(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overlays, orderID)
}

// Clear drops every overlay.
func (s *OverlayStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlays = make(map[string]*orderOverlay)
}

// Len reports how many orders currently carry an overlay.
func (s *OverlayStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.overlays)
}

// overlayView is a consistent copy of one order's overlay fields.
type overlayView struct {
	status    *string
	rider     *Rider
	eta       *time.Time
	cancelled *CancellationNote
}

func (v overlayView) isEmpty() bool {
	return v.status == nil && v.rider == nil && v.eta == nil && v.cancelled == nil
}

func (s *OverlayStore) view(orderID string) overlayView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	overlay, ok := s.overlays[orderID]
	if !ok {
		return overlayView{}
	}

	var v overlayView
	if overlay.status != nil {
		status := overlay.status.value
		v.status = &status
	}
	if overlay.rider != nil && overlay.rider.value != nil {
		rider := *overlay.rider.value
		v.rider = &rider
	}
	if overlay.eta != nil && overlay.eta.value != nil {
		eta := *overlay.eta.value
		v.eta = &eta
	}
	if overlay.cancelled != nil {
		cancelled := overlay.cancelled.value
		v.cancelled = &cancelled
	}
	return v
}
