package realtimeclient

import (
	"sync"
	"time"
)

// OrderSnapshot is the authoritative order state as last fetched from the
// server. Fields mirror the order projection the REST endpoints return.
type OrderSnapshot struct {
	ID                    string     `json:"id"`
	OrderNumber           string     `json:"orderNumber"`
	Status                string     `json:"status"`
	VendorID              string     `json:"vendorId"`
	VendorName            string     `json:"vendorName"`
	Rider                 *Rider     `json:"rider,omitempty"`
	Total                 int64      `json:"total"`
	EstimatedDeliveryTime *time.Time `json:"estimatedDeliveryTime,omitempty"`
	CancellationReason    *string    `json:"cancellationReason,omitempty"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// OrderView is the effective state for display: the snapshot with every
// overlaid field substituted in. IsRealtime reports whether any pushed field
// is part of the view.
type OrderView struct {
	OrderSnapshot
	IsRealtime bool
}

// Reconciler combines cached authoritative snapshots with the overlay store.
// Both sides live independently: re-fetching an order replaces its snapshot
// but leaves the overlay alone, and pushed events never touch the snapshot.
type Reconciler struct {
	mu        sync.RWMutex
	snapshots map[string]OrderSnapshot
	overlay   *OverlayStore
}

// NewReconciler creates a reconciler around the given overlay store.
// Pass nil to use a fresh store.
func NewReconciler(overlay *OverlayStore) *Reconciler {
	if overlay == nil {
		overlay = NewOverlayStore()
	}
	return &Reconciler{
		snapshots: make(map[string]OrderSnapshot),
		overlay:   overlay,
	}
}

// Overlay exposes the underlying store so a connection can feed events in.
func (r *Reconciler) Overlay() *OverlayStore {
	return r.overlay
}

// SetSnapshot replaces the cached snapshot for an order. It never merges:
// the fresh authoritative state wins over whatever was cached, while overlay
// fields persist until a newer event supersedes them.
func (r *Reconciler) SetSnapshot(snapshot OrderSnapshot) {
	if snapshot.ID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[snapshot.ID] = snapshot
}

// Apply feeds a pushed update into the overlay.
func (r *Reconciler) Apply(update OrderUpdate) {
	r.overlay.Apply(update)
}

// View returns the effective state for one order. The second return is false
// when the order was never fetched.
func (r *Reconciler) View(orderID string) (OrderView, bool) {
	r.mu.RLock()
	snapshot, ok := r.snapshots[orderID]
	r.mu.RUnlock()
	if !ok {
		return OrderView{}, false
	}

	view := OrderView{OrderSnapshot: snapshot}

	overlay := r.overlay.view(orderID)
	if overlay.isEmpty() {
		return view, true
	}

	view.IsRealtime = true
	if overlay.status != nil {
		view.Status = *overlay.status
	}
	if overlay.rider != nil {
		rider := *overlay.rider
		view.Rider = &rider
	}
	if overlay.eta != nil {
		eta := *overlay.eta
		view.EstimatedDeliveryTime = &eta
	}
	if overlay.cancelled != nil && overlay.cancelled.Reason != nil {
		reason := *overlay.cancelled.Reason
		view.CancellationReason = &reason
	}
	return view, true
}

// Evict drops an order's snapshot and overlay, used when the client stops
// tracking a stale order.
func (r *Reconciler) Evict(orderID string) {
	r.mu.Lock()
	delete(r.snapshots, orderID)
	r.mu.Unlock()
	r.overlay.Evict(orderID)
}
