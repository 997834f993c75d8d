package order

import "time"

// StatusChange is one entry in an order's status audit trail. Written on
// every successful admin status update.
type StatusChange struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	Actor     string    `json:"actor"`
	ChangedAt time.Time `json:"changedAt"`
}
