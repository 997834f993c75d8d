package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/LQT2201/Book-UIT/internal/order"
	"github.com/LQT2201/Book-UIT/pkg/database"
)

// AuditRepository persists order status changes in PostgreSQL.
type AuditRepository struct {
	pool database.DBTX
}

// NewAuditRepository creates a PostgreSQL-backed audit repository.
func NewAuditRepository(pool database.DBTX) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Record inserts one status change. The id and timestamp are assigned here
// when the caller leaves them zero.
func (r *AuditRepository) Record(ctx context.Context, change *order.StatusChange) error {
	if change.ID == "" {
		change.ID = uuid.New().String()
	}
	if change.ChangedAt.IsZero() {
		change.ChangedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO order_status_audit (id, order_id, old_status, new_status, actor, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		change.ID,
		change.OrderID,
		change.OldStatus,
		change.NewStatus,
		change.Actor,
		change.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("insert status change: %w", err)
	}

	return nil
}

// ListByOrder returns an order's status changes, newest first.
func (r *AuditRepository) ListByOrder(ctx context.Context, orderID string, limit, offset int) ([]order.StatusChange, error) {
	query := `
		SELECT id, order_id, old_status, new_status, actor, changed_at
		FROM order_status_audit
		WHERE order_id = $1
		ORDER BY changed_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, orderID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query status changes: %w", err)
	}
	defer rows.Close()

	var changes []order.StatusChange
	for rows.Next() {
		var c order.StatusChange
		if err := rows.Scan(&c.ID, &c.OrderID, &c.OldStatus, &c.NewStatus, &c.Actor, &c.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan status change: %w", err)
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status changes: %w", err)
	}

	return changes, nil
}

// CountByOrder returns the total number of recorded changes for an order.
func (r *AuditRepository) CountByOrder(ctx context.Context, orderID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM order_status_audit WHERE order_id = $1`, orderID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count status changes: %w", err)
	}
	return count, nil
}
