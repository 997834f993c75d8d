package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LQT2201/Book-UIT/internal/order"
	"github.com/LQT2201/Book-UIT/pkg/database"
)

func newTestRepo(t *testing.T) (*AuditRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewAuditRepository(mock), mock
}

func TestRecord(t *testing.T) {
	repo, mock := newTestRepo(t)

	change := &order.StatusChange{
		OrderID:   "ord-1",
		OldStatus: string(order.StatusProcessing),
		NewStatus: string(order.StatusShipping),
		Actor:     "admin",
	}

	mock.ExpectExec("INSERT INTO order_status_audit").
		WithArgs(pgxmock.AnyArg(), "ord-1", "Đang xử lý", "Đang giao", "admin", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Record(context.Background(), change))
	assert.NotEmpty(t, change.ID, "id must be assigned")
	assert.False(t, change.ChangedAt.IsZero(), "timestamp must be assigned")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_KeepsProvidedID(t *testing.T) {
	repo, mock := newTestRepo(t)

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	change := &order.StatusChange{
		ID:        "audit-1",
		OrderID:   "ord-1",
		NewStatus: string(order.StatusDelivered),
		Actor:     "admin",
		ChangedAt: at,
	}

	mock.ExpectExec("INSERT INTO order_status_audit").
		WithArgs("audit-1", "ord-1", "", "Đã giao", "admin", at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Record(context.Background(), change))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_ExecError(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("INSERT INTO order_status_audit").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	err := repo.Record(context.Background(), &order.StatusChange{OrderID: "ord-1"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOrder(t *testing.T) {
	repo, mock := newTestRepo(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "order_id", "old_status", "new_status", "actor", "changed_at"}).
		AddRow("a2", "ord-1", "Đang giao", "Đã giao", "admin", now).
		AddRow("a1", "ord-1", "Đang xử lý", "Đang giao", "admin", now.Add(-time.Hour))

	mock.ExpectQuery("SELECT id, order_id, old_status, new_status, actor, changed_at").
		WithArgs("ord-1", 20, 0).
		WillReturnRows(rows)

	changes, err := repo.ListByOrder(context.Background(), "ord-1", 20, 0)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "Đã giao", changes[0].NewStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOrder_Empty(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT id, order_id, old_status, new_status, actor, changed_at").
		WithArgs("ord-9", 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "old_status", "new_status", "actor", "changed_at"}))

	changes, err := repo.ListByOrder(context.Background(), "ord-9", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, changes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByOrder(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("ord-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(5))

	count, err := repo.CountByOrder(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
