package database

import (
	"fmt"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

// NewMockPool creates a pgxmock pool that satisfies DBTX, letting repository
// tests (the order status audit repository in particular) run without a live
// PostgreSQL. Finish each test with ExpectationsWereMet.
func NewMockPool() (pgxmock.PgxPoolIface, error) {
	pool, err := pgxmock.NewPool()
	if err != nil {
		return nil, fmt.Errorf("create mock pool: %w", err)
	}
	return pool, nil
}
