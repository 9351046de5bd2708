package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/campus-booking/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Pool      *sqlite.ConnectionPool
	Bookings  *sqlite.BookingRepository
	Resources *sqlite.ResourceRepository
	Staff     *sqlite.StaffRepository
	Tasks     *sqlite.TaskRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness over a migrated temporary
// database file. A cleanup callback is registered with the testing.TB, so
// calling Close is optional.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "booking.db")

	pool, err := sqlite.NewConnectionPool(sqlite.DefaultConfig(path))
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate database: %v", err)
	}

	harness := &SQLiteHarness{
		Pool:      pool,
		Bookings:  sqlite.NewBookingRepository(pool),
		Resources: sqlite.NewResourceRepository(pool),
		Staff:     sqlite.NewStaffRepository(pool),
		Tasks:     sqlite.NewTaskRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
