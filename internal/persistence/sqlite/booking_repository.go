package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/campus-booking/internal/persistence"
)

// Calendar days are stored as date-only strings and decoded back into the
// booking zone. Mirrors the zone pinning of the recurrence expander.
var ict = time.FixedZone("ICT", 7*60*60)

// BookingRepository implements persistence.BookingRepository on SQLite.
type BookingRepository struct {
	pool *ConnectionPool
}

// NewBookingRepository wires a booking repository to the shared pool.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

const bookingColumns = `id, resource_id, date, slot_id, purpose, status,
	requester_id, requester_name, requester_role, recurrence_group_id,
	recurrence_pattern, approver_id, rejection_reason, cancel_reason,
	created_at, updated_at`

// CreateBooking inserts a booking row. The partial unique index on
// (resource_id, date, slot_id) rejects a second non-cancelled booking in
// the same cell with persistence.ErrDuplicate.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.DB().ExecContext(ctx, `
INSERT INTO bookings (`+bookingColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID,
		booking.ResourceID,
		encodeDate(booking.Date),
		booking.SlotID,
		booking.Purpose,
		string(booking.Status),
		booking.RequesterID,
		booking.RequesterName,
		booking.RequesterRole,
		nullString(booking.RecurrenceGroupID),
		nullString(booking.RecurrencePattern),
		nullString(booking.ApproverID),
		nullString(booking.RejectionReason),
		nullString(booking.CancelReason),
		encodeTime(booking.CreatedAt),
		encodeTime(booking.UpdatedAt),
	)
	return mapError(err)
}

// GetBooking retrieves a booking by id.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	row := r.pool.DB().QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	return scanBooking(row)
}

// UpdateBooking rewrites the mutable columns of an existing booking.
func (r *BookingRepository) UpdateBooking(ctx context.Context, booking persistence.Booking) error {
	result, err := r.pool.DB().ExecContext(ctx, `
UPDATE bookings
SET status = ?, approver_id = ?, rejection_reason = ?, cancel_reason = ?, updated_at = ?
WHERE id = ?`,
		string(booking.Status),
		nullString(booking.ApproverID),
		nullString(booking.RejectionReason),
		nullString(booking.CancelReason),
		encodeTime(booking.UpdatedAt),
		booking.ID,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// FindActiveBooking returns the non-cancelled booking occupying a cell.
func (r *BookingRepository) FindActiveBooking(ctx context.Context, resourceID string, date time.Time, slotID string) (persistence.Booking, error) {
	row := r.pool.DB().QueryRowContext(ctx, `
SELECT `+bookingColumns+`
FROM bookings
WHERE resource_id = ? AND date = ? AND slot_id = ? AND status != ?`,
		resourceID, encodeDate(date), slotID, string(persistence.BookingCancelled))
	return scanBooking(row)
}

// ListByRecurrenceGroup returns the members of a recurrence group ordered
// by date then slot id.
func (r *BookingRepository) ListByRecurrenceGroup(ctx context.Context, groupID string) ([]persistence.Booking, error) {
	rows, err := r.pool.DB().QueryContext(ctx, `
SELECT `+bookingColumns+`
FROM bookings
WHERE recurrence_group_id = ?
ORDER BY date, slot_id`, groupID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListByRequester returns all bookings submitted by one user, newest first.
func (r *BookingRepository) ListByRequester(ctx context.Context, requesterID string) ([]persistence.Booking, error) {
	rows, err := r.pool.DB().QueryContext(ctx, `
SELECT `+bookingColumns+`
FROM bookings
WHERE requester_id = ?
ORDER BY date DESC, slot_id`, requesterID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var (
		booking                    persistence.Booking
		date, createdAt, updatedAt string
		status                     string
		groupID, pattern, approver sql.NullString
		rejectReason, cancelReason sql.NullString
	)

	err := row.Scan(
		&booking.ID,
		&booking.ResourceID,
		&date,
		&booking.SlotID,
		&booking.Purpose,
		&status,
		&booking.RequesterID,
		&booking.RequesterName,
		&booking.RequesterRole,
		&groupID,
		&pattern,
		&approver,
		&rejectReason,
		&cancelReason,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Booking{}, mapError(err)
	}

	booking.Status = persistence.BookingStatus(status)
	booking.RecurrenceGroupID = stringPtr(groupID)
	booking.RecurrencePattern = stringPtr(pattern)
	booking.ApproverID = stringPtr(approver)
	booking.RejectionReason = stringPtr(rejectReason)
	booking.CancelReason = stringPtr(cancelReason)

	if booking.Date, err = decodeDate(date, ict); err != nil {
		return persistence.Booking{}, err
	}
	if booking.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.Booking{}, err
	}
	if booking.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.Booking{}, err
	}
	return booking, nil
}

func collectBookings(rows *sql.Rows) ([]persistence.Booking, error) {
	bookings := make([]persistence.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return bookings, nil
}
