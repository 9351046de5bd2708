package sqlite

import (
	"context"
	"time"

	"github.com/example/campus-booking/internal/persistence"
)

// ResourceRepository implements persistence.ResourceRepository on SQLite.
type ResourceRepository struct {
	pool *ConnectionPool
}

// NewResourceRepository wires a resource repository to the shared pool.
func NewResourceRepository(pool *ConnectionPool) *ResourceRepository {
	return &ResourceRepository{pool: pool}
}

// CreateResource inserts a catalog entry.
func (r *ResourceRepository) CreateResource(ctx context.Context, resource persistence.Resource) error {
	if resource.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.DB().ExecContext(ctx, `
INSERT INTO resources (id, name, category, capacity, site_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		resource.ID,
		resource.Name,
		resource.Category,
		resource.Capacity,
		resource.SiteID,
		encodeTime(resource.CreatedAt),
		encodeTime(resource.UpdatedAt),
	)
	return mapError(err)
}

// GetResource retrieves a catalog entry by id.
func (r *ResourceRepository) GetResource(ctx context.Context, id string) (persistence.Resource, error) {
	row := r.pool.DB().QueryRowContext(ctx, `
SELECT id, name, category, capacity, site_id, created_at, updated_at
FROM resources WHERE id = ?`, id)
	return scanResource(row)
}

// ListResources returns the catalog ordered by name then id.
func (r *ResourceRepository) ListResources(ctx context.Context) ([]persistence.Resource, error) {
	rows, err := r.pool.DB().QueryContext(ctx, `
SELECT id, name, category, capacity, site_id, created_at, updated_at
FROM resources ORDER BY name, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	resources := make([]persistence.Resource, 0)
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return resources, nil
}

// FindAlternative returns the best free resource for a cell: same category,
// smallest sufficient capacity, lowest id. The free check excludes cancelled
// bookings, matching the active-cell unique index.
func (r *ResourceRepository) FindAlternative(ctx context.Context, category string, minCapacity int, excludingID string, date time.Time, slotID string) (persistence.Resource, error) {
	row := r.pool.DB().QueryRowContext(ctx, `
SELECT r.id, r.name, r.category, r.capacity, r.site_id, r.created_at, r.updated_at
FROM resources r
WHERE r.category = ?
  AND r.capacity >= ?
  AND r.id != ?
  AND NOT EXISTS (
	SELECT 1 FROM bookings b
	WHERE b.resource_id = r.id AND b.date = ? AND b.slot_id = ? AND b.status != ?
  )
ORDER BY r.capacity, r.id
LIMIT 1`,
		category,
		minCapacity,
		excludingID,
		encodeDate(date),
		slotID,
		string(persistence.BookingCancelled),
	)
	return scanResource(row)
}

// CreateSlot inserts a daily time slot.
func (r *ResourceRepository) CreateSlot(ctx context.Context, slot persistence.Slot) error {
	if slot.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.DB().ExecContext(ctx, `
INSERT INTO slots (id, name, start_time, end_time, sort_order)
VALUES (?, ?, ?, ?, ?)`,
		slot.ID, slot.Name, slot.StartTime, slot.EndTime, slot.SortOrder)
	return mapError(err)
}

// GetSlot retrieves a slot by id.
func (r *ResourceRepository) GetSlot(ctx context.Context, id string) (persistence.Slot, error) {
	var slot persistence.Slot
	err := r.pool.DB().QueryRowContext(ctx, `
SELECT id, name, start_time, end_time, sort_order FROM slots WHERE id = ?`, id).
		Scan(&slot.ID, &slot.Name, &slot.StartTime, &slot.EndTime, &slot.SortOrder)
	if err != nil {
		return persistence.Slot{}, mapError(err)
	}
	return slot, nil
}

// ListSlots returns all slots in display order.
func (r *ResourceRepository) ListSlots(ctx context.Context) ([]persistence.Slot, error) {
	rows, err := r.pool.DB().QueryContext(ctx, `
SELECT id, name, start_time, end_time, sort_order FROM slots ORDER BY sort_order, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	slots := make([]persistence.Slot, 0)
	for rows.Next() {
		var slot persistence.Slot
		if err := rows.Scan(&slot.ID, &slot.Name, &slot.StartTime, &slot.EndTime, &slot.SortOrder); err != nil {
			return nil, mapError(err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return slots, nil
}

func scanResource(row rowScanner) (persistence.Resource, error) {
	var (
		resource             persistence.Resource
		createdAt, updatedAt string
	)
	err := row.Scan(
		&resource.ID,
		&resource.Name,
		&resource.Category,
		&resource.Capacity,
		&resource.SiteID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Resource{}, mapError(err)
	}
	if resource.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.Resource{}, err
	}
	if resource.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.Resource{}, err
	}
	return resource, nil
}
