package sqlite

import (
	"context"

	"github.com/example/campus-booking/internal/persistence"
)

// StaffRepository implements persistence.StaffRepository on SQLite.
type StaffRepository struct {
	pool *ConnectionPool
}

// NewStaffRepository wires a staff repository to the shared pool.
func NewStaffRepository(pool *ConnectionPool) *StaffRepository {
	return &StaffRepository{pool: pool}
}

// CreateStaff inserts a staff account.
func (r *StaffRepository) CreateStaff(ctx context.Context, member persistence.StaffMember) error {
	if member.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.DB().ExecContext(ctx, `
INSERT INTO staff (id, display_name, role, site_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		member.ID,
		member.DisplayName,
		member.Role,
		member.SiteID,
		encodeTime(member.CreatedAt),
		encodeTime(member.UpdatedAt),
	)
	return mapError(err)
}

// GetStaff retrieves a staff account by id.
func (r *StaffRepository) GetStaff(ctx context.Context, id string) (persistence.StaffMember, error) {
	row := r.pool.DB().QueryRowContext(ctx, `
SELECT id, display_name, role, site_id, created_at, updated_at
FROM staff WHERE id = ?`, id)
	return scanStaff(row)
}

// ListEligibleStaff returns staff matching a role at a site, ordered by id
// so downstream tie-breaking stays deterministic.
func (r *StaffRepository) ListEligibleStaff(ctx context.Context, role, siteID string) ([]persistence.StaffMember, error) {
	rows, err := r.pool.DB().QueryContext(ctx, `
SELECT id, display_name, role, site_id, created_at, updated_at
FROM staff
WHERE role = ? AND site_id = ?
ORDER BY id`, role, siteID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	members := make([]persistence.StaffMember, 0)
	for rows.Next() {
		member, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return members, nil
}

func scanStaff(row rowScanner) (persistence.StaffMember, error) {
	var (
		member               persistence.StaffMember
		createdAt, updatedAt string
	)
	err := row.Scan(
		&member.ID,
		&member.DisplayName,
		&member.Role,
		&member.SiteID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.StaffMember{}, mapError(err)
	}
	if member.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.StaffMember{}, err
	}
	if member.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.StaffMember{}, err
	}
	return member, nil
}
