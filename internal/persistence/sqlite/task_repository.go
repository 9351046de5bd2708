package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/example/campus-booking/internal/persistence"
)

// TaskRepository implements persistence.TaskRepository on SQLite.
type TaskRepository struct {
	pool *ConnectionPool
}

// NewTaskRepository wires a task repository to the shared pool.
func NewTaskRepository(pool *ConnectionPool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

const taskColumns = `id, title, description, status, priority,
	assigned_to_user_id, created_by, booking_id, report_note,
	created_at, updated_at, completed_at`

// CreateTask inserts a security task.
func (r *TaskRepository) CreateTask(ctx context.Context, task persistence.SecurityTask) error {
	if task.ID == "" {
		return persistence.ErrConstraintViolation
	}

	var completedAt sql.NullString
	if task.CompletedAt != nil {
		completedAt = sql.NullString{String: encodeTime(*task.CompletedAt), Valid: true}
	}

	_, err := r.pool.DB().ExecContext(ctx, `
INSERT INTO security_tasks (`+taskColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		task.AssignedToUserID,
		task.CreatedBy,
		nullString(task.BookingID),
		nullString(task.ReportNote),
		encodeTime(task.CreatedAt),
		encodeTime(task.UpdatedAt),
		completedAt,
	)
	return mapError(err)
}

// GetTask retrieves a task by id.
func (r *TaskRepository) GetTask(ctx context.Context, id string) (persistence.SecurityTask, error) {
	row := r.pool.DB().QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM security_tasks WHERE id = ?`, id)
	return scanTask(row)
}

// UpdateTask rewrites the mutable columns of an existing task.
func (r *TaskRepository) UpdateTask(ctx context.Context, task persistence.SecurityTask) error {
	var completedAt sql.NullString
	if task.CompletedAt != nil {
		completedAt = sql.NullString{String: encodeTime(*task.CompletedAt), Valid: true}
	}

	result, err := r.pool.DB().ExecContext(ctx, `
UPDATE security_tasks
SET status = ?, report_note = ?, updated_at = ?, completed_at = ?
WHERE id = ?`,
		string(task.Status),
		nullString(task.ReportNote),
		encodeTime(task.UpdatedAt),
		completedAt,
		task.ID,
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

// ListPendingTasksFor returns the pending tasks assigned to any of the
// given staff ids, the inputs of a load-balancing decision.
func (r *TaskRepository) ListPendingTasksFor(ctx context.Context, staffIDs []string) ([]persistence.SecurityTask, error) {
	if len(staffIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?, ", len(staffIDs)-1) + "?"
	args := make([]any, 0, len(staffIDs)+1)
	for _, id := range staffIDs {
		args = append(args, id)
	}
	args = append(args, string(persistence.TaskPending))

	rows, err := r.pool.DB().QueryContext(ctx, `
SELECT `+taskColumns+`
FROM security_tasks
WHERE assigned_to_user_id IN (`+placeholders+`) AND status = ?
ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	tasks := make([]persistence.SecurityTask, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return tasks, nil
}

func scanTask(row rowScanner) (persistence.SecurityTask, error) {
	var (
		task                 persistence.SecurityTask
		status, priority     string
		createdAt, updatedAt string
		bookingID, report    sql.NullString
		completedAt          sql.NullString
	)

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&task.AssignedToUserID,
		&task.CreatedBy,
		&bookingID,
		&report,
		&createdAt,
		&updatedAt,
		&completedAt,
	)
	if err != nil {
		return persistence.SecurityTask{}, mapError(err)
	}

	task.Status = persistence.TaskStatus(status)
	task.Priority = persistence.TaskPriority(priority)
	task.BookingID = stringPtr(bookingID)
	task.ReportNote = stringPtr(report)

	if task.CreatedAt, err = decodeTime(createdAt); err != nil {
		return persistence.SecurityTask{}, err
	}
	if task.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return persistence.SecurityTask{}, err
	}
	if completedAt.Valid {
		ts, err := decodeTime(completedAt.String)
		if err != nil {
			return persistence.SecurityTask{}, err
		}
		task.CompletedAt = &ts
	}
	return task, nil
}
