package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/example/campus-booking/internal/assignment"
)

// SecurityTaskService creates and completes security tasks, assigning
// each new task to the least loaded eligible staff member.
type SecurityTaskService struct {
	staff        StaffDirectory
	tasks        TaskStore
	securityRole string
	idGenerator  func() string
	now          func() time.Time
	validate     *validator.Validate
	logger       *slog.Logger
}

// NewSecurityTaskService wires dependencies for task operations.
func NewSecurityTaskService(staff StaffDirectory, tasks TaskStore, securityRole string, idGenerator func() string, now func() time.Time) *SecurityTaskService {
	return NewSecurityTaskServiceWithLogger(staff, tasks, securityRole, idGenerator, now, nil)
}

// NewSecurityTaskServiceWithLogger wires dependencies together with a base logger.
func NewSecurityTaskServiceWithLogger(staff StaffDirectory, tasks TaskStore, securityRole string, idGenerator func() string, now func() time.Time, logger *slog.Logger) *SecurityTaskService {
	if securityRole == "" {
		securityRole = "security"
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &SecurityTaskService{
		staff:        staff,
		tasks:        tasks,
		securityRole: securityRole,
		idGenerator:  idGenerator,
		now:          now,
		validate:     validator.New(),
		logger:       defaultLogger(logger),
	}
}

// CreateForBooking creates the security task for an approved booking,
// assigned to the least loaded security staff member at the resource's
// site. Returns assignment.ErrNoStaffAvailable when the site has no
// eligible staff.
func (s *SecurityTaskService) CreateForBooking(ctx context.Context, approver Principal, booking Booking, resource Resource) (SecurityTask, error) {
	if s == nil {
		return SecurityTask{}, fmt.Errorf("SecurityTaskService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "SecurityTaskService", "CreateForBooking", "booking_id", booking.ID, "site_id", resource.SiteID)

	assignee, err := s.pickAssignee(ctx, resource.SiteID)
	if err != nil {
		return SecurityTask{}, err
	}

	bookingID := booking.ID
	createdAt := s.now()
	task := SecurityTask{
		ID:               s.idGenerator(),
		Title:            fmt.Sprintf("Security check: %s", resource.Name),
		Description:      fmt.Sprintf("Booking %q on %s, slot %s. Purpose: %s", booking.ID, booking.Date.Format("2006-01-02"), booking.SlotID, booking.Purpose),
		Status:           TaskPending,
		Priority:         PriorityNormal,
		AssignedToUserID: assignee.ID,
		CreatedBy:        approver.UserID,
		BookingID:        &bookingID,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}

	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return SecurityTask{}, mapStoreError(err)
	}

	logger.Info("security task created", "task_id", task.ID, "assigned_to", assignee.ID)
	return task, nil
}

// CreateTask creates a manually requested security task, balanced the
// same way as booking tasks. Moderators only.
func (s *SecurityTaskService) CreateTask(ctx context.Context, principal Principal, input CreateTaskInput) (SecurityTask, error) {
	if s == nil {
		return SecurityTask{}, fmt.Errorf("SecurityTaskService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "SecurityTaskService", "CreateTask", "user_id", principal.UserID, "site_id", input.SiteID)

	if !principal.CanModerate() {
		logger.Warn("task creation denied", "error_kind", ErrorKind(ErrUnauthorized))
		return SecurityTask{}, ErrUnauthorized
	}
	if err := s.validateTaskInput(input); err != nil {
		return SecurityTask{}, err
	}

	assignee, err := s.pickAssignee(ctx, input.SiteID)
	if err != nil {
		logger.Warn("task creation failed", "error", err, "error_kind", ErrorKind(err))
		return SecurityTask{}, err
	}

	priority := input.Priority
	if priority == "" {
		priority = PriorityNormal
	}

	createdAt := s.now()
	task := SecurityTask{
		ID:               s.idGenerator(),
		Title:            strings.TrimSpace(input.Title),
		Description:      input.Description,
		Status:           TaskPending,
		Priority:         priority,
		AssignedToUserID: assignee.ID,
		CreatedBy:        principal.UserID,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}

	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return SecurityTask{}, mapStoreError(err)
	}

	logger.Info("security task created", "task_id", task.ID, "assigned_to", assignee.ID)
	return task, nil
}

// CompleteTask marks a pending task as done. Only the assignee may
// complete a task; a report note is optional.
func (s *SecurityTaskService) CompleteTask(ctx context.Context, principal Principal, taskID, reportNote string) (SecurityTask, error) {
	if s == nil {
		return SecurityTask{}, fmt.Errorf("SecurityTaskService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "SecurityTaskService", "CompleteTask", "user_id", principal.UserID, "task_id", taskID)

	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return SecurityTask{}, mapStoreError(err)
	}
	if task.AssignedToUserID != principal.UserID {
		logger.Warn("completion denied", "error_kind", ErrorKind(ErrUnauthorized))
		return SecurityTask{}, ErrUnauthorized
	}
	if task.Status != TaskPending {
		return SecurityTask{}, ErrInvalidTransition
	}

	completedAt := s.now()
	completed := task
	completed.Status = TaskCompleted
	completed.CompletedAt = &completedAt
	completed.UpdatedAt = completedAt
	if trimmed := strings.TrimSpace(reportNote); trimmed != "" {
		completed.ReportNote = &trimmed
	}

	if err := s.tasks.UpdateTask(ctx, completed); err != nil {
		return SecurityTask{}, mapStoreError(err)
	}

	logger.Info("security task completed")
	return completed, nil
}

// SiteWorkload reports the pending task count per eligible staff member
// at a site. Computed fresh on every call, never cached.
func (s *SecurityTaskService) SiteWorkload(ctx context.Context, siteID string) (map[string]int, error) {
	if s == nil {
		return nil, fmt.Errorf("SecurityTaskService is nil")
	}

	pool, pending, err := s.loadPool(ctx, siteID)
	if err != nil {
		return nil, err
	}
	return assignment.Load(pool, pending), nil
}

func (s *SecurityTaskService) pickAssignee(ctx context.Context, siteID string) (assignment.StaffMember, error) {
	pool, pending, err := s.loadPool(ctx, siteID)
	if err != nil {
		return assignment.StaffMember{}, err
	}
	return assignment.Pick(pool, pending)
}

func (s *SecurityTaskService) loadPool(ctx context.Context, siteID string) ([]assignment.StaffMember, []assignment.PendingTask, error) {
	members, err := s.staff.ListEligibleStaff(ctx, s.securityRole, siteID)
	if err != nil {
		return nil, nil, mapStoreError(err)
	}

	pool := make([]assignment.StaffMember, 0, len(members))
	ids := make([]string, 0, len(members))
	for _, member := range members {
		pool = append(pool, assignment.StaffMember{
			ID:          member.ID,
			DisplayName: member.DisplayName,
			Role:        member.Role,
			SiteID:      member.SiteID,
		})
		ids = append(ids, member.ID)
	}

	tasks, err := s.tasks.ListPendingTasksFor(ctx, ids)
	if err != nil {
		return nil, nil, mapStoreError(err)
	}

	pending := make([]assignment.PendingTask, 0, len(tasks))
	for _, task := range tasks {
		pending = append(pending, assignment.PendingTask{
			ID:         task.ID,
			AssignedTo: task.AssignedToUserID,
		})
	}
	return pool, pending, nil
}

func (s *SecurityTaskService) validateTaskInput(input CreateTaskInput) error {
	vErr := &ValidationError{}

	if err := s.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fieldErr := range fieldErrs {
			switch fieldErr.StructField() {
			case "Title":
				vErr.add("title", "is required")
			case "SiteID":
				vErr.add("site_id", "is required")
			default:
				vErr.add(strings.ToLower(fieldErr.StructField()), validationMessage(fieldErr))
			}
		}
	}

	switch input.Priority {
	case "", PriorityLow, PriorityNormal, PriorityHigh:
	default:
		vErr.add("priority", "must be low, normal or high")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
