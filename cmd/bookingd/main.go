package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/campus-booking/internal/application"
	"github.com/example/campus-booking/internal/config"
	"github.com/example/campus-booking/internal/logging"
	"github.com/example/campus-booking/internal/persistence"
	"github.com/example/campus-booking/internal/persistence/sqlite"
)

func main() {
	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolCfg := sqlite.DefaultConfig(cfg.SQLiteDSN)
	poolCfg.BusyTimeout = cfg.SQLiteBusyTimeout
	pool, err := sqlite.NewConnectionPool(poolCfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(ctx, pool); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	reservations := newReservationStoreAdapter(sqlite.NewBookingRepository(pool))
	catalog := newResourceCatalogAdapter(sqlite.NewResourceRepository(pool))
	staff := newStaffDirectoryAdapter(sqlite.NewStaffRepository(pool))
	tasks := newTaskStoreAdapter(sqlite.NewTaskRepository(pool))
	notifier := newLogNotifier(logger)

	taskService := application.NewSecurityTaskServiceWithLogger(staff, tasks, cfg.SecurityRole, idGenerator, now, logger)
	bookingService := application.NewBookingServiceWithLogger(reservations, catalog, taskService, notifier, idGenerator, now, logger)
	bookingService.SetSummaryCacheTTL(cfg.SummaryCacheTTL)
	bookingService.SetSemesterLength(cfg.DefaultSemesterMonths)

	logger.Info("booking engine ready", "dsn", cfg.SQLiteDSN, "security_role", cfg.SecurityRole)

	<-ctx.Done()
	logger.Info("shutting down")
}

type reservationStoreAdapter struct {
	repo persistence.BookingRepository
}

func newReservationStoreAdapter(repo persistence.BookingRepository) *reservationStoreAdapter {
	return &reservationStoreAdapter{repo: repo}
}

func (a *reservationStoreAdapter) CreateBooking(ctx context.Context, booking application.Booking) error {
	return a.repo.CreateBooking(ctx, toPersistenceBooking(booking))
}

func (a *reservationStoreAdapter) GetBooking(ctx context.Context, id string) (application.Booking, error) {
	stored, err := a.repo.GetBooking(ctx, id)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *reservationStoreAdapter) UpdateBooking(ctx context.Context, booking application.Booking) error {
	return a.repo.UpdateBooking(ctx, toPersistenceBooking(booking))
}

func (a *reservationStoreAdapter) FindConflicting(ctx context.Context, resourceID string, date time.Time, slotID string) (*application.Booking, error) {
	stored, err := a.repo.FindActiveBooking(ctx, resourceID, date, slotID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	booking := toApplicationBooking(stored)
	return &booking, nil
}

func (a *reservationStoreAdapter) ListByRecurrenceGroup(ctx context.Context, groupID string) ([]application.Booking, error) {
	models, err := a.repo.ListByRecurrenceGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(models), nil
}

func (a *reservationStoreAdapter) ListByRequester(ctx context.Context, requesterID string) ([]application.Booking, error) {
	models, err := a.repo.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(models), nil
}

type resourceCatalogAdapter struct {
	repo persistence.ResourceRepository
}

func newResourceCatalogAdapter(repo persistence.ResourceRepository) *resourceCatalogAdapter {
	return &resourceCatalogAdapter{repo: repo}
}

func (a *resourceCatalogAdapter) GetResource(ctx context.Context, id string) (application.Resource, error) {
	stored, err := a.repo.GetResource(ctx, id)
	if err != nil {
		return application.Resource{}, err
	}
	return toApplicationResource(stored), nil
}

func (a *resourceCatalogAdapter) FindAlternative(ctx context.Context, category string, minCapacity int, excludingID string, date time.Time, slotID string) (application.Resource, error) {
	stored, err := a.repo.FindAlternative(ctx, category, minCapacity, excludingID, date, slotID)
	if err != nil {
		return application.Resource{}, err
	}
	return toApplicationResource(stored), nil
}

func (a *resourceCatalogAdapter) GetSlot(ctx context.Context, id string) (application.Slot, error) {
	stored, err := a.repo.GetSlot(ctx, id)
	if err != nil {
		return application.Slot{}, err
	}
	return toApplicationSlot(stored), nil
}

func (a *resourceCatalogAdapter) ListSlots(ctx context.Context) ([]application.Slot, error) {
	models, err := a.repo.ListSlots(ctx)
	if err != nil {
		return nil, err
	}
	slots := make([]application.Slot, 0, len(models))
	for _, model := range models {
		slots = append(slots, toApplicationSlot(model))
	}
	return slots, nil
}

type staffDirectoryAdapter struct {
	repo persistence.StaffRepository
}

func newStaffDirectoryAdapter(repo persistence.StaffRepository) *staffDirectoryAdapter {
	return &staffDirectoryAdapter{repo: repo}
}

func (a *staffDirectoryAdapter) ListEligibleStaff(ctx context.Context, role, siteID string) ([]application.StaffMember, error) {
	models, err := a.repo.ListEligibleStaff(ctx, role, siteID)
	if err != nil {
		return nil, err
	}
	members := make([]application.StaffMember, 0, len(models))
	for _, model := range models {
		members = append(members, application.StaffMember{
			ID:          model.ID,
			DisplayName: model.DisplayName,
			Role:        model.Role,
			SiteID:      model.SiteID,
		})
	}
	return members, nil
}

type taskStoreAdapter struct {
	repo persistence.TaskRepository
}

func newTaskStoreAdapter(repo persistence.TaskRepository) *taskStoreAdapter {
	return &taskStoreAdapter{repo: repo}
}

func (a *taskStoreAdapter) CreateTask(ctx context.Context, task application.SecurityTask) error {
	return a.repo.CreateTask(ctx, toPersistenceTask(task))
}

func (a *taskStoreAdapter) GetTask(ctx context.Context, id string) (application.SecurityTask, error) {
	stored, err := a.repo.GetTask(ctx, id)
	if err != nil {
		return application.SecurityTask{}, err
	}
	return toApplicationTask(stored), nil
}

func (a *taskStoreAdapter) UpdateTask(ctx context.Context, task application.SecurityTask) error {
	return a.repo.UpdateTask(ctx, toPersistenceTask(task))
}

func (a *taskStoreAdapter) ListPendingTasksFor(ctx context.Context, staffIDs []string) ([]application.SecurityTask, error) {
	models, err := a.repo.ListPendingTasksFor(ctx, staffIDs)
	if err != nil {
		return nil, err
	}
	tasks := make([]application.SecurityTask, 0, len(models))
	for _, model := range models {
		tasks = append(tasks, toApplicationTask(model))
	}
	return tasks, nil
}

// logNotifier records user notices in the service log. A delivery channel
// like email can replace it without touching the services.
type logNotifier struct {
	logger *slog.Logger
}

func newLogNotifier(logger *slog.Logger) *logNotifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(_ context.Context, userID, message string) error {
	n.logger.Info("user notification", "user_id", userID, "message", message)
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, persistence.ErrNotFound)
}

func toApplicationBooking(model persistence.Booking) application.Booking {
	return application.Booking{
		ID:                model.ID,
		ResourceID:        model.ResourceID,
		Date:              model.Date,
		SlotID:            model.SlotID,
		Purpose:           model.Purpose,
		Status:            application.BookingStatus(model.Status),
		RequesterID:       model.RequesterID,
		RequesterName:     model.RequesterName,
		RequesterRole:     model.RequesterRole,
		RecurrenceGroupID: cloneString(model.RecurrenceGroupID),
		RecurrencePattern: cloneString(model.RecurrencePattern),
		ApproverID:        cloneString(model.ApproverID),
		RejectionReason:   cloneString(model.RejectionReason),
		CancelReason:      cloneString(model.CancelReason),
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

func toApplicationBookings(models []persistence.Booking) []application.Booking {
	if len(models) == 0 {
		return nil
	}
	bookings := make([]application.Booking, 0, len(models))
	for _, model := range models {
		bookings = append(bookings, toApplicationBooking(model))
	}
	return bookings
}

func toPersistenceBooking(booking application.Booking) persistence.Booking {
	return persistence.Booking{
		ID:                booking.ID,
		ResourceID:        booking.ResourceID,
		Date:              booking.Date,
		SlotID:            booking.SlotID,
		Purpose:           booking.Purpose,
		Status:            persistence.BookingStatus(booking.Status),
		RequesterID:       booking.RequesterID,
		RequesterName:     booking.RequesterName,
		RequesterRole:     booking.RequesterRole,
		RecurrenceGroupID: cloneString(booking.RecurrenceGroupID),
		RecurrencePattern: cloneString(booking.RecurrencePattern),
		ApproverID:        cloneString(booking.ApproverID),
		RejectionReason:   cloneString(booking.RejectionReason),
		CancelReason:      cloneString(booking.CancelReason),
		CreatedAt:         booking.CreatedAt,
		UpdatedAt:         booking.UpdatedAt,
	}
}

func toApplicationResource(model persistence.Resource) application.Resource {
	return application.Resource{
		ID:       model.ID,
		Name:     model.Name,
		Category: model.Category,
		Capacity: model.Capacity,
		SiteID:   model.SiteID,
	}
}

func toApplicationSlot(model persistence.Slot) application.Slot {
	return application.Slot{
		ID:        model.ID,
		Name:      model.Name,
		StartTime: model.StartTime,
		EndTime:   model.EndTime,
		SortOrder: model.SortOrder,
	}
}

func toApplicationTask(model persistence.SecurityTask) application.SecurityTask {
	return application.SecurityTask{
		ID:               model.ID,
		Title:            model.Title,
		Description:      model.Description,
		Status:           application.TaskStatus(model.Status),
		Priority:         application.TaskPriority(model.Priority),
		AssignedToUserID: model.AssignedToUserID,
		CreatedBy:        model.CreatedBy,
		BookingID:        cloneString(model.BookingID),
		ReportNote:       cloneString(model.ReportNote),
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
		CompletedAt:      cloneTime(model.CompletedAt),
	}
}

func toPersistenceTask(task application.SecurityTask) persistence.SecurityTask {
	return persistence.SecurityTask{
		ID:               task.ID,
		Title:            task.Title,
		Description:      task.Description,
		Status:           persistence.TaskStatus(task.Status),
		Priority:         persistence.TaskPriority(task.Priority),
		AssignedToUserID: task.AssignedToUserID,
		CreatedBy:        task.CreatedBy,
		BookingID:        cloneString(task.BookingID),
		ReportNote:       cloneString(task.ReportNote),
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
		CompletedAt:      cloneTime(task.CompletedAt),
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
