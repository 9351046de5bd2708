package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/example/campus-booking/internal/assignment"
	"github.com/example/campus-booking/internal/persistence"
	"github.com/example/campus-booking/internal/planner"
	"github.com/example/campus-booking/internal/recurrence"
)

// BookingService orchestrates recurring booking checks, submissions and
// the booking lifecycle transitions.
type BookingService struct {
	reservations   ReservationStore
	catalog        ResourceCatalog
	tasks          *SecurityTaskService
	notifier       NotificationSink
	summaries      *groupSummaryCache
	semesterMonths int
	idGenerator    func() string
	now            func() time.Time
	validate       *validator.Validate
	logger         *slog.Logger
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(reservations ReservationStore, catalog ResourceCatalog, tasks *SecurityTaskService, notifier NotificationSink, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(reservations, catalog, tasks, notifier, idGenerator, now, nil)
}

// NewBookingServiceWithLogger wires dependencies together with a base logger.
func NewBookingServiceWithLogger(reservations ReservationStore, catalog ResourceCatalog, tasks *SecurityTaskService, notifier NotificationSink, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		reservations:   reservations,
		catalog:        catalog,
		tasks:          tasks,
		notifier:       notifier,
		summaries:      newGroupSummaryCache(30*time.Second, 128, now),
		semesterMonths: 3,
		idGenerator:    idGenerator,
		now:            now,
		validate:       validator.New(),
		logger:         defaultLogger(logger),
	}
}

// SetSemesterLength overrides the number of months a semester rule spans
// when the caller leaves the end date unset. Non-positive values are ignored.
func (s *BookingService) SetSemesterLength(months int) {
	if s == nil || months <= 0 {
		return
	}
	s.semesterMonths = months
}

// SetSummaryCacheTTL overrides the group summary cache expiry. Zero or
// negative values fall back to the default.
func (s *BookingService) SetSummaryCacheTTL(ttl time.Duration) {
	if s == nil {
		return
	}
	s.summaries = newGroupSummaryCache(ttl, 128, s.now)
}

// CheckRecurring expands the rule and classifies every candidate against
// existing reservations without writing anything. The same input later
// drives SubmitRecurring, so a check is an exact dry run.
func (s *BookingService) CheckRecurring(ctx context.Context, principal Principal, input SubmitRecurringInput) (planner.CheckResult, error) {
	if s == nil {
		return planner.CheckResult{}, fmt.Errorf("BookingService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "BookingService", "CheckRecurring", "user_id", principal.UserID, "resource_id", input.ResourceID)

	result, _, err := s.checkCandidates(ctx, input)
	if err != nil {
		logger.Warn("recurring check failed", "error", err, "error_kind", ErrorKind(err))
		return planner.CheckResult{}, err
	}

	logger.Info("recurring check completed",
		"total_dates", result.TotalDates,
		"can_proceed", result.CanProceedCount,
		"conflicts", result.ConflictCount,
		"blocked", result.BlockedCount,
	)
	return result, nil
}

// SubmitRecurring checks the rule, applies the conflict policy and writes
// the accepted bookings as one recurrence group. A blocked request returns
// with Committed false and no error; individual write failures after a
// successful plan are reported in Failed rather than aborting the rest.
func (s *BookingService) SubmitRecurring(ctx context.Context, principal Principal, input SubmitRecurringInput) (SubmitRecurringResult, error) {
	if s == nil {
		return SubmitRecurringResult{}, fmt.Errorf("BookingService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "BookingService", "SubmitRecurring", "user_id", principal.UserID, "resource_id", input.ResourceID)

	check, _, err := s.checkCandidates(ctx, input)
	if err != nil {
		logger.Warn("recurring submission rejected", "error", err, "error_kind", ErrorKind(err))
		return SubmitRecurringResult{}, err
	}

	plan := planner.PlanCommit(check, input.SkipConflicts)
	result := SubmitRecurringResult{Check: check, Outcome: plan.Outcome}

	if plan.Outcome == planner.OutcomeBlocked {
		logger.Info("recurring submission blocked", "blocked", check.BlockedCount, "total_dates", check.TotalDates)
		return result, nil
	}

	result.Committed = true
	result.RecurrenceGroupID = s.idGenerator()

	groupID := result.RecurrenceGroupID
	patternName := input.Pattern.String()
	createdAt := s.now()

	bookings := make([]Booking, len(plan.Accepted))
	for i, candidate := range plan.Accepted {
		pattern := patternName
		group := groupID
		bookings[i] = Booking{
			ID:                s.idGenerator(),
			ResourceID:        candidate.ResourceID,
			Date:              candidate.Date,
			SlotID:            candidate.SlotID,
			Purpose:           strings.TrimSpace(input.Purpose),
			Status:            BookingPending,
			RequesterID:       principal.UserID,
			RequesterName:     principal.DisplayName,
			RequesterRole:     string(principal.Role),
			RecurrenceGroupID: &group,
			RecurrencePattern: &pattern,
			CreatedAt:         createdAt,
			UpdatedAt:         createdAt,
		}
	}

	// Each accepted candidate is written independently; the store's
	// active-cell uniqueness guarantee catches races with concurrent
	// submissions, surfacing them as per-candidate failures.
	writeErrs := make([]error, len(bookings))
	var wg sync.WaitGroup
	for i := range bookings {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			writeErrs[i] = s.reservations.CreateBooking(ctx, bookings[i])
		}(i)
	}
	wg.Wait()

	for i, writeErr := range writeErrs {
		if writeErr == nil {
			result.Created = append(result.Created, bookings[i])
			continue
		}
		reason := "write failed"
		switch {
		case errors.Is(writeErr, persistence.ErrDuplicate):
			reason = "cell was booked concurrently"
		case errors.Is(writeErr, persistence.ErrUnavailable):
			reason = "store unavailable"
		}
		logger.Warn("candidate write failed",
			"booking_id", bookings[i].ID,
			"date", bookings[i].Date.Format("2006-01-02"),
			"slot_id", bookings[i].SlotID,
			"error", writeErr,
		)
		result.Failed = append(result.Failed, CandidateFailure{Candidate: plan.Accepted[i], Reason: reason})
	}

	logger.Info("recurring submission committed",
		"recurrence_group_id", groupID,
		"outcome", string(plan.Outcome),
		"created", len(result.Created),
		"failed", len(result.Failed),
		"skipped", len(plan.Skipped),
	)
	return result, nil
}

// ApproveBooking transitions a pending booking to approved and creates the
// security task for it. Failure to assign a task never rolls back the
// approval; the result carries the reason instead.
func (s *BookingService) ApproveBooking(ctx context.Context, principal Principal, bookingID string) (ApproveResult, error) {
	if s == nil {
		return ApproveResult{}, fmt.Errorf("BookingService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "BookingService", "ApproveBooking", "user_id", principal.UserID, "booking_id", bookingID)

	if !principal.CanModerate() {
		logger.Warn("approval denied", "error_kind", ErrorKind(ErrUnauthorized))
		return ApproveResult{}, ErrUnauthorized
	}

	booking, err := s.reservations.GetBooking(ctx, bookingID)
	if err != nil {
		return ApproveResult{}, mapStoreError(err)
	}
	if booking.Status != BookingPending {
		logger.Warn("approval rejected", "status", string(booking.Status), "error_kind", ErrorKind(ErrInvalidTransition))
		return ApproveResult{}, ErrInvalidTransition
	}

	approverID := principal.UserID
	approved := booking
	approved.Status = BookingApproved
	approved.ApproverID = &approverID
	approved.UpdatedAt = s.now()

	if err := s.reservations.UpdateBooking(ctx, approved); err != nil {
		return ApproveResult{}, mapStoreError(err)
	}
	s.invalidateGroup(approved)

	result := ApproveResult{Booking: approved}
	if s.tasks != nil {
		task, taskErr := s.createApprovalTask(ctx, principal, approved)
		switch {
		case taskErr == nil:
			result.Task = &task
		case errors.Is(taskErr, assignment.ErrNoStaffAvailable):
			result.TaskNote = "no security staff available for assignment"
			logger.Warn("approval completed without task", "error_kind", ErrorKind(taskErr))
		default:
			result.TaskNote = "security task creation failed"
			logger.Error("security task creation failed", "error", taskErr, "error_kind", ErrorKind(taskErr))
		}
	}

	logger.Info("booking approved", "task_assigned", result.Task != nil)
	return result, nil
}

// RejectBooking transitions a pending booking to rejected. A reason is
// mandatory so the requester learns why.
func (s *BookingService) RejectBooking(ctx context.Context, principal Principal, bookingID, reason string) (Booking, error) {
	if s == nil {
		return Booking{}, fmt.Errorf("BookingService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "BookingService", "RejectBooking", "user_id", principal.UserID, "booking_id", bookingID)

	if !principal.CanModerate() {
		logger.Warn("rejection denied", "error_kind", ErrorKind(ErrUnauthorized))
		return Booking{}, ErrUnauthorized
	}
	if strings.TrimSpace(reason) == "" {
		vErr := &ValidationError{}
		vErr.add("reason", "a rejection reason is required")
		return Booking{}, vErr
	}

	booking, err := s.reservations.GetBooking(ctx, bookingID)
	if err != nil {
		return Booking{}, mapStoreError(err)
	}
	if booking.Status != BookingPending {
		return Booking{}, ErrInvalidTransition
	}

	approverID := principal.UserID
	trimmed := strings.TrimSpace(reason)
	rejected := booking
	rejected.Status = BookingRejected
	rejected.ApproverID = &approverID
	rejected.RejectionReason = &trimmed
	rejected.UpdatedAt = s.now()

	if err := s.reservations.UpdateBooking(ctx, rejected); err != nil {
		return Booking{}, mapStoreError(err)
	}
	s.invalidateGroup(rejected)

	logger.Info("booking rejected")
	return rejected, nil
}

// CancelBooking cancels a booking. Pending bookings may be cancelled by
// their requester; approved bookings only by a moderator, who must give a
// reason, and the requester is notified.
func (s *BookingService) CancelBooking(ctx context.Context, principal Principal, bookingID, reason string) (Booking, error) {
	if s == nil {
		return Booking{}, fmt.Errorf("BookingService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "BookingService", "CancelBooking", "user_id", principal.UserID, "booking_id", bookingID)

	booking, err := s.reservations.GetBooking(ctx, bookingID)
	if err != nil {
		return Booking{}, mapStoreError(err)
	}

	notifyRequester := false
	switch booking.Status {
	case BookingPending:
		if booking.RequesterID != principal.UserID {
			logger.Warn("cancellation denied", "error_kind", ErrorKind(ErrUnauthorized))
			return Booking{}, ErrUnauthorized
		}
	case BookingApproved:
		if !principal.CanModerate() {
			logger.Warn("cancellation denied", "error_kind", ErrorKind(ErrUnauthorized))
			return Booking{}, ErrUnauthorized
		}
		if strings.TrimSpace(reason) == "" {
			vErr := &ValidationError{}
			vErr.add("reason", "a cancellation reason is required for approved bookings")
			return Booking{}, vErr
		}
		notifyRequester = true
	default:
		return Booking{}, ErrInvalidTransition
	}

	cancelled := booking
	cancelled.Status = BookingCancelled
	if trimmed := strings.TrimSpace(reason); trimmed != "" {
		cancelled.CancelReason = &trimmed
	}
	cancelled.UpdatedAt = s.now()

	if err := s.reservations.UpdateBooking(ctx, cancelled); err != nil {
		return Booking{}, mapStoreError(err)
	}
	s.invalidateGroup(cancelled)

	if notifyRequester && s.notifier != nil {
		message := fmt.Sprintf("Your booking for %s on %s was cancelled: %s",
			cancelled.ResourceID, cancelled.Date.Format("2006-01-02"), *cancelled.CancelReason)
		if err := s.notifier.Notify(ctx, cancelled.RequesterID, message); err != nil {
			logger.Warn("cancellation notice delivery failed", "requester_id", cancelled.RequesterID, "error", err)
		}
	}

	logger.Info("booking cancelled")
	return cancelled, nil
}

// ApproveGroup approves every pending member of a recurrence group. Members
// are processed independently; one failure never aborts the rest.
func (s *BookingService) ApproveGroup(ctx context.Context, principal Principal, groupID string) ([]GroupMemberResult, error) {
	return s.transitionGroup(ctx, principal, groupID, "ApproveGroup", func(member Booking) error {
		_, err := s.ApproveBooking(ctx, principal, member.ID)
		return err
	})
}

// RejectGroup rejects every pending member of a recurrence group with the
// same reason.
func (s *BookingService) RejectGroup(ctx context.Context, principal Principal, groupID, reason string) ([]GroupMemberResult, error) {
	if strings.TrimSpace(reason) == "" {
		vErr := &ValidationError{}
		vErr.add("reason", "a rejection reason is required")
		return nil, vErr
	}
	return s.transitionGroup(ctx, principal, groupID, "RejectGroup", func(member Booking) error {
		_, err := s.RejectBooking(ctx, principal, member.ID, reason)
		return err
	})
}

// GroupSummary aggregates a recurrence group into its read-side digest.
// Results are cached briefly; lifecycle transitions invalidate the group.
func (s *BookingService) GroupSummary(ctx context.Context, groupID string) (RecurrenceGroupSummary, error) {
	if s == nil {
		return RecurrenceGroupSummary{}, fmt.Errorf("BookingService is nil")
	}

	if summary, ok := s.summaries.Get(groupID); ok {
		return summary, nil
	}

	members, err := s.reservations.ListByRecurrenceGroup(ctx, groupID)
	if err != nil {
		return RecurrenceGroupSummary{}, mapStoreError(err)
	}
	if len(members) == 0 {
		return RecurrenceGroupSummary{}, ErrNotFound
	}

	summary := RecurrenceGroupSummary{
		RecurrenceGroupID: groupID,
		TotalBookings:     len(members),
		StartDate:         members[0].Date,
		EndDate:           members[0].Date,
	}

	slotIDs := make([]string, 0, 4)
	seenSlots := make(map[string]struct{})
	for _, member := range members {
		if member.Date.Before(summary.StartDate) {
			summary.StartDate = member.Date
		}
		if member.Date.After(summary.EndDate) {
			summary.EndDate = member.Date
		}
		if _, ok := seenSlots[member.SlotID]; !ok {
			seenSlots[member.SlotID] = struct{}{}
			slotIDs = append(slotIDs, member.SlotID)
		}
		if summary.PatternName == "" && member.RecurrencePattern != nil {
			summary.PatternName = *member.RecurrencePattern
		}
		switch member.Status {
		case BookingPending:
			summary.PendingCount++
		case BookingApproved:
			summary.ApprovedCount++
		case BookingRejected:
			summary.RejectedCount++
		case BookingCancelled:
			summary.CancelledCount++
		}
	}

	summary.ResourceName = members[0].ResourceID
	if resource, err := s.catalog.GetResource(ctx, members[0].ResourceID); err == nil {
		summary.ResourceName = resource.Name
	}

	slotNames := make([]string, 0, len(slotIDs))
	for _, slotID := range slotIDs {
		name := slotID
		if slot, err := s.catalog.GetSlot(ctx, slotID); err == nil {
			name = slot.Name
		}
		slotNames = append(slotNames, name)
	}
	summary.SlotNames = strings.Join(slotNames, ", ")

	s.summaries.Store(groupID, summary)
	return summary, nil
}

// ListMyBookings returns the principal's own bookings.
func (s *BookingService) ListMyBookings(ctx context.Context, principal Principal) ([]Booking, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	bookings, err := s.reservations.ListByRequester(ctx, principal.UserID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return bookings, nil
}

func (s *BookingService) transitionGroup(ctx context.Context, principal Principal, groupID, operation string, transition func(Booking) error) ([]GroupMemberResult, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "BookingService", operation, "user_id", principal.UserID, "recurrence_group_id", groupID)

	if !principal.CanModerate() {
		logger.Warn("group transition denied", "error_kind", ErrorKind(ErrUnauthorized))
		return nil, ErrUnauthorized
	}

	members, err := s.reservations.ListByRecurrenceGroup(ctx, groupID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if len(members) == 0 {
		return nil, ErrNotFound
	}

	results := make([]GroupMemberResult, 0, len(members))
	for _, member := range members {
		if member.Status != BookingPending {
			continue
		}
		memberResult := GroupMemberResult{BookingID: member.ID, OK: true}
		if err := transition(member); err != nil {
			memberResult.OK = false
			memberResult.Error = err.Error()
		}
		results = append(results, memberResult)
	}

	logger.Info("group transition completed", "members", len(results))
	return results, nil
}

// checkCandidates runs the shared validate-expand-classify pipeline and
// returns the check result plus the resolved resource.
func (s *BookingService) checkCandidates(ctx context.Context, input SubmitRecurringInput) (planner.CheckResult, Resource, error) {
	if input.Pattern == recurrence.PatternSemester && input.EndDate.IsZero() && !input.StartDate.IsZero() {
		input.EndDate = input.StartDate.AddDate(0, s.semesterMonths, 0)
	}

	if err := s.validateRecurringInput(input); err != nil {
		return planner.CheckResult{}, Resource{}, err
	}

	resource, err := s.catalog.GetResource(ctx, input.ResourceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			vErr := &ValidationError{}
			vErr.add("resource_id", "resource does not exist")
			return planner.CheckResult{}, Resource{}, vErr
		}
		return planner.CheckResult{}, Resource{}, mapStoreError(err)
	}

	for _, slotID := range input.SlotIDs {
		if _, err := s.catalog.GetSlot(ctx, slotID); err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
				vErr := &ValidationError{}
				vErr.add("slot_ids", fmt.Sprintf("unknown slot id: %s", slotID))
				return planner.CheckResult{}, Resource{}, vErr
			}
			return planner.CheckResult{}, Resource{}, mapStoreError(err)
		}
	}

	dates, err := recurrence.Expand(toRule(input))
	if err != nil {
		return planner.CheckResult{}, Resource{}, err
	}

	candidates := planner.BuildCandidates(dates, input.SlotIDs, input.ResourceID)
	verdicts := make([]planner.Verdict, 0, len(candidates))
	for _, candidate := range candidates {
		verdict, err := s.classifyCandidate(ctx, resource, candidate, input.AutoFindAlternative, input.SkipConflicts)
		if err != nil {
			return planner.CheckResult{}, Resource{}, err
		}
		verdicts = append(verdicts, verdict)
	}

	return planner.Aggregate(verdicts), resource, nil
}

func (s *BookingService) classifyCandidate(ctx context.Context, resource Resource, candidate planner.Candidate, autoFindAlternative, skipConflicts bool) (planner.Verdict, error) {
	verdict := planner.Verdict{Candidate: candidate}

	existing, err := s.reservations.FindConflicting(ctx, candidate.ResourceID, candidate.Date, candidate.SlotID)
	if err != nil {
		return planner.Verdict{}, mapStoreError(err)
	}
	if existing == nil {
		verdict.CanProceed = true
		verdict.Message = "available"
		return verdict, nil
	}

	verdict.HasConflict = true
	verdict.Conflicting = &planner.ConflictingBooking{
		BookingID:     existing.ID,
		RequesterName: existing.RequesterName,
		RequesterRole: existing.RequesterRole,
	}
	verdict.Message = fmt.Sprintf("conflicts with booking by %s (%s)", existing.RequesterName, existing.RequesterRole)

	if autoFindAlternative {
		alternative, err := s.catalog.FindAlternative(ctx, resource.Category, resource.Capacity, resource.ID, candidate.Date, candidate.SlotID)
		switch {
		case err == nil:
			verdict.CanProceed = true
			verdict.AlternativeResourceID = alternative.ID
			verdict.AlternativeResourceName = alternative.Name
			verdict.Message = fmt.Sprintf("conflicts with booking by %s; alternative %s available", existing.RequesterName, alternative.Name)
			return verdict, nil
		case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
			// No free room of the category; fall through to the skip policy.
		default:
			return planner.Verdict{}, mapStoreError(err)
		}
	}

	// A skippable conflict proceeds without being committed: it counts as a
	// conflict, never as blocked.
	if skipConflicts {
		verdict.CanProceed = true
		verdict.Message = fmt.Sprintf("conflicts with booking by %s; skipped", existing.RequesterName)
	}
	return verdict, nil
}

func (s *BookingService) createApprovalTask(ctx context.Context, approver Principal, booking Booking) (SecurityTask, error) {
	resource, err := s.catalog.GetResource(ctx, booking.ResourceID)
	if err != nil {
		return SecurityTask{}, mapStoreError(err)
	}
	return s.tasks.CreateForBooking(ctx, approver, booking, resource)
}

func (s *BookingService) invalidateGroup(booking Booking) {
	if booking.RecurrenceGroupID == nil {
		return
	}
	s.summaries.Invalidate(*booking.RecurrenceGroupID)
}

var recurringFieldNames = map[string]string{
	"ResourceID": "resource_id",
	"SlotIDs":    "slot_ids",
	"Purpose":    "purpose",
	"StartDate":  "start_date",
	"EndDate":    "end_date",
	"Interval":   "interval",
}

func (s *BookingService) validateRecurringInput(input SubmitRecurringInput) error {
	vErr := &ValidationError{}

	if err := s.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fieldErr := range fieldErrs {
			name := recurringFieldNames[fieldErr.StructField()]
			if name == "" {
				name = strings.ToLower(fieldErr.StructField())
			}
			vErr.add(name, validationMessage(fieldErr))
		}
	}

	if !input.StartDate.IsZero() && !input.EndDate.IsZero() {
		if recurrence.DateOf(input.EndDate).Before(recurrence.DateOf(input.StartDate)) {
			vErr.add("end_date", "end date must not precede start date")
		}
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func validationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s", fieldErr.Param())
	default:
		return fmt.Sprintf("failed %s validation", fieldErr.Tag())
	}
}

func toRule(input SubmitRecurringInput) recurrence.Rule {
	return recurrence.Rule{
		ResourceID:          input.ResourceID,
		SlotIDs:             input.SlotIDs,
		Purpose:             input.Purpose,
		StartDate:           input.StartDate,
		EndDate:             input.EndDate,
		Pattern:             input.Pattern,
		DaysOfWeek:          input.DaysOfWeek,
		Interval:            input.Interval,
		AutoFindAlternative: input.AutoFindAlternative,
		SkipConflicts:       input.SkipConflicts,
	}
}

func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrUnavailable):
		return ErrStoreUnavailable
	}
	return err
}
