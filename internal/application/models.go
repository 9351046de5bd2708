// Package application hosts the booking and security task services.
//
// Services accept a Principal describing the caller, validate inputs,
// orchestrate the recurrence, planner and assignment packages, and talk
// to storage through the collaborator interfaces declared in this
// package. All domain rules about who may do what, and which state
// transitions are legal, live here rather than in storage.
package application

import (
	"time"

	"github.com/example/campus-booking/internal/planner"
	"github.com/example/campus-booking/internal/recurrence"
)

// Role classifies what a principal may do.
type Role string

const (
	RoleUser     Role = "user"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
	RoleSecurity Role = "security"
)

// Principal identifies the authenticated caller of a service operation.
type Principal struct {
	UserID      string
	DisplayName string
	Role        Role
}

// CanModerate reports whether the principal may approve, reject or
// administratively cancel bookings.
func (p Principal) CanModerate() bool {
	return p.Role == RoleStaff || p.Role == RoleAdmin
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is one reservation of a resource cell (resource, date, slot).
type Booking struct {
	ID                string
	ResourceID        string
	Date              time.Time
	SlotID            string
	Purpose           string
	Status            BookingStatus
	RequesterID       string
	RequesterName     string
	RequesterRole     string
	RecurrenceGroupID *string
	RecurrencePattern *string
	ApproverID        *string
	RejectionReason   *string
	CancelReason      *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Resource is a bookable room or space.
type Resource struct {
	ID       string
	Name     string
	Category string
	Capacity int
	SiteID   string
}

// Slot is one bookable time window within a day.
type Slot struct {
	ID        string
	Name      string
	StartTime string
	EndTime   string
	SortOrder int
}

// StaffMember is an account eligible for task assignment.
type StaffMember struct {
	ID          string
	DisplayName string
	Role        string
	SiteID      string
}

// TaskStatus is the lifecycle state of a security task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// TaskPriority orders tasks for display.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityNormal TaskPriority = "normal"
	PriorityHigh   TaskPriority = "high"
)

// SecurityTask is a unit of work assigned to a security staff member.
type SecurityTask struct {
	ID               string
	Title            string
	Description      string
	Status           TaskStatus
	Priority         TaskPriority
	AssignedToUserID string
	CreatedBy        string
	BookingID        *string
	ReportNote       *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CompletedAt      *time.Time
}

// SubmitRecurringInput describes a recurring booking request. The same
// input drives both the dry-run conflict check and the submission.
type SubmitRecurringInput struct {
	ResourceID          string    `validate:"required"`
	SlotIDs             []string  `validate:"required,min=1,dive,required"`
	Purpose             string    `validate:"required"`
	StartDate           time.Time `validate:"required"`
	EndDate             time.Time `validate:"required"`
	Pattern             recurrence.Pattern
	DaysOfWeek          []recurrence.Weekday
	Interval            int `validate:"min=0"`
	AutoFindAlternative bool
	SkipConflicts       bool
}

// CandidateFailure records a candidate whose write failed during submission.
type CandidateFailure struct {
	Candidate planner.Candidate
	Reason    string
}

// SubmitRecurringResult reports the outcome of a recurring submission.
// Committed is false when the whole request was blocked by conflicts;
// Failed lists candidates whose individual writes did not go through.
type SubmitRecurringResult struct {
	Check             planner.CheckResult
	Outcome           planner.Outcome
	Committed         bool
	RecurrenceGroupID string
	Created           []Booking
	Failed            []CandidateFailure
}

// ApproveResult reports an approval together with the security task it
// spawned. TaskNote explains why no task was assigned when Task is nil.
type ApproveResult struct {
	Booking  Booking
	Task     *SecurityTask
	TaskNote string
}

// GroupMemberResult reports one member of a bulk group transition.
type GroupMemberResult struct {
	BookingID string
	OK        bool
	Error     string
}

// RecurrenceGroupSummary is the read-side digest of a recurrence group.
type RecurrenceGroupSummary struct {
	RecurrenceGroupID string
	ResourceName      string
	SlotNames         string
	PatternName       string
	StartDate         time.Time
	EndDate           time.Time
	TotalBookings     int
	PendingCount      int
	ApprovedCount     int
	RejectedCount     int
	CancelledCount    int
}

// CreateTaskInput describes a manually created security task.
type CreateTaskInput struct {
	Title       string `validate:"required"`
	Description string
	Priority    TaskPriority
	SiteID      string `validate:"required"`
}
