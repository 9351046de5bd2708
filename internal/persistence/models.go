package persistence

import "time"

// BookingStatus is the lifecycle state of a booking row.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking represents a reservation of one resource slot on one calendar day.
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

// Resource represents a bookable room in the campus catalog.
type Resource struct {
	ID        string
	Name      string
	Category  string
	Capacity  int
	SiteID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Slot represents a fixed daily time slot resources are booked in.
type Slot struct {
	ID        string
	Name      string
	StartTime string
	EndTime   string
	SortOrder int
}

// StaffMember represents an operational staff account eligible for tasks.
type StaffMember struct {
	ID          string
	DisplayName string
	Role        string
	SiteID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskStatus is the lifecycle state of a security task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// TaskPriority orders tasks for the assignee.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityNormal TaskPriority = "normal"
	PriorityHigh   TaskPriority = "high"
)

// SecurityTask represents a follow-up operational task tied to a booking.
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
