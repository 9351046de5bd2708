package application

import (
	"context"
	"time"
)

// ReservationStore persists bookings. FindConflicting returns nil when
// the cell is free; implementations must exclude cancelled bookings.
type ReservationStore interface {
	CreateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	UpdateBooking(ctx context.Context, booking Booking) error
	FindConflicting(ctx context.Context, resourceID string, date time.Time, slotID string) (*Booking, error)
	ListByRecurrenceGroup(ctx context.Context, groupID string) ([]Booking, error)
	ListByRequester(ctx context.Context, requesterID string) ([]Booking, error)
}

// ResourceCatalog resolves resources and slots. FindAlternative returns
// a free resource of the same category with at least the given capacity,
// or ErrNotFound when none qualifies.
type ResourceCatalog interface {
	GetResource(ctx context.Context, id string) (Resource, error)
	FindAlternative(ctx context.Context, category string, minCapacity int, excludingID string, date time.Time, slotID string) (Resource, error)
	GetSlot(ctx context.Context, id string) (Slot, error)
	ListSlots(ctx context.Context) ([]Slot, error)
}

// StaffDirectory resolves the pool of staff eligible for assignment.
type StaffDirectory interface {
	ListEligibleStaff(ctx context.Context, role, siteID string) ([]StaffMember, error)
}

// TaskStore persists security tasks.
type TaskStore interface {
	CreateTask(ctx context.Context, task SecurityTask) error
	GetTask(ctx context.Context, id string) (SecurityTask, error)
	UpdateTask(ctx context.Context, task SecurityTask) error
	ListPendingTasksFor(ctx context.Context, staffIDs []string) ([]SecurityTask, error)
}

// NotificationSink delivers user-facing notices. Delivery failures are
// logged by the services and never fail the triggering operation.
type NotificationSink interface {
	Notify(ctx context.Context, userID, message string) error
}
