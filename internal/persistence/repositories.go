package persistence

import (
	"context"
	"time"
)

// BookingRepository stores reservations and their recurrence grouping.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	UpdateBooking(ctx context.Context, booking Booking) error
	// FindActiveBooking returns the non-cancelled booking occupying the
	// given resource/date/slot cell, or ErrNotFound when the cell is free.
	FindActiveBooking(ctx context.Context, resourceID string, date time.Time, slotID string) (Booking, error)
	ListByRecurrenceGroup(ctx context.Context, groupID string) ([]Booking, error)
	ListByRequester(ctx context.Context, requesterID string) ([]Booking, error)
}

// ResourceRepository stores the room catalog and its fixed slots.
type ResourceRepository interface {
	CreateResource(ctx context.Context, resource Resource) error
	GetResource(ctx context.Context, id string) (Resource, error)
	ListResources(ctx context.Context) ([]Resource, error)
	// FindAlternative returns the best free resource for the given cell:
	// same category, smallest capacity at or above minCapacity, lowest id.
	// ErrNotFound when no free resource qualifies.
	FindAlternative(ctx context.Context, category string, minCapacity int, excludingID string, date time.Time, slotID string) (Resource, error)
	CreateSlot(ctx context.Context, slot Slot) error
	GetSlot(ctx context.Context, id string) (Slot, error)
	ListSlots(ctx context.Context) ([]Slot, error)
}

// StaffRepository stores operational staff accounts.
type StaffRepository interface {
	CreateStaff(ctx context.Context, member StaffMember) error
	GetStaff(ctx context.Context, id string) (StaffMember, error)
	ListEligibleStaff(ctx context.Context, role, siteID string) ([]StaffMember, error)
}

// TaskRepository stores security tasks.
type TaskRepository interface {
	CreateTask(ctx context.Context, task SecurityTask) error
	GetTask(ctx context.Context, id string) (SecurityTask, error)
	UpdateTask(ctx context.Context, task SecurityTask) error
	ListPendingTasksFor(ctx context.Context, staffIDs []string) ([]SecurityTask, error)
}
