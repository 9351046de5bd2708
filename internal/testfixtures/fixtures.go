// Package testfixtures provides deterministic fixtures, collaborator
// doubles and harnesses shared by the package level tests.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/campus-booking/internal/application"
	"github.com/example/campus-booking/internal/persistence"
	"github.com/example/campus-booking/internal/recurrence"
)

var (
	resourceCounter uint64
	slotCounter     uint64
	staffCounter    uint64
	bookingCounter  uint64
	taskCounter     uint64
)

var referenceTime = time.Date(2025, time.March, 3, 8, 0, 0, 0, recurrence.Location())

// ReferenceTime returns the canonical baseline timestamp used by fixtures,
// a Monday morning in ICT.
func ReferenceTime() time.Time {
	return referenceTime
}

// ---------------------------- Resource fixtures ---------------------------

// ResourceFixture represents a deterministic bookable resource.
type ResourceFixture struct {
	ID        string
	Name      string
	Category  string
	Capacity  int
	SiteID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResourceOption configures the generated resource fixture.
type ResourceOption func(*ResourceFixture)

// NewResourceFixture returns a deterministic resource fixture with optional overrides.
func NewResourceFixture(opts ...ResourceOption) ResourceFixture {
	idx := atomic.AddUint64(&resourceCounter, 1)
	id := fmt.Sprintf("room-%03d", idx)
	fixture := ResourceFixture{
		ID:        id,
		Name:      fmt.Sprintf("Room %03d", idx),
		Category:  "classroom",
		Capacity:  int(30 + idx%3*10),
		SiteID:    "site-1",
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithResourceID overrides the generated resource ID.
func WithResourceID(id string) ResourceOption {
	return func(f *ResourceFixture) { f.ID = id }
}

// WithResourceName overrides the generated name.
func WithResourceName(name string) ResourceOption {
	return func(f *ResourceFixture) { f.Name = name }
}

// WithResourceCategory overrides the category.
func WithResourceCategory(category string) ResourceOption {
	return func(f *ResourceFixture) { f.Category = category }
}

// WithResourceCapacity overrides the capacity.
func WithResourceCapacity(capacity int) ResourceOption {
	return func(f *ResourceFixture) { f.Capacity = capacity }
}

// WithResourceSite overrides the site ID.
func WithResourceSite(siteID string) ResourceOption {
	return func(f *ResourceFixture) { f.SiteID = siteID }
}

// Application returns the fixture as an application.Resource value.
func (f ResourceFixture) Application() application.Resource {
	return application.Resource{
		ID:       f.ID,
		Name:     f.Name,
		Category: f.Category,
		Capacity: f.Capacity,
		SiteID:   f.SiteID,
	}
}

// Persistence returns the fixture as a persistence.Resource value.
func (f ResourceFixture) Persistence() persistence.Resource {
	return persistence.Resource{
		ID:        f.ID,
		Name:      f.Name,
		Category:  f.Category,
		Capacity:  f.Capacity,
		SiteID:    f.SiteID,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// ------------------------------ Slot fixtures -----------------------------

// SlotFixture represents a deterministic daily time slot.
type SlotFixture struct {
	ID        string
	Name      string
	StartTime string
	EndTime   string
	SortOrder int
}

// SlotOption configures the generated slot fixture.
type SlotOption func(*SlotFixture)

// NewSlotFixture returns a deterministic slot fixture with optional overrides.
func NewSlotFixture(opts ...SlotOption) SlotFixture {
	idx := atomic.AddUint64(&slotCounter, 1)
	hour := 7 + int(idx)
	fixture := SlotFixture{
		ID:        fmt.Sprintf("slot-%03d", idx),
		Name:      fmt.Sprintf("Period %d", idx),
		StartTime: fmt.Sprintf("%02d:00", hour),
		EndTime:   fmt.Sprintf("%02d:45", hour),
		SortOrder: int(idx),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSlotID overrides the generated slot ID.
func WithSlotID(id string) SlotOption {
	return func(f *SlotFixture) { f.ID = id }
}

// WithSlotName overrides the generated name.
func WithSlotName(name string) SlotOption {
	return func(f *SlotFixture) { f.Name = name }
}

// WithSlotTimes sets the start and end display times.
func WithSlotTimes(start, end string) SlotOption {
	return func(f *SlotFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithSlotSortOrder overrides the display order.
func WithSlotSortOrder(order int) SlotOption {
	return func(f *SlotFixture) { f.SortOrder = order }
}

// Application returns the fixture as an application.Slot value.
func (f SlotFixture) Application() application.Slot {
	return application.Slot{
		ID:        f.ID,
		Name:      f.Name,
		StartTime: f.StartTime,
		EndTime:   f.EndTime,
		SortOrder: f.SortOrder,
	}
}

// Persistence returns the fixture as a persistence.Slot value.
func (f SlotFixture) Persistence() persistence.Slot {
	return persistence.Slot{
		ID:        f.ID,
		Name:      f.Name,
		StartTime: f.StartTime,
		EndTime:   f.EndTime,
		SortOrder: f.SortOrder,
	}
}

// ----------------------------- Staff fixtures -----------------------------

// StaffFixture represents a deterministic staff account.
type StaffFixture struct {
	ID          string
	DisplayName string
	Role        string
	SiteID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StaffOption configures the generated staff fixture.
type StaffOption func(*StaffFixture)

// NewStaffFixture returns a deterministic staff fixture with optional overrides.
func NewStaffFixture(opts ...StaffOption) StaffFixture {
	idx := atomic.AddUint64(&staffCounter, 1)
	id := fmt.Sprintf("staff-%03d", idx)
	fixture := StaffFixture{
		ID:          id,
		DisplayName: fmt.Sprintf("Staff %03d", idx),
		Role:        "security",
		SiteID:      "site-1",
		CreatedAt:   referenceTime,
		UpdatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithStaffID overrides the generated staff ID.
func WithStaffID(id string) StaffOption {
	return func(f *StaffFixture) { f.ID = id }
}

// WithStaffName overrides the display name.
func WithStaffName(name string) StaffOption {
	return func(f *StaffFixture) { f.DisplayName = name }
}

// WithStaffRole overrides the role.
func WithStaffRole(role string) StaffOption {
	return func(f *StaffFixture) { f.Role = role }
}

// WithStaffSite overrides the site ID.
func WithStaffSite(siteID string) StaffOption {
	return func(f *StaffFixture) { f.SiteID = siteID }
}

// Application returns the fixture as an application.StaffMember value.
func (f StaffFixture) Application() application.StaffMember {
	return application.StaffMember{
		ID:          f.ID,
		DisplayName: f.DisplayName,
		Role:        f.Role,
		SiteID:      f.SiteID,
	}
}

// Persistence returns the fixture as a persistence.StaffMember value.
func (f StaffFixture) Persistence() persistence.StaffMember {
	return persistence.StaffMember{
		ID:          f.ID,
		DisplayName: f.DisplayName,
		Role:        f.Role,
		SiteID:      f.SiteID,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// ---------------------------- Booking fixtures ----------------------------

// BookingFixture represents a deterministic booking record.
type BookingFixture struct {
	ID                string
	ResourceID        string
	Date              time.Time
	SlotID            string
	Purpose           string
	Status            application.BookingStatus
	RequesterID       string
	RequesterName     string
	RequesterRole     string
	RecurrenceGroupID *string
	RecurrencePattern *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a deterministic booking fixture with optional overrides.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	fixture := BookingFixture{
		ID:            fmt.Sprintf("booking-%03d", idx),
		ResourceID:    "room-001",
		Date:          recurrence.DateOf(referenceTime.AddDate(0, 0, int(idx)-1)),
		SlotID:        "slot-001",
		Purpose:       fmt.Sprintf("Lecture %03d", idx),
		Status:        application.BookingPending,
		RequesterID:   "user-001",
		RequesterName: "User 001",
		RequesterRole: "user",
		CreatedAt:     referenceTime,
		UpdatedAt:     referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingID overrides the generated booking ID.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) { f.ID = id }
}

// WithBookingCell sets the resource, date and slot of the booking.
func WithBookingCell(resourceID string, date time.Time, slotID string) BookingOption {
	return func(f *BookingFixture) {
		f.ResourceID = resourceID
		f.Date = recurrence.DateOf(date)
		f.SlotID = slotID
	}
}

// WithBookingStatus overrides the lifecycle status.
func WithBookingStatus(status application.BookingStatus) BookingOption {
	return func(f *BookingFixture) { f.Status = status }
}

// WithBookingRequester sets the requester identity.
func WithBookingRequester(id, name, role string) BookingOption {
	return func(f *BookingFixture) {
		f.RequesterID = id
		f.RequesterName = name
		f.RequesterRole = role
	}
}

// WithBookingGroup sets the recurrence group ID and pattern label.
func WithBookingGroup(groupID, pattern string) BookingOption {
	return func(f *BookingFixture) {
		f.RecurrenceGroupID = &groupID
		f.RecurrencePattern = &pattern
	}
}

// WithBookingPurpose overrides the purpose.
func WithBookingPurpose(purpose string) BookingOption {
	return func(f *BookingFixture) { f.Purpose = purpose }
}

// Application returns the fixture as an application.Booking value.
func (f BookingFixture) Application() application.Booking {
	return application.Booking{
		ID:                f.ID,
		ResourceID:        f.ResourceID,
		Date:              f.Date,
		SlotID:            f.SlotID,
		Purpose:           f.Purpose,
		Status:            f.Status,
		RequesterID:       f.RequesterID,
		RequesterName:     f.RequesterName,
		RequesterRole:     f.RequesterRole,
		RecurrenceGroupID: copyStringPtr(f.RecurrenceGroupID),
		RecurrencePattern: copyStringPtr(f.RecurrencePattern),
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Booking value.
func (f BookingFixture) Persistence() persistence.Booking {
	return persistence.Booking{
		ID:                f.ID,
		ResourceID:        f.ResourceID,
		Date:              f.Date,
		SlotID:            f.SlotID,
		Purpose:           f.Purpose,
		Status:            persistence.BookingStatus(f.Status),
		RequesterID:       f.RequesterID,
		RequesterName:     f.RequesterName,
		RequesterRole:     f.RequesterRole,
		RecurrenceGroupID: copyStringPtr(f.RecurrenceGroupID),
		RecurrencePattern: copyStringPtr(f.RecurrencePattern),
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

// ------------------------------ Task fixtures -----------------------------

// TaskFixture represents a deterministic security task record.
type TaskFixture struct {
	ID               string
	Title            string
	Description      string
	Status           application.TaskStatus
	Priority         application.TaskPriority
	AssignedToUserID string
	CreatedBy        string
	BookingID        *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TaskOption configures the generated task fixture.
type TaskOption func(*TaskFixture)

// NewTaskFixture returns a deterministic task fixture with optional overrides.
func NewTaskFixture(opts ...TaskOption) TaskFixture {
	idx := atomic.AddUint64(&taskCounter, 1)
	fixture := TaskFixture{
		ID:               fmt.Sprintf("task-%03d", idx),
		Title:            fmt.Sprintf("Security check %03d", idx),
		Description:      "",
		Status:           application.TaskPending,
		Priority:         application.PriorityNormal,
		AssignedToUserID: "staff-001",
		CreatedBy:        "staff-admin",
		CreatedAt:        referenceTime.Add(time.Duration(idx) * time.Minute),
		UpdatedAt:        referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithTaskID overrides the generated task ID.
func WithTaskID(id string) TaskOption {
	return func(f *TaskFixture) { f.ID = id }
}

// WithTaskAssignee sets the assigned staff member.
func WithTaskAssignee(staffID string) TaskOption {
	return func(f *TaskFixture) { f.AssignedToUserID = staffID }
}

// WithTaskStatus overrides the lifecycle status.
func WithTaskStatus(status application.TaskStatus) TaskOption {
	return func(f *TaskFixture) { f.Status = status }
}

// WithTaskPriority overrides the priority.
func WithTaskPriority(priority application.TaskPriority) TaskOption {
	return func(f *TaskFixture) { f.Priority = priority }
}

// WithTaskBooking links the task to a booking.
func WithTaskBooking(bookingID string) TaskOption {
	return func(f *TaskFixture) { f.BookingID = &bookingID }
}

// Application returns the fixture as an application.SecurityTask value.
func (f TaskFixture) Application() application.SecurityTask {
	return application.SecurityTask{
		ID:               f.ID,
		Title:            f.Title,
		Description:      f.Description,
		Status:           f.Status,
		Priority:         f.Priority,
		AssignedToUserID: f.AssignedToUserID,
		CreatedBy:        f.CreatedBy,
		BookingID:        copyStringPtr(f.BookingID),
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.SecurityTask value.
func (f TaskFixture) Persistence() persistence.SecurityTask {
	return persistence.SecurityTask{
		ID:               f.ID,
		Title:            f.Title,
		Description:      f.Description,
		Status:           persistence.TaskStatus(f.Status),
		Priority:         persistence.TaskPriority(f.Priority),
		AssignedToUserID: f.AssignedToUserID,
		CreatedBy:        f.CreatedBy,
		BookingID:        copyStringPtr(f.BookingID),
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

// helper to deep copy optional strings.
func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
