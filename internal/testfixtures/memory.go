package testfixtures

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/campus-booking/internal/application"
	"github.com/example/campus-booking/internal/persistence"
	"github.com/example/campus-booking/internal/recurrence"
)

// MemoryStore is an in-memory implementation of the application
// collaborator interfaces. It mirrors the SQLite behaviour tests depend
// on: persistence sentinel errors and active-cell uniqueness.
type MemoryStore struct {
	mu        sync.RWMutex
	bookings  map[string]application.Booking
	resources map[string]application.Resource
	slots     map[string]application.Slot
	staff     map[string]application.StaffMember
	tasks     map[string]application.SecurityTask
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings:  make(map[string]application.Booking),
		resources: make(map[string]application.Resource),
		slots:     make(map[string]application.Slot),
		staff:     make(map[string]application.StaffMember),
		tasks:     make(map[string]application.SecurityTask),
	}
}

// AddResource seeds a resource.
func (s *MemoryStore) AddResource(resource application.Resource) {
	s.mu.Lock()
	s.resources[resource.ID] = resource
	s.mu.Unlock()
}

// AddSlot seeds a slot.
func (s *MemoryStore) AddSlot(slot application.Slot) {
	s.mu.Lock()
	s.slots[slot.ID] = slot
	s.mu.Unlock()
}

// AddStaff seeds a staff account.
func (s *MemoryStore) AddStaff(member application.StaffMember) {
	s.mu.Lock()
	s.staff[member.ID] = member
	s.mu.Unlock()
}

// AddBooking seeds a booking without uniqueness checks.
func (s *MemoryStore) AddBooking(booking application.Booking) {
	s.mu.Lock()
	s.bookings[booking.ID] = booking
	s.mu.Unlock()
}

// AddTask seeds a security task.
func (s *MemoryStore) AddTask(task application.SecurityTask) {
	s.mu.Lock()
	s.tasks[task.ID] = task
	s.mu.Unlock()
}

// CreateBooking stores a booking, enforcing active-cell uniqueness the way
// the SQLite partial unique index does.
func (s *MemoryStore) CreateBooking(_ context.Context, booking application.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bookings[booking.ID]; exists {
		return persistence.ErrDuplicate
	}
	for _, existing := range s.bookings {
		if existing.Status == application.BookingCancelled {
			continue
		}
		if existing.ResourceID == booking.ResourceID &&
			sameDate(existing.Date, booking.Date) &&
			existing.SlotID == booking.SlotID {
			return persistence.ErrDuplicate
		}
	}
	s.bookings[booking.ID] = booking
	return nil
}

// GetBooking retrieves a booking by id.
func (s *MemoryStore) GetBooking(_ context.Context, id string) (application.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.bookings[id]
	if !ok {
		return application.Booking{}, persistence.ErrNotFound
	}
	return booking, nil
}

// UpdateBooking replaces a stored booking.
func (s *MemoryStore) UpdateBooking(_ context.Context, booking application.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[booking.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.bookings[booking.ID] = booking
	return nil
}

// FindConflicting returns the active booking occupying a cell, or nil.
func (s *MemoryStore) FindConflicting(_ context.Context, resourceID string, date time.Time, slotID string) (*application.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, booking := range s.bookings {
		if booking.Status == application.BookingCancelled {
			continue
		}
		if booking.ResourceID == resourceID && sameDate(booking.Date, date) && booking.SlotID == slotID {
			found := booking
			return &found, nil
		}
	}
	return nil, nil
}

// ListByRecurrenceGroup returns group members ordered by date then slot.
func (s *MemoryStore) ListByRecurrenceGroup(_ context.Context, groupID string) ([]application.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := make([]application.Booking, 0)
	for _, booking := range s.bookings {
		if booking.RecurrenceGroupID != nil && *booking.RecurrenceGroupID == groupID {
			members = append(members, booking)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].Date.Equal(members[j].Date) {
			return members[i].SlotID < members[j].SlotID
		}
		return members[i].Date.Before(members[j].Date)
	})
	return members, nil
}

// ListByRequester returns a requester's bookings ordered by date then slot.
func (s *MemoryStore) ListByRequester(_ context.Context, requesterID string) ([]application.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings := make([]application.Booking, 0)
	for _, booking := range s.bookings {
		if booking.RequesterID == requesterID {
			bookings = append(bookings, booking)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].Date.Equal(bookings[j].Date) {
			return bookings[i].SlotID < bookings[j].SlotID
		}
		return bookings[i].Date.Before(bookings[j].Date)
	})
	return bookings, nil
}

// GetResource retrieves a resource by id.
func (s *MemoryStore) GetResource(_ context.Context, id string) (application.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resource, ok := s.resources[id]
	if !ok {
		return application.Resource{}, persistence.ErrNotFound
	}
	return resource, nil
}

// FindAlternative returns the smallest sufficient free resource of the
// category, lowest id winning ties.
func (s *MemoryStore) FindAlternative(ctx context.Context, category string, minCapacity int, excludingID string, date time.Time, slotID string) (application.Resource, error) {
	s.mu.RLock()
	candidates := make([]application.Resource, 0)
	for _, resource := range s.resources {
		if resource.Category != category || resource.Capacity < minCapacity || resource.ID == excludingID {
			continue
		}
		candidates = append(candidates, resource)
	}
	s.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Capacity == candidates[j].Capacity {
			return candidates[i].ID < candidates[j].ID
		}
		return candidates[i].Capacity < candidates[j].Capacity
	})

	for _, candidate := range candidates {
		occupied, err := s.FindConflicting(ctx, candidate.ID, date, slotID)
		if err != nil {
			return application.Resource{}, err
		}
		if occupied == nil {
			return candidate, nil
		}
	}
	return application.Resource{}, persistence.ErrNotFound
}

// GetSlot retrieves a slot by id.
func (s *MemoryStore) GetSlot(_ context.Context, id string) (application.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[id]
	if !ok {
		return application.Slot{}, persistence.ErrNotFound
	}
	return slot, nil
}

// ListSlots returns all slots in display order.
func (s *MemoryStore) ListSlots(_ context.Context) ([]application.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slots := make([]application.Slot, 0, len(s.slots))
	for _, slot := range s.slots {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].SortOrder == slots[j].SortOrder {
			return slots[i].ID < slots[j].ID
		}
		return slots[i].SortOrder < slots[j].SortOrder
	})
	return slots, nil
}

// ListEligibleStaff returns staff matching a role at a site, ordered by id.
func (s *MemoryStore) ListEligibleStaff(_ context.Context, role, siteID string) ([]application.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := make([]application.StaffMember, 0)
	for _, member := range s.staff {
		if member.Role == role && member.SiteID == siteID {
			members = append(members, member)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

// CreateTask stores a security task.
func (s *MemoryStore) CreateTask(_ context.Context, task application.SecurityTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return persistence.ErrDuplicate
	}
	s.tasks[task.ID] = task
	return nil
}

// GetTask retrieves a task by id.
func (s *MemoryStore) GetTask(_ context.Context, id string) (application.SecurityTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return application.SecurityTask{}, persistence.ErrNotFound
	}
	return task, nil
}

// UpdateTask replaces a stored task.
func (s *MemoryStore) UpdateTask(_ context.Context, task application.SecurityTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.tasks[task.ID] = task
	return nil
}

// ListPendingTasksFor returns pending tasks assigned to the given staff,
// ordered by creation time then id.
func (s *MemoryStore) ListPendingTasksFor(_ context.Context, staffIDs []string) ([]application.SecurityTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(staffIDs))
	for _, id := range staffIDs {
		wanted[id] = struct{}{}
	}

	tasks := make([]application.SecurityTask, 0)
	for _, task := range s.tasks {
		if task.Status != application.TaskPending {
			continue
		}
		if _, ok := wanted[task.AssignedToUserID]; ok {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// TaskCount reports the number of stored tasks.
func (s *MemoryStore) TaskCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func sameDate(a, b time.Time) bool {
	return recurrence.DateOf(a).Equal(recurrence.DateOf(b))
}

// Notice records a delivered notification.
type Notice struct {
	UserID  string
	Message string
}

// NotificationRecorder captures notifications for assertions. Err, when
// set, is returned from every Notify call.
type NotificationRecorder struct {
	mu      sync.Mutex
	Err     error
	notices []Notice
}

// Notify records the notice.
func (r *NotificationRecorder) Notify(_ context.Context, userID, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.notices = append(r.notices, Notice{UserID: userID, Message: message})
	return nil
}

// Notices returns a copy of the recorded notifications.
func (r *NotificationRecorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}
