package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/campus-booking/internal/application"
	"github.com/example/campus-booking/internal/assignment"
	"github.com/example/campus-booking/internal/testfixtures"
)

type taskHarness struct {
	store *testfixtures.MemoryStore
	tasks *application.SecurityTaskService
}

func newTaskHarness(t *testing.T) *taskHarness {
	t.Helper()

	store := testfixtures.NewMemoryStore()
	store.AddStaff(testfixtures.NewStaffFixture(testfixtures.WithStaffID("sec-a"), testfixtures.WithStaffName("An")).Application())
	store.AddStaff(testfixtures.NewStaffFixture(testfixtures.WithStaffID("sec-b"), testfixtures.WithStaffName("Binh")).Application())
	store.AddStaff(testfixtures.NewStaffFixture(testfixtures.WithStaffID("sec-c"), testfixtures.WithStaffName("Chau")).Application())

	factory := testfixtures.NewServiceFactory()
	tasks := factory.NewSecurityTaskService(testfixtures.TaskServiceDeps{
		Staff: store,
		Tasks: store,
	})
	return &taskHarness{store: store, tasks: tasks}
}

func pendingFor(staffID string) application.SecurityTask {
	return testfixtures.NewTaskFixture(testfixtures.WithTaskAssignee(staffID)).Application()
}

func TestCreateTaskAssignsLeastLoaded(t *testing.T) {
	t.Parallel()

	h := newTaskHarness(t)
	h.store.AddTask(pendingFor("sec-a"))
	h.store.AddTask(pendingFor("sec-a"))
	h.store.AddTask(pendingFor("sec-b"))

	created, err := h.tasks.CreateTask(context.Background(), moderator(), application.CreateTaskInput{
		Title:  "Patrol main gate",
		SiteID: "site-1",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if created.AssignedToUserID != "sec-c" {
		t.Fatalf("expected least loaded sec-c, got %q", created.AssignedToUserID)
	}
	if created.Status != application.TaskPending {
		t.Fatalf("expected pending status, got %q", created.Status)
	}
	if created.Priority != application.PriorityNormal {
		t.Fatalf("expected normal priority default, got %q", created.Priority)
	}
}

func TestCreateTaskBreaksTiesByID(t *testing.T) {
	t.Parallel()

	h := newTaskHarness(t)
	h.store.AddTask(pendingFor("sec-a"))
	h.store.AddTask(pendingFor("sec-b"))
	h.store.AddTask(pendingFor("sec-c"))

	for i := 0; i < 3; i++ {
		created, err := h.tasks.CreateTask(context.Background(), moderator(), application.CreateTaskInput{
			Title:  "Patrol",
			SiteID: "site-1",
		})
		if err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
		want := []string{"sec-a", "sec-b", "sec-c"}[i]
		if created.AssignedToUserID != want {
			t.Fatalf("round %d: expected %q, got %q", i, want, created.AssignedToUserID)
		}
	}
}

func TestCreateTaskIgnoresCompletedTasks(t *testing.T) {
	t.Parallel()

	h := newTaskHarness(t)
	h.store.AddTask(pendingFor("sec-b"))
	h.store.AddTask(pendingFor("sec-c"))
	done := testfixtures.NewTaskFixture(
		testfixtures.WithTaskAssignee("sec-b"),
		testfixtures.WithTaskStatus(application.TaskCompleted),
	).Application()
	h.store.AddTask(done)

	created, err := h.tasks.CreateTask(context.Background(), moderator(), application.CreateTaskInput{
		Title:  "Evening sweep",
		SiteID: "site-1",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.AssignedToUserID != "sec-a" {
		t.Fatalf("completed tasks must not count as load, got %q", created.AssignedToUserID)
	}
}

func TestCreateTaskNoStaffAvailable(t *testing.T) {
	t.Parallel()

	h := newTaskHarness(t)
	_, err := h.tasks.CreateTask(context.Background(), moderator(), application.CreateTaskInput{
		Title:  "Patrol",
		SiteID: "site-404",
	})
	if !errors.Is(err, assignment.ErrNoStaffAvailable) {
		t.Fatalf("expected ErrNoStaffAvailable, got %v", err)
	}
}

func TestCreateTaskAuthorizationAndValidation(t *testing.T) {
	t.Parallel()

	h := newTaskHarness(t)
	ctx := context.Background()

	if _, err := h.tasks.CreateTask(ctx, requester(), application.CreateTaskInput{Title: "Patrol", SiteID: "site-1"}); !errors.Is(err, application.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	var vErr *application.ValidationError
	if _, err := h.tasks.CreateTask(ctx, moderator(), application.CreateTaskInput{SiteID: "site-1"}); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for missing title, got %v", err)
	}
	if _, err := h.tasks.CreateTask(ctx, moderator(), application.CreateTaskInput{Title: "Patrol", SiteID: "site-1", Priority: "urgent"}); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for priority, got %v", err)
	}
}

func TestCompleteTask(t *testing.T) {
	t.Parallel()

	h := newTaskHarness(t)
	ctx := context.Background()
	task := pendingFor("sec-a")
	h.store.AddTask(task)

	assignee := application.Principal{UserID: "sec-a", Role: application.RoleSecurity}
	other := application.Principal{UserID: "sec-b", Role: application.RoleSecurity}

	if _, err := h.tasks.CompleteTask(ctx, other, task.ID, ""); !errors.Is(err, application.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-assignee, got %v", err)
	}

	completed, err := h.tasks.CompleteTask(ctx, assignee, task.ID, "all clear")
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if completed.Status != application.TaskCompleted {
		t.Fatalf("expected completed status, got %q", completed.Status)
	}
	if completed.CompletedAt == nil {
		t.Fatal("expected completion timestamp")
	}
	if completed.ReportNote == nil || *completed.ReportNote != "all clear" {
		t.Fatal("expected report note recorded")
	}

	if _, err := h.tasks.CompleteTask(ctx, assignee, task.ID, "again"); !errors.Is(err, application.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := h.tasks.CompleteTask(ctx, assignee, "task-404", ""); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSiteWorkloadIsComputedFresh(t *testing.T) {
	t.Parallel()

	h := newTaskHarness(t)
	ctx := context.Background()
	h.store.AddTask(pendingFor("sec-a"))
	h.store.AddTask(pendingFor("sec-a"))

	load, err := h.tasks.SiteWorkload(ctx, "site-1")
	if err != nil {
		t.Fatalf("SiteWorkload: %v", err)
	}
	if load["sec-a"] != 2 || load["sec-b"] != 0 || load["sec-c"] != 0 {
		t.Fatalf("unexpected load: %v", load)
	}

	h.store.AddTask(pendingFor("sec-b"))
	load, err = h.tasks.SiteWorkload(ctx, "site-1")
	if err != nil {
		t.Fatalf("SiteWorkload: %v", err)
	}
	if load["sec-b"] != 1 {
		t.Fatalf("expected fresh load for sec-b, got %d", load["sec-b"])
	}
}
