package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/harikeshranjan/TodoX/internal/core"
	"github.com/harikeshranjan/TodoX/internal/storage"
)

var (
	alice = core.Identity{UserID: "user-alice", Username: "alice", Email: "alice@example.com"}
	bob   = core.Identity{UserID: "user-bob", Username: "bob", Email: "bob@example.com"}
)

// testNow is the fixed clock for all date-window tests.
var testNow = time.Date(2025, time.March, 14, 15, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*core.TaskService, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	svc := core.NewTaskServiceWithClock(store, func() time.Time { return testNow })
	return svc, store
}

func mustCreate(t *testing.T, svc *core.TaskService, id core.Identity, in core.TaskInput) *core.Task {
	t.Helper()
	task, err := svc.Create(context.Background(), id, in)
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", in.Title, err)
	}
	return task
}

func taskInput(title string, due time.Time) core.TaskInput {
	return core.TaskInput{
		Title:    title,
		DueDate:  due,
		Priority: core.PriorityMedium,
		Tags:     []string{},
	}
}

func TestCreateDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	task := mustCreate(t, svc, alice, core.TaskInput{
		Title:    "Buy milk",
		DueDate:  testNow.Add(24 * time.Hour),
		Priority: core.PriorityLow,
		Tags:     []string{"errand"},
	})

	if task.ID == "" {
		t.Error("expected an assigned task ID")
	}
	if task.Completed {
		t.Error("new tasks must start not completed")
	}
	if task.UserID != alice.UserID {
		t.Errorf("expected owner %q, got %q", alice.UserID, task.UserID)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	due := testNow.Add(time.Hour)

	tests := []struct {
		name string
		in   core.TaskInput
	}{
		{
			name: "missing title",
			in:   core.TaskInput{DueDate: due, Priority: core.PriorityLow, Tags: []string{}},
		},
		{
			name: "whitespace title",
			in:   core.TaskInput{Title: "   ", DueDate: due, Priority: core.PriorityLow, Tags: []string{}},
		},
		{
			name: "missing due date",
			in:   core.TaskInput{Title: "t", Priority: core.PriorityLow, Tags: []string{}},
		},
		{
			name: "invalid priority",
			in:   core.TaskInput{Title: "t", DueDate: due, Priority: "urgent", Tags: []string{}},
		},
		{
			name: "missing tags",
			in:   core.TaskInput{Title: "t", DueDate: due, Priority: core.PriorityLow},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), alice, tt.in); core.KindOf(err) != core.KindValidation {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUnauthenticatedShortCircuit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	nobody := core.Identity{}

	if _, err := svc.Create(ctx, nobody, taskInput("t", testNow)); core.KindOf(err) != core.KindUnauthorized {
		t.Errorf("Create: expected unauthorized, got %v", err)
	}
	if _, err := svc.ListAll(ctx, nobody); core.KindOf(err) != core.KindUnauthorized {
		t.Errorf("ListAll: expected unauthorized, got %v", err)
	}
	if _, err := svc.ToggleCompletion(ctx, nobody, "some-id", true); core.KindOf(err) != core.KindUnauthorized {
		t.Errorf("ToggleCompletion: expected unauthorized, got %v", err)
	}
	if err := svc.Delete(ctx, nobody, "some-id"); core.KindOf(err) != core.KindUnauthorized {
		t.Errorf("Delete: expected unauthorized, got %v", err)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created := mustCreate(t, svc, alice, taskInput("alice task", testNow.Add(time.Hour)))

	aliceTasks, err := svc.ListAll(ctx, alice)
	if err != nil {
		t.Fatalf("ListAll(alice) failed: %v", err)
	}
	if len(aliceTasks) != 1 || aliceTasks[0].ID != created.ID {
		t.Errorf("expected alice's list to contain exactly her task, got %+v", aliceTasks)
	}

	bobTasks, err := svc.ListAll(ctx, bob)
	if err != nil {
		t.Fatalf("ListAll(bob) failed: %v", err)
	}
	if len(bobTasks) != 0 {
		t.Errorf("expected bob's list to be empty, got %+v", bobTasks)
	}
}

func TestToggleByNonOwnerForbidden(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created := mustCreate(t, svc, alice, taskInput("alice task", testNow.Add(time.Hour)))

	if _, err := svc.ToggleCompletion(ctx, bob, created.ID, true); core.KindOf(err) != core.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	// The task must be left unchanged.
	tasks, _ := svc.ListAll(ctx, alice)
	if len(tasks) != 1 || tasks[0].Completed {
		t.Errorf("expected task to remain not completed, got %+v", tasks)
	}
}

func TestMutationsOnMissingTask(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.ToggleCompletion(ctx, alice, "no-such-id", true); core.KindOf(err) != core.KindNotFound {
		t.Errorf("ToggleCompletion: expected not found, got %v", err)
	}
	if _, err := svc.Update(ctx, alice, "no-such-id", taskInput("t", testNow), false); core.KindOf(err) != core.KindNotFound {
		t.Errorf("Update: expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, alice, "no-such-id"); core.KindOf(err) != core.KindNotFound {
		t.Errorf("Delete: expected not found, got %v", err)
	}
}

func TestListAllSortedByDueDate(t *testing.T) {
	svc, _ := newTestService(t)

	mustCreate(t, svc, alice, taskInput("later", testNow.Add(48*time.Hour)))
	mustCreate(t, svc, alice, taskInput("sooner", testNow.Add(1*time.Hour)))
	mustCreate(t, svc, alice, taskInput("middle", testNow.Add(24*time.Hour)))

	tasks, err := svc.ListAll(context.Background(), alice)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	want := []string{"sooner", "middle", "later"}
	if len(tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(tasks))
	}
	for i, title := range want {
		if tasks[i].Title != title {
			t.Errorf("position %d: expected %q, got %q", i, title, tasks[i].Title)
		}
	}
}

func TestTodayAndOverdueWindows(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	todayStart := time.Date(testNow.Year(), testNow.Month(), testNow.Day(), 0, 0, 0, 0, testNow.Location())

	justBefore := mustCreate(t, svc, alice, taskInput("just before midnight", todayStart.Add(-time.Millisecond)))
	atStart := mustCreate(t, svc, alice, taskInput("at start of day", todayStart))
	lastMoment := mustCreate(t, svc, alice, taskInput("end of day", todayStart.Add(24*time.Hour-time.Millisecond)))
	tomorrow := mustCreate(t, svc, alice, taskInput("tomorrow", todayStart.Add(24*time.Hour)))

	today, err := svc.ListToday(ctx, alice)
	if err != nil {
		t.Fatalf("ListToday failed: %v", err)
	}
	if !containsTask(today, atStart.ID) || !containsTask(today, lastMoment.ID) {
		t.Errorf("expected today's window to include boundary tasks, got %+v", today)
	}
	if containsTask(today, justBefore.ID) || containsTask(today, tomorrow.ID) {
		t.Errorf("today's window must exclude yesterday and tomorrow, got %+v", today)
	}

	overdue, err := svc.ListOverdue(ctx, alice)
	if err != nil {
		t.Fatalf("ListOverdue failed: %v", err)
	}
	if len(overdue) != 1 || overdue[0].ID != justBefore.ID {
		t.Errorf("expected only the pre-midnight task to be overdue, got %+v", overdue)
	}
}

func TestOverdueExcludesCompleted(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	past := mustCreate(t, svc, alice, taskInput("long overdue", testNow.Add(-72*time.Hour)))

	if _, err := svc.ToggleCompletion(ctx, alice, past.ID, true); err != nil {
		t.Fatalf("ToggleCompletion failed: %v", err)
	}

	overdue, err := svc.ListOverdue(ctx, alice)
	if err != nil {
		t.Fatalf("ListOverdue failed: %v", err)
	}
	if containsTask(overdue, past.ID) {
		t.Errorf("completed tasks must never be overdue, got %+v", overdue)
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created := mustCreate(t, svc, alice, core.TaskInput{
		Title:    "draft report",
		DueDate:  testNow.Add(24 * time.Hour),
		Priority: core.PriorityLow,
		Tags:     []string{"work"},
	})

	newDue := testNow.Add(96 * time.Hour)
	updated, err := svc.Update(ctx, alice, created.ID, core.TaskInput{
		Title:    "finish report",
		DueDate:  newDue,
		Priority: core.PriorityHigh,
		Tags:     []string{"work", "urgent"},
	}, true)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	tasks, err := svc.ListAll(ctx, alice)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.Title != "finish report" || !got.DueDate.Equal(newDue) || got.Priority != core.PriorityHigh || !got.Completed {
		t.Errorf("stale fields after update: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "work" || got.Tags[1] != "urgent" {
		t.Errorf("expected replaced tags, got %v", got.Tags)
	}
	if updated.ID != created.ID {
		t.Errorf("update must not change the task ID")
	}
}

func TestUpdateByNonOwnerForbidden(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created := mustCreate(t, svc, alice, taskInput("alice task", testNow.Add(time.Hour)))

	if _, err := svc.Update(ctx, bob, created.ID, taskInput("hijacked", testNow), false); core.KindOf(err) != core.KindForbidden {
		t.Errorf("Update: expected forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, bob, created.ID); core.KindOf(err) != core.KindForbidden {
		t.Errorf("Delete: expected forbidden, got %v", err)
	}
}

func TestListByPriority(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	in := taskInput("high one", testNow.Add(time.Hour))
	in.Priority = core.PriorityHigh
	high := mustCreate(t, svc, alice, in)
	mustCreate(t, svc, alice, taskInput("medium one", testNow.Add(time.Hour)))

	tasks, err := svc.ListByPriority(ctx, alice, core.PriorityHigh)
	if err != nil {
		t.Fatalf("ListByPriority failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != high.ID {
		t.Errorf("expected only the high-priority task, got %+v", tasks)
	}

	if _, err := svc.ListByPriority(ctx, alice, "urgent"); core.KindOf(err) != core.KindValidation {
		t.Errorf("expected validation error for unknown priority, got %v", err)
	}
}

func TestListByTagAndDistinctTags(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	in := taskInput("errand task", testNow.Add(time.Hour))
	in.Tags = []string{"errand", "home"}
	tagged := mustCreate(t, svc, alice, in)

	in2 := taskInput("work task", testNow.Add(time.Hour))
	in2.Tags = []string{"work", "home"}
	mustCreate(t, svc, alice, in2)

	// Another user's tags must not leak into alice's views.
	in3 := taskInput("bob task", testNow.Add(time.Hour))
	in3.Tags = []string{"secret"}
	mustCreate(t, svc, bob, in3)

	byTag, err := svc.ListByTag(ctx, alice, "errand")
	if err != nil {
		t.Fatalf("ListByTag failed: %v", err)
	}
	if len(byTag) != 1 || byTag[0].ID != tagged.ID {
		t.Errorf("expected exactly the errand task, got %+v", byTag)
	}

	tags, err := svc.ListDistinctTags(ctx, alice)
	if err != nil {
		t.Fatalf("ListDistinctTags failed: %v", err)
	}
	want := map[string]bool{"errand": true, "home": true, "work": true}
	if len(tags) != len(want) {
		t.Fatalf("expected %d distinct tags, got %v", len(want), tags)
	}
	for _, tag := range tags {
		if !want[tag] {
			t.Errorf("unexpected tag %q", tag)
		}
	}
}

func containsTask(tasks []core.Task, id string) bool {
	for _, t := range tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}
