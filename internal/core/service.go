package core

import (
	"context"
	"errors"
	"strings"
	"time"
)

// TaskService implements the access-controlled task operations. Every
// operation requires a validated Identity and scopes all store access
// to that user; single-record operations additionally verify ownership
// before acting.
type TaskService struct {
	tasks TaskStore
	now   func() time.Time
}

// NewTaskService creates a task service backed by the given store.
func NewTaskService(tasks TaskStore) *TaskService {
	return &TaskService{tasks: tasks, now: time.Now}
}

// NewTaskServiceWithClock creates a task service with an explicit clock
// (for testing date-window views).
func NewTaskServiceWithClock(tasks TaskStore, now func() time.Time) *TaskService {
	return &TaskService{tasks: tasks, now: now}
}

// requireIdentity short-circuits before any store access when the
// caller is not authenticated.
func requireIdentity(id Identity) error {
	if id.UserID == "" {
		return UnauthorizedErr("unauthorized")
	}
	return nil
}

// requireOwner is the single ownership guard: a task may only be read
// by id, mutated, or deleted by the user recorded at creation.
func requireOwner(id Identity, t *Task) error {
	if t.UserID != id.UserID {
		return ForbiddenErr("you can only access your own tasks")
	}
	return nil
}

func validateTaskInput(in TaskInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return ValidationErr("title is required")
	}
	if in.DueDate.IsZero() {
		return ValidationErr("due date is required")
	}
	if !ValidPriority(in.Priority) {
		return ValidationErr("invalid priority value")
	}
	if in.Tags == nil {
		return ValidationErr("tags must be a list of strings")
	}
	return nil
}

// Create validates the input and stores a new task owned by the caller.
// New tasks always start not completed.
func (s *TaskService) Create(ctx context.Context, id Identity, in TaskInput) (*Task, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if err := validateTaskInput(in); err != nil {
		return nil, err
	}

	now := s.now()
	t := &Task{
		Title:     strings.TrimSpace(in.Title),
		DueDate:   in.DueDate,
		Priority:  in.Priority,
		Tags:      in.Tags,
		Completed: false,
		UserID:    id.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tasks.InsertTask(ctx, t); err != nil {
		return nil, InternalErr("failed to create task", err)
	}
	return t, nil
}

// ListAll returns every task owned by the caller, ascending by due date.
func (s *TaskService) ListAll(ctx context.Context, id Identity) ([]Task, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return s.list(ctx, id, TaskFilter{SortByDue: true})
}

// ListByPriority returns the caller's tasks with an exact priority match.
func (s *TaskService) ListByPriority(ctx context.Context, id Identity, priority string) ([]Task, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if !ValidPriority(priority) {
		return nil, ValidationErr("invalid priority value")
	}
	return s.list(ctx, id, TaskFilter{Priority: priority, SortByDue: true})
}

// ListByTag returns the caller's tasks carrying the given tag.
func (s *TaskService) ListByTag(ctx context.Context, id Identity, tag string) ([]Task, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if tag == "" {
		return nil, ValidationErr("tag is required")
	}
	return s.list(ctx, id, TaskFilter{Tag: tag, SortByDue: true})
}

// ListDistinctTags returns every distinct tag across the caller's
// tasks, no duplicates, order unspecified.
func (s *TaskService) ListDistinctTags(ctx context.Context, id Identity) ([]string, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	tags, err := s.tasks.DistinctTags(ctx, id.UserID)
	if err != nil {
		return nil, InternalErr("failed to fetch tags", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// ListToday returns the caller's tasks due within the current local
// day: [start of today, start of tomorrow).
func (s *TaskService) ListToday(ctx context.Context, id Identity) ([]Task, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	start := startOfDay(s.now())
	end := start.AddDate(0, 0, 1)
	return s.list(ctx, id, TaskFilter{DueFrom: &start, DueBefore: &end, SortByDue: true})
}

// ListOverdue returns the caller's incomplete tasks due before the
// start of the current local day.
func (s *TaskService) ListOverdue(ctx context.Context, id Identity) ([]Task, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	start := startOfDay(s.now())
	notDone := false
	return s.list(ctx, id, TaskFilter{DueBefore: &start, Completed: &notDone, SortByDue: true})
}

// ToggleCompletion sets only the completed flag of one of the caller's
// tasks.
func (s *TaskService) ToggleCompletion(ctx context.Context, id Identity, taskID string, completed bool) (*Task, error) {
	t, err := s.ownedTask(ctx, id, taskID)
	if err != nil {
		return nil, err
	}
	t.Completed = completed
	t.UpdatedAt = s.now()
	if err := s.tasks.UpdateTask(ctx, t); err != nil {
		return nil, InternalErr("failed to update task", err)
	}
	return t, nil
}

// Update replaces every mutable field of one of the caller's tasks.
func (s *TaskService) Update(ctx context.Context, id Identity, taskID string, in TaskInput, completed bool) (*Task, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if err := validateTaskInput(in); err != nil {
		return nil, err
	}
	t, err := s.ownedTask(ctx, id, taskID)
	if err != nil {
		return nil, err
	}
	t.Title = strings.TrimSpace(in.Title)
	t.DueDate = in.DueDate
	t.Priority = in.Priority
	t.Tags = in.Tags
	t.Completed = completed
	t.UpdatedAt = s.now()
	if err := s.tasks.UpdateTask(ctx, t); err != nil {
		return nil, InternalErr("failed to update task", err)
	}
	return t, nil
}

// Delete removes one of the caller's tasks.
func (s *TaskService) Delete(ctx context.Context, id Identity, taskID string) error {
	if _, err := s.ownedTask(ctx, id, taskID); err != nil {
		return err
	}
	if err := s.tasks.DeleteTask(ctx, taskID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return NotFoundErr("task not found")
		}
		return InternalErr("failed to delete task", err)
	}
	return nil
}

// ownedTask loads a task by id and enforces the ownership invariant.
func (s *TaskService) ownedTask(ctx context.Context, id Identity, taskID string) (*Task, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	t, err := s.tasks.TaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NotFoundErr("task not found")
		}
		return nil, InternalErr("failed to load task", err)
	}
	if err := requireOwner(id, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) list(ctx context.Context, id Identity, f TaskFilter) ([]Task, error) {
	tasks, err := s.tasks.TasksByOwner(ctx, id.UserID, f)
	if err != nil {
		return nil, InternalErr("failed to fetch tasks", err)
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
