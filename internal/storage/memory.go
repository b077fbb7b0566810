// Package storage provides the persistence backends: MongoDB (the
// primary document store), SQLite (embedded), and an in-memory store
// used by tests and local development. All three implement core.Store.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/harikeshranjan/TodoX/internal/core"
)

// GenerateID returns a new opaque record identifier.
func GenerateID() string {
	return uuid.New().String()
}

// MemoryStore is a mutex-guarded in-memory implementation of
// core.Store. It backs tests and the "memory" driver.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]core.User
	tasks map[string]core.Task
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]core.User),
		tasks: make(map[string]core.Task),
	}
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// InsertUser stores a user, assigning an ID if unset. Duplicate email
// or username returns core.ErrDuplicate.
func (s *MemoryStore) InsertUser(ctx context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return core.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = GenerateID()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryStore) UserByID(ctx context.Context, id string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) UserByEmail(ctx context.Context, email string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *MemoryStore) UserByUsername(ctx context.Context, username string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, core.ErrNotFound
}

// InsertTask stores a task, assigning an ID if unset.
func (s *MemoryStore) InsertTask(ctx context.Context, t *core.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = GenerateID()
	}
	s.tasks[t.ID] = cloneTask(*t)
	return nil
}

func (s *MemoryStore) TaskByID(ctx context.Context, id string) (*core.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	t = cloneTask(t)
	return &t, nil
}

func (s *MemoryStore) TasksByOwner(ctx context.Context, userID string, f core.TaskFilter) ([]core.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Task
	for _, t := range s.tasks {
		if t.UserID != userID || !matchesFilter(t, f) {
			continue
		}
		out = append(out, cloneTask(t))
	}
	if f.SortByDue {
		sort.Slice(out, func(i, j int) bool {
			return out[i].DueDate.Before(out[j].DueDate)
		})
	}
	return out, nil
}

func (s *MemoryStore) DistinctTags(ctx context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var tags []string
	for _, t := range s.tasks {
		if t.UserID != userID {
			continue
		}
		for _, tag := range t.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags, nil
}

func (s *MemoryStore) UpdateTask(ctx context.Context, t *core.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[t.ID]; !ok {
		return core.ErrNotFound
	}
	s.tasks[t.ID] = cloneTask(*t)
	return nil
}

func (s *MemoryStore) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func matchesFilter(t core.Task, f core.TaskFilter) bool {
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Tag != "" && !hasTag(t.Tags, f.Tag) {
		return false
	}
	if f.DueFrom != nil && t.DueDate.Before(*f.DueFrom) {
		return false
	}
	if f.DueBefore != nil && !t.DueDate.Before(*f.DueBefore) {
		return false
	}
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	return true
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func cloneTask(t core.Task) core.Task {
	if t.Tags != nil {
		tags := make([]string, len(t.Tags))
		copy(tags, t.Tags)
		t.Tags = tags
	}
	return t
}
