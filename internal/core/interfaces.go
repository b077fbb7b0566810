package core

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by store implementations. The service layer
// translates them into the classified taxonomy in errors.go.
var (
	// ErrNotFound is returned by single-record lookups that match nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique key.
	ErrDuplicate = errors.New("duplicate unique field")
)

// TaskFilter narrows a by-owner task scan. Zero values mean "no
// constraint" except Completed, which uses a pointer so false can be
// matched explicitly.
type TaskFilter struct {
	Priority  string
	Tag       string
	DueFrom   *time.Time // inclusive lower bound
	DueBefore *time.Time // exclusive upper bound
	Completed *bool
	SortByDue bool // ascending by due date
}

// UserStore persists user records. InsertUser assigns ID, and the
// timestamps if unset.
type UserStore interface {
	InsertUser(ctx context.Context, u *User) error
	UserByID(ctx context.Context, id string) (*User, error)
	UserByEmail(ctx context.Context, email string) (*User, error)
	UserByUsername(ctx context.Context, username string) (*User, error)
}

// TaskStore persists task records. InsertTask assigns ID if unset.
// Every read or write touches at most one record except TasksByOwner,
// which is a filtered scan.
type TaskStore interface {
	InsertTask(ctx context.Context, t *Task) error
	TaskByID(ctx context.Context, id string) (*Task, error)
	TasksByOwner(ctx context.Context, userID string, f TaskFilter) ([]Task, error)
	DistinctTags(ctx context.Context, userID string) ([]string, error)
	UpdateTask(ctx context.Context, t *Task) error
	DeleteTask(ctx context.Context, id string) error
}

// Store bundles both record types behind one backend handle.
type Store interface {
	UserStore
	TaskStore
	Close(ctx context.Context) error
}
