// Package store is the persistence collaborator for the household assistant.
// The orchestration layer depends only on the interfaces declared here; the
// SQLite implementation exists so the service runs end to end and so tests
// have a real store to exercise.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a looked-up row does not exist or is inactive.
var ErrNotFound = errors.New("store: not found")

// Task is a household chore with an optional deadline.
type Task struct {
	ID          int64
	HouseholdID int64
	AssignedTo  int64
	CreatedBy   int64
	Title       string
	Description string
	DueDate     time.Time
	Completed   bool
	CompletedAt *time.Time
	Deleted     bool
}

// Event is a calendar entry scoped to one household.
type Event struct {
	ID          int64
	HouseholdID int64
	AssignedTo  int64
	Title       string
	StartsAt    time.Time
	EndsAt      time.Time
	Deleted     bool
}

// Member identifies one person inside a household.
type Member struct {
	ID          int64
	HouseholdID int64
	RoleID      int64
	RoleName    string
	DisplayName string
	Active      bool
}

// InboxMessage is a direct or broadcast message. RecipientID zero means the
// message was broadcast to the whole household.
type InboxMessage struct {
	ID          int64
	HouseholdID int64
	SenderID    int64
	RecipientID int64
	Body        string
	SentAt      time.Time
	Read        bool
}

// TaskStore reads and writes tasks.
type TaskStore interface {
	// PendingTasks returns the member's open tasks ordered by nearest due
	// date first. Tasks without a due date sort last.
	PendingTasks(ctx context.Context, householdID, memberID int64) ([]Task, error)
	// CompletedTasks returns tasks completed on or after since.
	CompletedTasks(ctx context.Context, householdID, memberID int64, since time.Time) ([]Task, error)
	CreateTask(ctx context.Context, task Task) (Task, error)
}

// EventStore reads calendar entries.
type EventStore interface {
	// Events returns household events overlapping [from, to). Zero times
	// mean unbounded on that side.
	Events(ctx context.Context, householdID int64, from, to time.Time) ([]Event, error)
	EventsForMember(ctx context.Context, householdID, memberID int64) ([]Event, error)
}

// InboxStore reads unread messages.
type InboxStore interface {
	UnreadDirect(ctx context.Context, memberID int64) ([]InboxMessage, error)
	UnreadBroadcast(ctx context.Context, householdID, memberID int64) ([]InboxMessage, error)
}

// MemberStore resolves caller profiles.
type MemberStore interface {
	MemberByID(ctx context.Context, memberID int64) (Member, error)
}

// Store aggregates every collaborator interface the assistant needs.
type Store interface {
	TaskStore
	EventStore
	InboxStore
	MemberStore
	Close() error
}
