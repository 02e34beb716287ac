package tools

import (
	"context"
	"errors"
	"time"

	"github.com/lexcodex/hogar/assistant"
	"github.com/lexcodex/hogar/store"
)

// fakeStore is an in-memory persistence collaborator for the tool tests.
type fakeStore struct {
	pending   []store.Task
	completed []store.Task
	events    []store.Event
	direct    []store.InboxMessage
	broadcast []store.InboxMessage

	created []store.Task
	fail    bool
}

var errBoom = errors.New("boom")

func (f *fakeStore) PendingTasks(ctx context.Context, householdID, memberID int64) ([]store.Task, error) {
	if f.fail {
		return nil, errBoom
	}
	var out []store.Task
	for _, t := range f.pending {
		if t.AssignedTo == memberID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) CompletedTasks(ctx context.Context, householdID, memberID int64, since time.Time) ([]store.Task, error) {
	if f.fail {
		return nil, errBoom
	}
	var out []store.Task
	for _, t := range f.completed {
		if t.AssignedTo == memberID && t.CompletedAt != nil && !t.CompletedAt.Before(since) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateTask(ctx context.Context, task store.Task) (store.Task, error) {
	if f.fail {
		return store.Task{}, errBoom
	}
	task.ID = int64(len(f.created) + 1)
	f.created = append(f.created, task)
	return task, nil
}

func (f *fakeStore) Events(ctx context.Context, householdID int64, from, to time.Time) ([]store.Event, error) {
	if f.fail {
		return nil, errBoom
	}
	var out []store.Event
	for _, e := range f.events {
		if !from.IsZero() && e.StartsAt.Before(from) {
			continue
		}
		if !to.IsZero() && !e.StartsAt.Before(to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeStore) EventsForMember(ctx context.Context, householdID, memberID int64) ([]store.Event, error) {
	if f.fail {
		return nil, errBoom
	}
	var out []store.Event
	for _, e := range f.events {
		if e.AssignedTo == memberID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) UnreadDirect(ctx context.Context, memberID int64) ([]store.InboxMessage, error) {
	if f.fail {
		return nil, errBoom
	}
	return f.direct, nil
}

func (f *fakeStore) UnreadBroadcast(ctx context.Context, householdID, memberID int64) ([]store.InboxMessage, error) {
	if f.fail {
		return nil, errBoom
	}
	return f.broadcast, nil
}

var testProfile = assistant.CallerProfile{
	MemberID:    1,
	HouseholdID: 1,
	RoleID:      1,
	RoleName:    "admin",
	DisplayName: "Ana",
}

func testCatalog(f *fakeStore, now time.Time) (*Catalog, error) {
	return NewCatalog(Deps{
		Tasks:  f,
		Events: f,
		Inbox:  f,
		Now:    func() time.Time { return now },
	}, nil)
}
