package agents

import (
	"context"
	"errors"
	"time"

	"github.com/lexcodex/hogar/assistant"
	"github.com/lexcodex/hogar/store"
	"github.com/lexcodex/hogar/tools"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// scriptedCompletion replays canned completions and records every request it
// receives so tests can assert on call counts and message shape.
type scriptedCompletion struct {
	responses []*assistant.Completion
	err       error

	calls    int
	requests [][]assistant.Message
	choices  []assistant.ToolChoice
}

func (s *scriptedCompletion) Complete(ctx context.Context, messages []assistant.Message, defs []assistant.ToolDefinition, choice assistant.ToolChoice) (*assistant.Completion, error) {
	s.calls++
	snapshot := make([]assistant.Message, len(messages))
	copy(snapshot, messages)
	s.requests = append(s.requests, snapshot)
	s.choices = append(s.choices, choice)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return &assistant.Completion{Text: "sin guion"}, nil
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

// memStore is the in-memory persistence collaborator for orchestrator tests.
type memStore struct {
	members map[int64]store.Member
	pending []store.Task
	events  []store.Event
	direct  []store.InboxMessage
	created []store.Task

	groundingErr error
}

func (m *memStore) MemberByID(ctx context.Context, memberID int64) (store.Member, error) {
	member, ok := m.members[memberID]
	if !ok || !member.Active {
		return store.Member{}, store.ErrNotFound
	}
	return member, nil
}

func (m *memStore) PendingTasks(ctx context.Context, householdID, memberID int64) ([]store.Task, error) {
	if m.groundingErr != nil {
		return nil, m.groundingErr
	}
	return m.pending, nil
}

func (m *memStore) CompletedTasks(ctx context.Context, householdID, memberID int64, since time.Time) ([]store.Task, error) {
	return nil, nil
}

func (m *memStore) CreateTask(ctx context.Context, task store.Task) (store.Task, error) {
	task.ID = int64(len(m.created) + 1)
	m.created = append(m.created, task)
	return task, nil
}

func (m *memStore) Events(ctx context.Context, householdID int64, from, to time.Time) ([]store.Event, error) {
	return m.events, nil
}

func (m *memStore) EventsForMember(ctx context.Context, householdID, memberID int64) ([]store.Event, error) {
	return m.events, nil
}

func (m *memStore) UnreadDirect(ctx context.Context, memberID int64) ([]store.InboxMessage, error) {
	return m.direct, nil
}

func (m *memStore) UnreadBroadcast(ctx context.Context, householdID, memberID int64) ([]store.InboxMessage, error) {
	return nil, nil
}

func defaultMemStore() *memStore {
	return &memStore{
		members: map[int64]store.Member{
			1: {ID: 1, HouseholdID: 1, RoleID: 1, RoleName: "admin", DisplayName: "Ana", Active: true},
		},
		pending: []store.Task{
			{ID: 1, AssignedTo: 1, Title: "Sacar la basura", DueDate: testNow.AddDate(0, 0, 2)},
			{ID: 2, AssignedTo: 1, Title: "Comprar detergente", DueDate: testNow.AddDate(0, 0, 6)},
			{ID: 3, AssignedTo: 1, Title: "Regar las plantas", DueDate: testNow.AddDate(0, 0, 9)},
		},
	}
}

var errScripted = errors.New("scripted failure")

func newTestOrchestrator(completion assistant.CompletionService, st *memStore) *Orchestrator {
	catalog, err := tools.NewCatalog(tools.Deps{
		Tasks:  st,
		Events: st,
		Inbox:  st,
		Now:    func() time.Time { return testNow },
	}, nil)
	if err != nil {
		panic(err)
	}
	assembler := &ContextAssembler{
		Tasks:  st,
		Events: st,
		Inbox:  st,
		Now:    func() time.Time { return testNow },
	}
	return NewOrchestrator(completion, catalog, st, assembler, nil)
}
