package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists household data in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens/creates the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, err
	}
	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS members (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		household_id INTEGER NOT NULL,
		role_id INTEGER NOT NULL,
		role_name TEXT NOT NULL,
		display_name TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT 1
	);
	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		household_id INTEGER NOT NULL,
		assigned_to INTEGER NOT NULL,
		created_by INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		due_date TIMESTAMP,
		completed BOOLEAN NOT NULL DEFAULT 0,
		completed_at TIMESTAMP,
		deleted BOOLEAN NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		household_id INTEGER NOT NULL,
		assigned_to INTEGER NOT NULL DEFAULT 0,
		title TEXT NOT NULL,
		starts_at TIMESTAMP NOT NULL,
		ends_at TIMESTAMP,
		deleted BOOLEAN NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS inbox (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		household_id INTEGER NOT NULL,
		sender_id INTEGER NOT NULL,
		recipient_id INTEGER NOT NULL DEFAULT 0,
		body TEXT NOT NULL,
		sent_at TIMESTAMP NOT NULL,
		read BOOLEAN NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_household ON tasks(household_id, assigned_to);
	CREATE INDEX IF NOT EXISTS idx_events_household ON events(household_id, starts_at);
	CREATE INDEX IF NOT EXISTS idx_inbox_recipient ON inbox(recipient_id, read);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// PendingTasks returns open, non-deleted tasks for the member, nearest due
// date first. NULL due dates sort last.
func (s *SQLiteStore) PendingTasks(ctx context.Context, householdID, memberID int64) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, household_id, assigned_to, created_by, title, COALESCE(description, ''), due_date, completed, completed_at
		FROM tasks
		WHERE household_id = ? AND assigned_to = ? AND completed = 0 AND deleted = 0
		ORDER BY due_date IS NULL, due_date ASC, id ASC`,
		householdID, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// CompletedTasks returns tasks completed on or after since.
func (s *SQLiteStore) CompletedTasks(ctx context.Context, householdID, memberID int64, since time.Time) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, household_id, assigned_to, created_by, title, COALESCE(description, ''), due_date, completed, completed_at
		FROM tasks
		WHERE household_id = ? AND assigned_to = ? AND completed = 1 AND deleted = 0
			AND completed_at IS NOT NULL AND completed_at >= ?
		ORDER BY completed_at DESC`,
		householdID, memberID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// CreateTask inserts the task and returns it with its assigned id.
func (s *SQLiteStore) CreateTask(ctx context.Context, task Task) (Task, error) {
	var due interface{}
	if !task.DueDate.IsZero() {
		due = task.DueDate
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (household_id, assigned_to, created_by, title, description, due_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		task.HouseholdID, task.AssignedTo, task.CreatedBy, task.Title, task.Description, due)
	if err != nil {
		return Task{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Task{}, err
	}
	task.ID = id
	return task, nil
}

// Events returns household events overlapping [from, to).
func (s *SQLiteStore) Events(ctx context.Context, householdID int64, from, to time.Time) ([]Event, error) {
	query := `
		SELECT id, household_id, assigned_to, title, starts_at, ends_at
		FROM events
		WHERE household_id = ? AND deleted = 0`
	args := []interface{}{householdID}
	if !from.IsZero() {
		query += ` AND starts_at >= ?`
		args = append(args, from)
	}
	if !to.IsZero() {
		query += ` AND starts_at < ?`
		args = append(args, to)
	}
	query += ` ORDER BY starts_at ASC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// EventsForMember returns events assigned to the given member.
func (s *SQLiteStore) EventsForMember(ctx context.Context, householdID, memberID int64) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, household_id, assigned_to, title, starts_at, ends_at
		FROM events
		WHERE household_id = ? AND assigned_to = ? AND deleted = 0
		ORDER BY starts_at ASC`,
		householdID, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// UnreadDirect returns unread messages addressed to the member.
func (s *SQLiteStore) UnreadDirect(ctx context.Context, memberID int64) ([]InboxMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, household_id, sender_id, recipient_id, body, sent_at, read
		FROM inbox
		WHERE recipient_id = ? AND read = 0
		ORDER BY sent_at DESC`,
		memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInbox(rows)
}

// UnreadBroadcast returns unread household-wide messages not sent by the
// member themselves.
func (s *SQLiteStore) UnreadBroadcast(ctx context.Context, householdID, memberID int64) ([]InboxMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, household_id, sender_id, recipient_id, body, sent_at, read
		FROM inbox
		WHERE household_id = ? AND recipient_id = 0 AND sender_id != ? AND read = 0
		ORDER BY sent_at DESC`,
		householdID, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInbox(rows)
}

// MemberByID resolves an active member or reports ErrNotFound.
func (s *SQLiteStore) MemberByID(ctx context.Context, memberID int64) (Member, error) {
	var m Member
	err := s.db.QueryRowContext(ctx, `
		SELECT id, household_id, role_id, role_name, display_name, active
		FROM members WHERE id = ?`, memberID).
		Scan(&m.ID, &m.HouseholdID, &m.RoleID, &m.RoleName, &m.DisplayName, &m.Active)
	if err == sql.ErrNoRows {
		return Member{}, ErrNotFound
	}
	if err != nil {
		return Member{}, err
	}
	if !m.Active {
		return Member{}, ErrNotFound
	}
	return m, nil
}

// AddMember inserts a member row. Used by setup tooling and tests.
func (s *SQLiteStore) AddMember(ctx context.Context, m Member) (Member, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO members (household_id, role_id, role_name, display_name, active)
		VALUES (?, ?, ?, ?, ?)`,
		m.HouseholdID, m.RoleID, m.RoleName, m.DisplayName, m.Active)
	if err != nil {
		return Member{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Member{}, err
	}
	m.ID = id
	return m, nil
}

// AddEvent inserts a calendar entry. Used by setup tooling and tests.
func (s *SQLiteStore) AddEvent(ctx context.Context, e Event) (Event, error) {
	var ends interface{}
	if !e.EndsAt.IsZero() {
		ends = e.EndsAt
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO events (household_id, assigned_to, title, starts_at, ends_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.HouseholdID, e.AssignedTo, e.Title, e.StartsAt, ends)
	if err != nil {
		return Event{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Event{}, err
	}
	e.ID = id
	return e, nil
}

// AddInboxMessage inserts a message. Used by setup tooling and tests.
func (s *SQLiteStore) AddInboxMessage(ctx context.Context, msg InboxMessage) (InboxMessage, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO inbox (household_id, sender_id, recipient_id, body, sent_at, read)
		VALUES (?, ?, ?, ?, ?, ?)`,
		msg.HouseholdID, msg.SenderID, msg.RecipientID, msg.Body, msg.SentAt, msg.Read)
	if err != nil {
		return InboxMessage{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return InboxMessage{}, err
	}
	msg.ID = id
	return msg, nil
}

// MarkTaskCompleted flips the task to completed now.
func (s *SQLiteStore) MarkTaskCompleted(ctx context.Context, taskID int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET completed = 1, completed_at = ? WHERE id = ?`,
		time.Now().UTC(), taskID)
	return err
}

func scanTasks(rows *sql.Rows) ([]Task, error) {
	var tasks []Task
	for rows.Next() {
		var t Task
		var due sql.NullTime
		var completedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.HouseholdID, &t.AssignedTo, &t.CreatedBy,
			&t.Title, &t.Description, &due, &t.Completed, &completedAt); err != nil {
			return nil, err
		}
		if due.Valid {
			t.DueDate = due.Time
		}
		if completedAt.Valid {
			at := completedAt.Time
			t.CompletedAt = &at
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		var ends sql.NullTime
		if err := rows.Scan(&e.ID, &e.HouseholdID, &e.AssignedTo, &e.Title, &e.StartsAt, &ends); err != nil {
			return nil, err
		}
		if ends.Valid {
			e.EndsAt = ends.Time
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanInbox(rows *sql.Rows) ([]InboxMessage, error) {
	var messages []InboxMessage
	for rows.Next() {
		var m InboxMessage
		if err := rows.Scan(&m.ID, &m.HouseholdID, &m.SenderID, &m.RecipientID, &m.Body, &m.SentAt, &m.Read); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
