// Package session binds the task store, the search term and the inline edit
// state into the rows a host renders.
//
// A Session is not safe for concurrent use; hosts drive it from a single
// event loop.
package session

import (
	"context"
	"time"

	"github.com/nibzard/tasklist-go/internal/edit"
	"github.com/nibzard/tasklist-go/internal/filter"
	"github.com/nibzard/tasklist-go/internal/todo"
)

// DefaultDateLayout renders deadlines as day.month.year, hour:minute:second.
const DefaultDateLayout = "02.01.2006, 15:04:05"

// Row is one rendered task.
type Row struct {
	ID int64
	// Text is the stored text; Segments splits it for highlighting.
	Text     string
	Segments []filter.Segment
	// Deadline is the formatted deadline, or "" when none.
	Deadline    string
	RawDeadline string
	Editing     bool
	// Draft holds the in-progress values when Editing is true.
	Draft edit.Draft
}

// Option configures a Session.
type Option func(*Session)

// WithDateLayout sets the time layout used for displayed deadlines.
func WithDateLayout(layout string) Option {
	return func(s *Session) {
		if layout != "" {
			s.layout = layout
		}
	}
}

// WithLocation sets the zone deadlines are displayed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Session) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// Session is the explicit UI state over a Store.
type Session struct {
	store   *todo.Store
	machine edit.Machine
	term    string
	layout  string
	loc     *time.Location
}

// New creates a Session over store.
func New(store *todo.Store, opts ...Option) *Session {
	s := &Session{
		store:  store,
		layout: DefaultDateLayout,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store.
func (s *Session) Store() *todo.Store {
	return s.store
}

// Term returns the current search term as entered.
func (s *Session) Term() string {
	return s.term
}

// Search replaces the search term.
func (s *Session) Search(term string) {
	s.term = term
}

// Add validates and appends a task.
func (s *Session) Add(ctx context.Context, text, deadline string) (todo.Task, error) {
	return s.store.Add(ctx, text, deadline)
}

// Delete removes id and abandons any edit of it.
func (s *Session) Delete(ctx context.Context, id int64) bool {
	removed := s.store.Delete(ctx, id)
	s.machine.Forget(id)
	return removed
}

// Editing returns the id being edited, if any.
func (s *Session) Editing() (int64, bool) {
	return s.machine.Active()
}

// Draft returns the current edit draft.
func (s *Session) Draft() edit.Draft {
	return s.machine.Draft()
}

// Select starts editing id. An edit active on another row is committed
// first; if that commit fails the old edit stays active and the error is
// returned.
func (s *Session) Select(ctx context.Context, id int64) error {
	if active, ok := s.machine.Active(); ok {
		if active == id {
			return nil
		}
		if _, err := s.machine.Commit(ctx, s.store); err != nil {
			return err
		}
	}
	task, ok := s.store.Get(id)
	if !ok {
		return todo.ErrTaskNotFound
	}
	return s.machine.Begin(task)
}

// SetDraft records in-progress edit values.
func (s *Session) SetDraft(d edit.Draft) {
	s.machine.SetDraft(d)
}

// Confirm commits the active edit.
func (s *Session) Confirm(ctx context.Context) (todo.Task, error) {
	return s.machine.Commit(ctx, s.store)
}

// Cancel abandons the active edit.
func (s *Session) Cancel() {
	s.machine.Cancel()
}

// Dismiss reports an interaction; outside the edited row it commits.
func (s *Session) Dismiss(ctx context.Context, outside bool) (todo.Task, error) {
	return s.machine.Dismiss(ctx, s.store, outside)
}

// Visible returns the tasks matching the current term.
func (s *Session) Visible() []todo.Task {
	return filter.Visible(s.store.All(), s.term)
}

// Rows renders the visible tasks.
func (s *Session) Rows() []Row {
	visible := s.Visible()
	rows := make([]Row, 0, len(visible))
	for _, task := range visible {
		row := Row{
			ID:          task.ID,
			Text:        task.Text,
			RawDeadline: task.Deadline,
		}
		if s.machine.IsEditing(task.ID) {
			row.Editing = true
			row.Draft = s.machine.Draft()
		} else {
			row.Segments = filter.Segments(task.Text, s.term)
			row.Deadline = s.FormatDeadline(task)
		}
		rows = append(rows, row)
	}
	return rows
}

// FormatDeadline renders task's deadline with the session layout, or ""
// when it is empty or unparseable.
func (s *Session) FormatDeadline(task todo.Task) string {
	t, ok := task.DeadlineTime()
	if !ok {
		return ""
	}
	return t.In(s.loc).Format(s.layout)
}
