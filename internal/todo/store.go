package todo

import (
	"context"
	"time"
)

// Persister receives the full task sequence after every mutation.
// Implementations must not fail the caller; errors are theirs to handle.
type Persister interface {
	Save(ctx context.Context, tasks []Task)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock sets the time source used for ids and deadline checks.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPersister sets where the store writes after each mutation.
func WithPersister(p Persister) StoreOption {
	return func(s *Store) {
		s.persist = p
	}
}

// Store is the ordered, in-memory source of truth for tasks.
// It is not safe for concurrent use; a single event loop drives it.
type Store struct {
	tasks   []Task
	persist Persister
	now     func() time.Time
	lastID  int64
}

// NewStore creates a store seeded with tasks, typically from a Load.
func NewStore(tasks []Task, opts ...StoreOption) *Store {
	s := &Store{
		tasks: make([]Task, len(tasks)),
		now:   time.Now,
	}
	copy(s.tasks, tasks)
	for _, t := range s.tasks {
		if t.ID > s.lastID {
			s.lastID = t.ID
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// All returns a snapshot of the tasks in insertion order.
func (s *Store) All() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Get returns a task by ID.
func (s *Store) Get(id int64) (Task, bool) {
	if i := s.index(id); i >= 0 {
		return s.tasks[i], true
	}
	return Task{}, false
}

// Add validates and appends a new task, then persists.
func (s *Store) Add(ctx context.Context, text, deadline string) (Task, error) {
	now := s.now()
	text, deadline, err := Validate(text, deadline, now)
	if err != nil {
		return Task{}, err
	}

	task := Task{
		ID:       s.nextID(now),
		Text:     text,
		Deadline: deadline,
	}
	s.tasks = append(s.tasks, task)
	s.save(ctx)
	return task, nil
}

// Update validates and replaces the text and deadline of an existing task,
// keeping its id and position, then persists.
func (s *Store) Update(ctx context.Context, id int64, text, deadline string) (Task, error) {
	text, deadline, err := Validate(text, deadline, s.now())
	if err != nil {
		return Task{}, err
	}

	i := s.index(id)
	if i < 0 {
		return Task{}, ErrTaskNotFound
	}
	s.tasks[i].Text = text
	s.tasks[i].Deadline = deadline
	s.save(ctx)
	return s.tasks[i], nil
}

// Delete removes the task with the given id if present and persists.
// It returns true if a task was removed.
func (s *Store) Delete(ctx context.Context, id int64) bool {
	removed := false
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ID == id {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	s.save(ctx)
	return removed
}

func (s *Store) index(id int64) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// nextID derives an id from the creation time in milliseconds, bumped past
// the highest id seen so ids stay unique and increasing.
func (s *Store) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Store) save(ctx context.Context) {
	if s.persist == nil {
		return
	}
	s.persist.Save(ctx, s.All())
}
