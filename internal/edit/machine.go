// Package edit tracks which task, if any, is being edited inline.
//
// The machine has two states:
//
//	Idle ──Begin──▶ Editing(id) ──Commit ok / Cancel / Forget(id)──▶ Idle
//	                    │  ▲
//	                    └──┘ SetDraft, failed Commit, Dismiss(inside)
//
// At most one task is in Editing at a time. Committing never bypasses the
// store's validation: the draft goes through Updater.Update, and a rejected
// draft keeps the machine in Editing with the draft intact.
package edit

import (
	"context"
	"errors"
	"fmt"

	"github.com/nibzard/tasklist-go/internal/todo"
)

// State is the machine's current mode.
type State int

const (
	Idle State = iota
	Editing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrEditInProgress is returned by Begin while another task is being edited.
var ErrEditInProgress = errors.New("another task is being edited")

// Draft holds the unsaved values of the task being edited.
type Draft struct {
	Text     string
	Deadline string
}

// Updater applies a committed draft. *todo.Store satisfies it.
type Updater interface {
	Update(ctx context.Context, id int64, text, deadline string) (todo.Task, error)
}

// Machine is the inline-edit state machine. The zero value is Idle.
type Machine struct {
	state  State
	active int64
	draft  Draft
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Active returns the id being edited and true, or 0 and false when idle.
func (m *Machine) Active() (int64, bool) {
	if m.state != Editing {
		return 0, false
	}
	return m.active, true
}

// IsEditing reports whether id is the task being edited.
func (m *Machine) IsEditing(id int64) bool {
	return m.state == Editing && m.active == id
}

// Draft returns the current draft. It is empty when idle.
func (m *Machine) Draft() Draft {
	return m.draft
}

// Begin enters Editing for task, seeding the draft from its values.
// Beginning the task already being edited is a no-op.
func (m *Machine) Begin(task todo.Task) error {
	if m.state == Editing {
		if m.active == task.ID {
			return nil
		}
		return ErrEditInProgress
	}
	m.state = Editing
	m.active = task.ID
	m.draft = Draft{Text: task.Text, Deadline: task.Deadline}
	return nil
}

// SetDraft replaces the draft. It does nothing when idle.
func (m *Machine) SetDraft(d Draft) {
	if m.state != Editing {
		return
	}
	m.draft = d
}

// Commit applies the draft through u. On failure the machine stays in
// Editing and the error is returned; on success it returns to Idle.
// Committing while idle is a no-op.
func (m *Machine) Commit(ctx context.Context, u Updater) (todo.Task, error) {
	if m.state != Editing {
		return todo.Task{}, nil
	}
	task, err := u.Update(ctx, m.active, m.draft.Text, m.draft.Deadline)
	if err != nil {
		if errors.Is(err, todo.ErrTaskNotFound) {
			// The task is gone; there is nothing left to edit.
			m.reset()
		}
		return todo.Task{}, err
	}
	m.reset()
	return task, nil
}

// Cancel discards the draft and returns to Idle.
func (m *Machine) Cancel() {
	m.reset()
}

// Dismiss handles an interaction notification from the host. An interaction
// outside the active row commits the edit; one inside is ignored.
func (m *Machine) Dismiss(ctx context.Context, u Updater, outside bool) (todo.Task, error) {
	if !outside {
		return todo.Task{}, nil
	}
	return m.Commit(ctx, u)
}

// Forget forces Idle if id is the task being edited.
func (m *Machine) Forget(id int64) {
	if m.IsEditing(id) {
		m.reset()
	}
}

func (m *Machine) reset() {
	m.state = Idle
	m.active = 0
	m.draft = Draft{}
}
