package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nibzard/tasklist-go/internal/edit"
	"github.com/nibzard/tasklist-go/internal/filter"
	"github.com/nibzard/tasklist-go/internal/todo"
)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.Local)

type countingPersister struct {
	saves int
}

func (p *countingPersister) Save(context.Context, []todo.Task) {
	p.saves++
}

func newTestSession(tasks ...todo.Task) (*Session, *countingPersister) {
	p := &countingPersister{}
	store := todo.NewStore(tasks,
		todo.WithClock(func() time.Time { return testNow }),
		todo.WithPersister(p),
	)
	return New(store), p
}

func TestRowsReadOnly(t *testing.T) {
	s, _ := newTestSession(
		todo.Task{ID: 1, Text: "Buy milk", Deadline: "2026-10-18T09:30"},
		todo.Task{ID: 2, Text: "Call mom", Deadline: ""},
		todo.Task{ID: 3, Text: "Broken", Deadline: "garbage"},
	)

	rows := s.Rows()
	if len(rows) != 3 {
		t.Fatalf("Rows() returned %d rows, want 3", len(rows))
	}
	if rows[0].Deadline != "18.10.2026, 09:30:00" {
		t.Errorf("row 0 deadline = %q", rows[0].Deadline)
	}
	if rows[1].Deadline != "" {
		t.Errorf("row 1 deadline = %q, want empty", rows[1].Deadline)
	}
	if rows[2].Deadline != "" {
		t.Errorf("unparseable deadline rendered as %q", rows[2].Deadline)
	}
	for _, row := range rows {
		if row.Editing {
			t.Errorf("row %d unexpectedly editing", row.ID)
		}
	}
}

func TestRowsSearchHighlight(t *testing.T) {
	s, _ := newTestSession(
		todo.Task{ID: 1, Text: "Buy milk"},
		todo.Task{ID: 2, Text: "Call mom"},
		todo.Task{ID: 3, Text: "MILKshake"},
	)
	s.Search("milk")

	rows := s.Rows()
	if len(rows) != 2 || rows[0].ID != 1 || rows[1].ID != 3 {
		t.Fatalf("Rows() = %+v, want ids 1 and 3", rows)
	}
	want := []filter.Segment{{Text: "MILK", Match: true}, {Text: "shake"}}
	got := rows[1].Segments
	if len(got) != len(want) {
		t.Fatalf("segments = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	s.Search("m")
	if n := len(s.Rows()); n != 3 {
		t.Errorf("short term should show all rows, got %d", n)
	}
}

func TestSelectAndConfirm(t *testing.T) {
	ctx := context.Background()
	s, p := newTestSession(todo.Task{ID: 1, Text: "Buy milk"}, todo.Task{ID: 2, Text: "Call mom"})

	if err := s.Select(ctx, 1); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	rows := s.Rows()
	if !rows[0].Editing || rows[0].Draft.Text != "Buy milk" {
		t.Fatalf("row 0 = %+v, want editing with seeded draft", rows[0])
	}
	if rows[1].Editing {
		t.Error("row 1 should be read-only")
	}

	s.SetDraft(edit.Draft{Text: "Buy oat milk", Deadline: "2026-10-20 08:00"})
	if p.saves != 0 {
		t.Errorf("drafting persisted %d times", p.saves)
	}
	task, err := s.Confirm(ctx)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if task.Text != "Buy oat milk" || task.Deadline != "2026-10-20T08:00" {
		t.Errorf("Confirm() = %+v", task)
	}
	if _, ok := s.Editing(); ok {
		t.Error("expected idle after confirm")
	}
	if p.saves != 1 {
		t.Errorf("saves = %d, want 1", p.saves)
	}
}

func TestConfirmInvalidKeepsEditing(t *testing.T) {
	ctx := context.Background()
	s, p := newTestSession(todo.Task{ID: 1, Text: "Buy milk"})
	_ = s.Select(ctx, 1)
	s.SetDraft(edit.Draft{Text: "ab"})

	_, err := s.Confirm(ctx)
	if !errors.Is(err, todo.ErrTextTooShort) {
		t.Fatalf("Confirm() error = %v, want ErrTextTooShort", err)
	}
	if id, ok := s.Editing(); !ok || id != 1 {
		t.Errorf("Editing() = %d, %v; want 1, true", id, ok)
	}
	if s.Draft().Text != "ab" {
		t.Errorf("draft lost: %+v", s.Draft())
	}
	if got, _ := s.Store().Get(1); got.Text != "Buy milk" {
		t.Errorf("store mutated: %+v", got)
	}
	if p.saves != 0 {
		t.Errorf("saves = %d, want 0", p.saves)
	}
}

func TestSelectOtherRowCommitsFirst(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(todo.Task{ID: 1, Text: "Buy milk"}, todo.Task{ID: 2, Text: "Call mom"})
	_ = s.Select(ctx, 1)
	s.SetDraft(edit.Draft{Text: "Buy bread"})

	if err := s.Select(ctx, 2); err != nil {
		t.Fatalf("Select(2) error = %v", err)
	}
	if got, _ := s.Store().Get(1); got.Text != "Buy bread" {
		t.Errorf("task 1 = %+v, want committed draft", got)
	}
	if id, _ := s.Editing(); id != 2 {
		t.Errorf("editing %d, want 2", id)
	}
}

func TestSelectOtherRowFailedCommit(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(todo.Task{ID: 1, Text: "Buy milk"}, todo.Task{ID: 2, Text: "Call mom"})
	_ = s.Select(ctx, 1)
	s.SetDraft(edit.Draft{Text: "Buy milk", Deadline: "2020-01-01T00:00"})

	err := s.Select(ctx, 2)
	if !errors.Is(err, todo.ErrDeadlineInvalid) {
		t.Fatalf("Select(2) error = %v, want ErrDeadlineInvalid", err)
	}
	if id, _ := s.Editing(); id != 1 {
		t.Errorf("editing %d, want 1", id)
	}
}

func TestSelectUnknown(t *testing.T) {
	s, _ := newTestSession()
	if err := s.Select(context.Background(), 42); !errors.Is(err, todo.ErrTaskNotFound) {
		t.Errorf("Select() error = %v, want ErrTaskNotFound", err)
	}
}

func TestCancelAndDismiss(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(todo.Task{ID: 1, Text: "Buy milk"})

	_ = s.Select(ctx, 1)
	s.SetDraft(edit.Draft{Text: "Changed"})
	s.Cancel()
	if got, _ := s.Store().Get(1); got.Text != "Buy milk" {
		t.Errorf("cancel changed store: %+v", got)
	}

	_ = s.Select(ctx, 1)
	s.SetDraft(edit.Draft{Text: "Changed"})
	if _, err := s.Dismiss(ctx, false); err != nil {
		t.Fatalf("Dismiss(inside) error = %v", err)
	}
	if _, ok := s.Editing(); !ok {
		t.Error("inside interaction ended the edit")
	}
	if _, err := s.Dismiss(ctx, true); err != nil {
		t.Fatalf("Dismiss(outside) error = %v", err)
	}
	if got, _ := s.Store().Get(1); got.Text != "Changed" {
		t.Errorf("outside interaction did not commit: %+v", got)
	}
}

func TestDeleteForgetsEdit(t *testing.T) {
	ctx := context.Background()
	s, p := newTestSession(todo.Task{ID: 1, Text: "Buy milk"}, todo.Task{ID: 2, Text: "Call mom"})
	_ = s.Select(ctx, 1)

	if !s.Delete(ctx, 1) {
		t.Fatal("Delete() = false")
	}
	if _, ok := s.Editing(); ok {
		t.Error("edit of deleted task still active")
	}
	if s.Delete(ctx, 99) {
		t.Error("Delete(99) = true")
	}
	if p.saves != 2 {
		t.Errorf("saves = %d, want 2", p.saves)
	}
}

func TestAddValidation(t *testing.T) {
	s, _ := newTestSession()
	if _, err := s.Add(context.Background(), "  x ", ""); !todo.IsValidationError(err) {
		t.Errorf("Add() error = %v, want validation error", err)
	}
	if len(s.Rows()) != 0 {
		t.Error("invalid add produced a row")
	}
}

func TestFormatDeadlineLayoutAndLocation(t *testing.T) {
	s, _ := newTestSession()
	s = New(s.Store(), WithDateLayout("2006/01/02 15:04"), WithLocation(time.UTC))

	local := time.Date(2026, 10, 18, 9, 30, 0, 0, time.Local)
	task := todo.Task{ID: 1, Text: "x", Deadline: todo.FormatDeadline(local)}
	if got, want := s.FormatDeadline(task), local.UTC().Format("2006/01/02 15:04"); got != want {
		t.Errorf("FormatDeadline() = %q, want %q", got, want)
	}
}
