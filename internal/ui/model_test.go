package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/session"
	"github.com/nibzard/tasklist-go/internal/todo"
)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.Local)

type countingPersister struct{ saves int }

func (p *countingPersister) Save(context.Context, []todo.Task) { p.saves++ }

func newTestModel(tasks ...todo.Task) (*tuiModel, *countingPersister) {
	p := &countingPersister{}
	store := todo.NewStore(tasks,
		todo.WithClock(func() time.Time { return testNow }),
		todo.WithPersister(p),
	)
	sess := session.New(store)
	m := newTUIModel(context.Background(), sess, &tuiConfig{logger: log.New(io.Discard)})
	return m, p
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m *tuiModel, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func typeText(m *tuiModel, s string) {
	for _, r := range s {
		send(m, keyRunes(string(r)))
	}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestAddFlow(t *testing.T) {
	m, p := newTestModel()

	send(m, keyRunes("a"))
	if m.mode != modeAdd {
		t.Fatalf("mode = %v, want add", m.mode)
	}
	typeText(m, "Buy milk")
	send(m, tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "2026-10-20 08:00")
	send(m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.alert != "" {
		t.Fatalf("unexpected alert: %s", m.alert)
	}
	tasks := m.session.Store().All()
	if len(tasks) != 1 || tasks[0].Text != "Buy milk" || tasks[0].Deadline != "2026-10-20T08:00" {
		t.Fatalf("tasks = %+v", tasks)
	}
	if p.saves != 1 {
		t.Errorf("saves = %d, want 1", p.saves)
	}
	if m.addText.Value() != "" || m.addDeadline.Value() != "" {
		t.Error("inputs not cleared after add")
	}
	if m.addFocus != fieldText || !m.addText.Focused() {
		t.Error("focus did not return to text field")
	}
	if m.mode != modeAdd {
		t.Error("add form closed after submit")
	}

	send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeList {
		t.Errorf("mode = %v, want list", m.mode)
	}
}

func TestAddInvalidShowsAlert(t *testing.T) {
	m, p := newTestModel()

	send(m, keyRunes("a"))
	typeText(m, "ab")
	send(m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.alert != todo.ErrTextTooShort.Error() {
		t.Fatalf("alert = %q", m.alert)
	}
	if !strings.Contains(m.View(), "press any key") {
		t.Error("alert not rendered")
	}
	if p.saves != 0 || m.session.Store().Len() != 0 {
		t.Error("invalid add changed the store")
	}

	// The next key only dismisses the alert.
	send(m, keyRunes("c"))
	if m.alert != "" {
		t.Error("alert not dismissed")
	}
	if m.addText.Value() != "ab" {
		t.Errorf("dismissing key reached the input: %q", m.addText.Value())
	}
}

func TestSearchFiltersLive(t *testing.T) {
	m, _ := newTestModel(
		todo.Task{ID: 1, Text: "Buy milk"},
		todo.Task{ID: 2, Text: "Call mom"},
	)

	send(m, keyRunes("/"))
	typeText(m, "mi")
	if got := len(m.session.Rows()); got != 1 {
		t.Fatalf("rows = %d, want 1", got)
	}
	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeList || m.session.Term() != "mi" {
		t.Fatalf("mode = %v term = %q", m.mode, m.session.Term())
	}
	if !strings.Contains(m.View(), "Search: mi") {
		t.Error("search term not shown")
	}

	send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.session.Term() != "" || len(m.session.Rows()) != 2 {
		t.Error("esc did not clear the search")
	}
}

func TestEditConfirm(t *testing.T) {
	m, p := newTestModel(todo.Task{ID: 1, Text: "Buy milk"}, todo.Task{ID: 2, Text: "Call mom"})

	send(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeEdit {
		t.Fatalf("mode = %v, want edit", m.mode)
	}
	if id, _ := m.session.Editing(); id != 2 {
		t.Fatalf("editing %d, want 2", id)
	}
	if m.editText.Value() != "Call mom" {
		t.Fatalf("edit input = %q", m.editText.Value())
	}

	typeText(m, " now")
	send(m, tea.KeyMsg{Type: tea.KeyEnter})

	if got, _ := m.session.Store().Get(2); got.Text != "Call mom now" {
		t.Errorf("task 2 = %+v", got)
	}
	if m.mode != modeList {
		t.Errorf("mode = %v, want list", m.mode)
	}
	if p.saves != 1 {
		t.Errorf("saves = %d, want 1", p.saves)
	}
}

func TestEditInvalidKeepsEditing(t *testing.T) {
	m, _ := newTestModel(todo.Task{ID: 1, Text: "Buy milk"})

	send(m, tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "2020-01-01 10:00")
	send(m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.alert != todo.ErrDeadlineInvalid.Error() {
		t.Fatalf("alert = %q", m.alert)
	}
	send(m, keyRunes("z"))
	if m.mode != modeEdit {
		t.Errorf("mode = %v, want edit", m.mode)
	}
	if m.session.Draft().Deadline != "2020-01-01 10:00" {
		t.Errorf("draft = %+v", m.session.Draft())
	}
}

func TestEditCancel(t *testing.T) {
	m, p := newTestModel(todo.Task{ID: 1, Text: "Buy milk"})

	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	typeText(m, "!!!")
	send(m, tea.KeyMsg{Type: tea.KeyEsc})

	if got, _ := m.session.Store().Get(1); got.Text != "Buy milk" {
		t.Errorf("cancel changed task: %+v", got)
	}
	if _, ok := m.session.Editing(); ok || m.mode != modeList {
		t.Error("edit still active after esc")
	}
	if p.saves != 0 {
		t.Errorf("saves = %d, want 0", p.saves)
	}
}

func TestEditArrowCommitsAndMoves(t *testing.T) {
	m, _ := newTestModel(todo.Task{ID: 1, Text: "Buy milk"}, todo.Task{ID: 2, Text: "Call mom"})

	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	typeText(m, "!")
	send(m, tea.KeyMsg{Type: tea.KeyDown})

	if got, _ := m.session.Store().Get(1); got.Text != "Buy milk!" {
		t.Errorf("task 1 = %+v", got)
	}
	if m.mode != modeList || m.cursor != 1 {
		t.Errorf("mode = %v cursor = %d", m.mode, m.cursor)
	}
}

func TestDeleteRow(t *testing.T) {
	m, p := newTestModel(todo.Task{ID: 1, Text: "Buy milk"}, todo.Task{ID: 2, Text: "Call mom"})

	send(m, tea.KeyMsg{Type: tea.KeyDown}, keyRunes("d"))
	if m.session.Store().Len() != 1 {
		t.Fatalf("len = %d, want 1", m.session.Store().Len())
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
	if _, ok := m.session.Editing(); ok {
		t.Error("delete started an edit")
	}
	send(m, keyRunes("x"))
	if m.session.Store().Len() != 0 || p.saves != 2 {
		t.Errorf("len = %d saves = %d", m.session.Store().Len(), p.saves)
	}
	if !strings.Contains(m.View(), "No tasks yet") {
		t.Error("empty state not rendered")
	}
}

func TestQuitCommitsEdit(t *testing.T) {
	m, _ := newTestModel(todo.Task{ID: 1, Text: "Buy milk"})

	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	typeText(m, "s")
	cmd := send(m, tea.KeyMsg{Type: tea.KeyCtrlC})

	if !isQuit(cmd) {
		t.Fatal("ctrl+c did not quit")
	}
	if got, _ := m.session.Store().Get(1); got.Text != "Buy milks" {
		t.Errorf("task 1 = %+v", got)
	}
}

func TestQuitDropsInvalidEdit(t *testing.T) {
	var buf bytes.Buffer
	m, _ := newTestModel(todo.Task{ID: 1, Text: "Buy milk"})
	m.logger = log.New(&buf)

	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	m.editText.SetValue("no")
	cmd := send(m, tea.KeyMsg{Type: tea.KeyCtrlC})

	if !isQuit(cmd) {
		t.Fatal("ctrl+c did not quit")
	}
	if got, _ := m.session.Store().Get(1); got.Text != "Buy milk" {
		t.Errorf("task 1 = %+v", got)
	}
	if !strings.Contains(buf.String(), "discarding unsaved edit") {
		t.Errorf("expected warning, got %q", buf.String())
	}
}

func TestQKeyTypesInForms(t *testing.T) {
	m, _ := newTestModel()
	send(m, keyRunes("a"))
	cmd := send(m, keyRunes("q"))
	if isQuit(cmd) {
		t.Fatal("q quit while typing")
	}
	if m.addText.Value() != "q" {
		t.Errorf("input = %q, want q", m.addText.Value())
	}

	send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if !isQuit(send(m, keyRunes("q"))) {
		t.Error("q did not quit from the list")
	}
}

func TestViewHighlightsAndDeadlines(t *testing.T) {
	m, _ := newTestModel(todo.Task{ID: 1, Text: "Buy milk", Deadline: "2026-10-18T09:30"})
	m.session.Search("MILK")

	view := m.View()
	if !strings.Contains(view, "milk") {
		t.Errorf("text missing from view:\n%s", view)
	}
	if !strings.Contains(view, "18.10.2026, 09:30:00") {
		t.Errorf("formatted deadline missing:\n%s", view)
	}
}

func TestIsTTY(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Error("buffer reported as TTY")
	}
}
