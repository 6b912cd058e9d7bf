package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/edit"
	"github.com/nibzard/tasklist-go/internal/session"
	"github.com/nibzard/tasklist-go/internal/todo"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeSearch
	modeEdit
)

// field indexes the two inputs of the add form and the edit row.
type field int

const (
	fieldText field = iota
	fieldDeadline
)

type tuiModel struct {
	ctx     context.Context
	session *session.Session
	logger  *log.Logger
	keys    keymap
	storage string

	mode   mode
	cursor int
	width  int

	addText      textinput.Model
	addDeadline  textinput.Model
	addFocus     field
	search       textinput.Model
	editText     textinput.Model
	editDeadline textinput.Model
	editFocus    field

	// alert is a blocking message; the next key dismisses it.
	alert    string
	quitting bool
}

func newTUIModel(ctx context.Context, sess *session.Session, c *tuiConfig) *tuiModel {
	m := &tuiModel{
		ctx:          ctx,
		session:      sess,
		logger:       c.logger,
		keys:         newKeymap(),
		storage:      c.storageLabel,
		addText:      newInput("What needs doing? (3-255 characters)", todo.MaxTextLength),
		addDeadline:  newInput("Deadline, e.g. 2026-12-31 18:00 (optional)", 32),
		search:       newInput("Type at least 2 characters", 0),
		editText:     newInput("", todo.MaxTextLength),
		editDeadline: newInput("", 32),
	}
	m.search.SetValue(sess.Term())
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	if limit > 0 {
		ti.CharLimit = limit
	}
	return ti
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.alert != "" {
			m.alert = ""
			return m, nil
		}
		if key.Matches(msg, m.keys.forceQ) {
			return m.quit()
		}
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeSearch:
			return m.updateSearch(msg)
		case modeEdit:
			return m.updateEdit(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *tuiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.session.Rows()
	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.add):
		m.mode = modeAdd
		return m, m.focusAdd(fieldText)
	case key.Matches(msg, m.keys.search):
		m.mode = modeSearch
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.up):
		m.moveCursor(-1, len(rows))
	case key.Matches(msg, m.keys.down):
		m.moveCursor(1, len(rows))
	case key.Matches(msg, m.keys.selectR):
		if len(rows) == 0 {
			return m, nil
		}
		return m, m.beginEdit(rows[m.cursor].ID)
	case key.Matches(msg, m.keys.del):
		if len(rows) == 0 {
			return m, nil
		}
		id := rows[m.cursor].ID
		if m.session.Delete(m.ctx, id) {
			m.logger.Debug("task deleted", "id", id)
		}
		m.clampCursor()
	case key.Matches(msg, m.keys.back):
		if m.session.Term() != "" {
			m.search.SetValue("")
			m.session.Search("")
			m.clampCursor()
		}
	}
	return m, nil
}

func (m *tuiModel) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.addText.Blur()
		m.addDeadline.Blur()
		m.mode = modeList
		return m, nil
	case key.Matches(msg, m.keys.next):
		return m, m.focusAdd(1 - m.addFocus)
	case key.Matches(msg, m.keys.confirm):
		task, err := m.session.Add(m.ctx, m.addText.Value(), m.addDeadline.Value())
		if err != nil {
			m.showAlert(err)
			return m, nil
		}
		m.logger.Debug("task added", "id", task.ID)
		m.addText.Reset()
		m.addDeadline.Reset()
		m.clampCursor()
		return m, m.focusAdd(fieldText)
	}

	var cmd tea.Cmd
	if m.addFocus == fieldText {
		m.addText, cmd = m.addText.Update(msg)
	} else {
		m.addDeadline, cmd = m.addDeadline.Update(msg)
	}
	return m, cmd
}

func (m *tuiModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.done) || key.Matches(msg, m.keys.back) {
		m.search.Blur()
		m.mode = modeList
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.session.Search(m.search.Value())
	m.clampCursor()
	return m, cmd
}

func (m *tuiModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.session.Cancel()
		m.endEdit()
		return m, nil
	case key.Matches(msg, m.keys.next):
		return m, m.focusEdit(1 - m.editFocus)
	case key.Matches(msg, m.keys.confirm):
		m.syncDraft()
		if _, err := m.session.Confirm(m.ctx); err != nil {
			m.editFailed(err)
			return m, nil
		}
		m.endEdit()
		return m, nil
	case key.Matches(msg, m.keys.leave):
		m.syncDraft()
		if _, err := m.session.Dismiss(m.ctx, true); err != nil {
			m.editFailed(err)
			return m, nil
		}
		m.endEdit()
		delta := 1
		if msg.String() == "up" {
			delta = -1
		}
		m.moveCursor(delta, len(m.session.Rows()))
		return m, nil
	}

	var cmd tea.Cmd
	if m.editFocus == fieldText {
		m.editText, cmd = m.editText.Update(msg)
	} else {
		m.editDeadline, cmd = m.editDeadline.Update(msg)
	}
	m.syncDraft()
	return m, cmd
}

func (m *tuiModel) beginEdit(id int64) tea.Cmd {
	if err := m.session.Select(m.ctx, id); err != nil {
		m.showAlert(err)
		return nil
	}
	draft := m.session.Draft()
	m.editText.SetValue(draft.Text)
	m.editText.CursorEnd()
	m.editDeadline.SetValue(draft.Deadline)
	m.editDeadline.CursorEnd()
	m.mode = modeEdit
	return m.focusEdit(fieldText)
}

// editFailed reports a rejected commit. The edit stays open unless the task
// no longer exists.
func (m *tuiModel) editFailed(err error) {
	m.showAlert(err)
	if _, ok := m.session.Editing(); !ok {
		m.endEdit()
	}
}

func (m *tuiModel) endEdit() {
	m.editText.Blur()
	m.editDeadline.Blur()
	m.mode = modeList
	m.clampCursor()
}

func (m *tuiModel) syncDraft() {
	m.session.SetDraft(edit.Draft{Text: m.editText.Value(), Deadline: m.editDeadline.Value()})
}

func (m *tuiModel) focusAdd(f field) tea.Cmd {
	m.addFocus = f
	if f == fieldText {
		m.addDeadline.Blur()
		return m.addText.Focus()
	}
	m.addText.Blur()
	return m.addDeadline.Focus()
}

func (m *tuiModel) focusEdit(f field) tea.Cmd {
	m.editFocus = f
	if f == fieldText {
		m.editDeadline.Blur()
		return m.editText.Focus()
	}
	m.editText.Blur()
	return m.editDeadline.Focus()
}

// quit resolves an active edit like an outside interaction, then exits.
// A draft that fails validation is dropped.
func (m *tuiModel) quit() (tea.Model, tea.Cmd) {
	if m.mode == modeEdit {
		m.syncDraft()
	}
	if _, err := m.session.Dismiss(m.ctx, true); err != nil {
		m.logger.Warn("discarding unsaved edit", "err", err)
		m.session.Cancel()
	}
	m.quitting = true
	return m, tea.Quit
}

func (m *tuiModel) showAlert(err error) {
	m.alert = err.Error()
	m.logger.Debug("rejected input", "err", err)
}

func (m *tuiModel) moveCursor(delta, n int) {
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
}

func (m *tuiModel) clampCursor() {
	m.moveCursor(0, len(m.session.Rows()))
}
