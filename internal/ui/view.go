package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/tasklist-go/internal/filter"
	"github.com/nibzard/tasklist-go/internal/session"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	markStyle     = lipgloss.NewStyle().Background(lipgloss.Color("11")).Foreground(lipgloss.Color("0"))
	deadlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	alertStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(0, 2)
)

func (m *tuiModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	writeTitle(&b)

	if m.alert != "" {
		writeAlert(&b, m.alert)
		return b.String()
	}

	m.writeSearch(&b)
	m.writeRows(&b)
	if m.mode == modeAdd {
		m.writeAddForm(&b)
	}
	m.writeFooter(&b)
	return b.String()
}

func writeTitle(b *strings.Builder) {
	title := "Task List"
	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeAlert(b *strings.Builder, msg string) {
	b.WriteString(alertStyle.Render(msg + "\n\n" + helpStyle.Render("press any key")))
	b.WriteString("\n")
}

func (m *tuiModel) writeSearch(b *strings.Builder) {
	if m.mode == modeSearch {
		b.WriteString(labelStyle.Render("Search: ") + m.search.View() + "\n\n")
		return
	}
	if term := m.session.Term(); term != "" {
		note := ""
		if !filter.Active(term) {
			note = " (inactive)"
		}
		b.WriteString(labelStyle.Render("Search: ") + term + note + helpStyle.Render("  esc to clear") + "\n\n")
	}
}

func (m *tuiModel) writeRows(b *strings.Builder) {
	rows := m.session.Rows()
	if len(rows) == 0 {
		if m.session.Store().Len() == 0 {
			b.WriteString("  No tasks yet. Press a to add one.\n\n")
		} else {
			b.WriteString("  No tasks match the search.\n\n")
		}
		return
	}
	for i, row := range rows {
		prefix := "  "
		if i == m.cursor && m.mode != modeAdd && m.mode != modeSearch {
			prefix = cursorStyle.Render("> ")
		}
		if row.Editing {
			b.WriteString(prefix + m.renderEditRow() + "\n")
			continue
		}
		b.WriteString(prefix + renderRow(row) + "\n")
	}
	b.WriteString("\n")
}

func renderRow(row session.Row) string {
	var text strings.Builder
	for _, seg := range row.Segments {
		if seg.Match {
			text.WriteString(markStyle.Render(seg.Text))
			continue
		}
		text.WriteString(seg.Text)
	}
	if row.Deadline == "" {
		return text.String()
	}
	return text.String() + "  " + deadlineStyle.Render(row.Deadline)
}

func (m *tuiModel) renderEditRow() string {
	return fmt.Sprintf("%s %s  %s %s",
		labelStyle.Render("text:"), m.editText.View(),
		labelStyle.Render("deadline:"), m.editDeadline.View(),
	)
}

func (m *tuiModel) writeAddForm(b *strings.Builder) {
	b.WriteString(titleStyle.Render("New task") + "\n")
	b.WriteString("  " + labelStyle.Render("Text:     ") + m.addText.View() + "\n")
	b.WriteString("  " + labelStyle.Render("Deadline: ") + m.addDeadline.View() + "\n\n")
}

func (m *tuiModel) writeFooter(b *strings.Builder) {
	var bindings []key.Binding
	switch m.mode {
	case modeAdd:
		bindings = m.keys.addHelp()
	case modeSearch:
		bindings = m.keys.searchHelp()
	case modeEdit:
		bindings = m.keys.editHelp()
	default:
		bindings = m.keys.listHelp()
	}
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	line := strings.Join(parts, " | ")
	if m.storage != "" {
		line += " | " + m.storage
	}
	b.WriteString(helpStyle.Render(line) + "\n")
}
