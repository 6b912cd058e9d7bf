package ui

import "github.com/charmbracelet/bubbles/key"

type keymap struct {
	add     key.Binding
	search  key.Binding
	up      key.Binding
	down    key.Binding
	selectR key.Binding
	del     key.Binding
	next    key.Binding
	confirm key.Binding
	back    key.Binding
	done    key.Binding
	leave   key.Binding
	quit    key.Binding
	forceQ  key.Binding
}

func newKeymap() keymap {
	return keymap{
		add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		selectR: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
		del:     key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d/x", "delete")),
		next:    key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch field")),
		confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		done:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "done")),
		leave:   key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "save and move")),
		quit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		forceQ:  key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

func (k keymap) listHelp() []key.Binding {
	return []key.Binding{k.add, k.search, k.up, k.down, k.selectR, k.del, k.quit}
}

func (k keymap) addHelp() []key.Binding {
	return []key.Binding{k.next, k.confirm, k.back}
}

func (k keymap) editHelp() []key.Binding {
	return []key.Binding{k.next, k.confirm, k.back, k.leave}
}

func (k keymap) searchHelp() []key.Binding {
	return []key.Binding{k.done, k.back}
}
