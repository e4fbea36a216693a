package tui

import (
	"charm.land/bubbles/v2/key"
	"github.com/hylla/tavla/internal/i18n"
)

// keyMap represents key map data used by this package.
type keyMap struct {
	quit       key.Binding
	reload     key.Binding
	toggleHelp key.Binding
	moveLeft   key.Binding
	moveRight  key.Binding
	moveUp     key.Binding
	moveDown   key.Binding
	grab       key.Binding
	drop       key.Binding
	cancel     key.Binding
	addColumn  key.Binding
	addTask    key.Binding
	deleteItem key.Binding
	deleteCol  key.Binding
	target     key.Binding
	copyID     key.Binding
	confirm    key.Binding
	deny       key.Binding
}

// newKeyMap constructs the bindings with help labels from catalog.
func newKeyMap(catalog *i18n.Catalog) keyMap {
	if catalog == nil {
		catalog = i18n.New("")
	}
	t := catalog.T
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", t(i18n.KeyHelpQuit))),
		reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", t(i18n.KeyHelpReload))),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", t(i18n.KeyHelpHelp))),
		moveLeft:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", t(i18n.KeyHelpFocus))),
		moveRight:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", t(i18n.KeyHelpFocus))),
		moveUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", t(i18n.KeyHelpFocus))),
		moveDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", t(i18n.KeyHelpFocus))),
		grab:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", t(i18n.KeyHelpGrab))),
		drop:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", t(i18n.KeyHelpDrop))),
		cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", t(i18n.KeyHelpCancel))),
		addColumn:  key.NewBinding(key.WithKeys("C"), key.WithHelp("C", t(i18n.KeyHelpAddCol))),
		addTask:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", t(i18n.KeyHelpAddTask))),
		deleteItem: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", t(i18n.KeyHelpDelete))),
		deleteCol:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", t(i18n.KeyHelpDelCol))),
		target:     key.NewBinding(key.WithKeys("h", "l", "left", "right"), key.WithHelp("h/l", t(i18n.KeyHelpTarget))),
		copyID:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", t(i18n.KeyHelpCopy))),
		confirm:    key.NewBinding(key.WithKeys("y", "enter")),
		deny:       key.NewBinding(key.WithKeys("n", "esc")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.grab, k.addTask, k.addColumn, k.deleteItem, k.toggleHelp, k.quit}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.grab, k.drop, k.cancel},
		{k.addColumn, k.addTask, k.deleteItem, k.deleteCol, k.copyID},
		{k.reload, k.toggleHelp, k.quit},
	}
}

// dragHelp lists the bindings active while a column is held.
type dragHelp struct {
	keys keyMap
}

// ShortHelp handles short help.
func (d dragHelp) ShortHelp() []key.Binding {
	return []key.Binding{d.keys.target, d.keys.drop, d.keys.cancel}
}

// FullHelp handles full help.
func (d dragHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{d.ShortHelp()}
}
