package tui

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
	"github.com/hylla/tavla/internal/i18n"
)

// BoardController is the board state the model renders and mutates.
type BoardController interface {
	Load(context.Context, string) error
	Board() (domain.Board, bool)
	ColorFor(string) string
	Plan(app.DragResult) (app.Move, bool)
	Apply(context.Context, app.Move) app.Move
	Persist(context.Context, app.Move) error
	RequestDeleteColumn(domain.Column)
	RequestDeleteTask(domain.Task)
	CancelDelete()
	Pending() app.PendingDelete
	ConfirmDelete(context.Context) error
	AddColumn(context.Context, string) error
	AddTask(context.Context, string, string, string) error
}

var _ BoardController = (*app.BoardView)(nil)

// inputMode describes the active interaction mode.
type inputMode int

const (
	modeNone inputMode = iota
	modeDrag
	modeConfirm
	modeAddColumn
	modeAddTask
)

// Model is the bubbletea model for one open board.
type Model struct {
	ctx     context.Context
	board   BoardController
	boardID string

	catalog  *i18n.Catalog
	keys     keyMap
	help     help.Model
	input    textinput.Model
	markdown *markdownRenderer
	toasts   *Toasts
	copyText func(string) error

	confirmDelete bool

	width   int
	height  int
	ready   bool
	loading bool
	err     error
	status  string

	mode        inputMode
	focusColumn int
	focusTask   int
	dragFrom    int
	dragTo      int
}

// loadedMsg reports a finished board fetch.
type loadedMsg struct {
	err error
}

// persistedMsg reports a finished column order update.
type persistedMsg struct {
	move app.Move
	err  error
}

// mutatedMsg reports a finished add or delete flow.
type mutatedMsg struct {
	err error
}

// NewModel constructs a model for boardID.
func NewModel(board BoardController, boardID string, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	input := textinput.New()
	input.Prompt = "› "
	input.CharLimit = 120
	catalog := i18n.New("")
	m := Model{
		ctx:           context.Background(),
		board:         board,
		boardID:       strings.TrimSpace(boardID),
		catalog:       catalog,
		keys:          newKeyMap(catalog),
		help:          h,
		input:         input,
		markdown:      &markdownRenderer{},
		toasts:        NewToasts(),
		copyText:      clipboard.WriteAll,
		confirmDelete: true,
		loading:       true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init starts the first board fetch.
func (m Model) Init() tea.Cmd {
	return m.load
}

// Update applies msg to the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(max(0, msg.Width-2))
		m.input.SetWidth(max(10, msg.Width/2))
		return m, nil

	case loadedMsg:
		m.loading = false
		m.err = msg.err
		m.clampFocus()
		m.drainToasts()
		return m, nil

	case persistedMsg:
		m.clampFocus()
		m.drainToasts()
		return m, nil

	case mutatedMsg:
		m.clampFocus()
		m.drainToasts()
		return m, nil

	case tea.KeyPressMsg:
		switch m.mode {
		case modeDrag:
			return m.updateDrag(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		case modeAddColumn, modeAddTask:
			return m.updateInput(msg)
		default:
			return m.updateNormal(msg)
		}
	}

	if m.mode == modeAddColumn || m.mode == modeAddTask {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// updateNormal handles keys while no prompt or drag is active.
func (m Model) updateNormal(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	board, ok := m.board.Board()
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.loading = true
		return m, m.load
	}
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.moveLeft):
		m.focusColumn--
		m.focusTask = 0
		m.clampFocus()
	case key.Matches(msg, m.keys.moveRight):
		m.focusColumn++
		m.focusTask = 0
		m.clampFocus()
	case key.Matches(msg, m.keys.moveUp):
		m.focusTask--
		m.clampFocus()
	case key.Matches(msg, m.keys.moveDown):
		m.focusTask++
		m.clampFocus()
	case key.Matches(msg, m.keys.grab):
		if len(board.Columns) == 0 {
			return m, nil
		}
		m.mode = modeDrag
		m.dragFrom = m.focusColumn
		m.dragTo = m.focusColumn
		m.status = m.movingStatus(board)
	case key.Matches(msg, m.keys.deleteItem):
		return m.requestDelete(board, false)
	case key.Matches(msg, m.keys.deleteCol):
		return m.requestDelete(board, true)
	case key.Matches(msg, m.keys.addColumn):
		return m, m.startInput(modeAddColumn, m.catalog.T(i18n.KeyNewColumn))
	case key.Matches(msg, m.keys.addTask):
		if len(board.Columns) == 0 {
			return m, nil
		}
		return m, m.startInput(modeAddTask, m.catalog.T(i18n.KeyNewTask))
	case key.Matches(msg, m.keys.copyID):
		m.copyFocusedID(board)
	}
	return m, nil
}

// updateDrag handles keys while a column is held.
func (m Model) updateDrag(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	board, ok := m.board.Board()
	if !ok || m.dragFrom >= len(board.Columns) {
		m.mode = modeNone
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.moveLeft):
		m.dragTo = clamp(m.dragTo-1, 0, len(board.Columns)-1)
		m.status = m.movingStatus(board)
	case key.Matches(msg, m.keys.moveRight):
		m.dragTo = clamp(m.dragTo+1, 0, len(board.Columns)-1)
		m.status = m.movingStatus(board)
	case key.Matches(msg, m.keys.drop):
		return m.drop(board, true)
	case key.Matches(msg, m.keys.cancel):
		return m.drop(board, false)
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// drop ends the drag. A cancelled drag reports no destination.
func (m Model) drop(board domain.Board, commit bool) (tea.Model, tea.Cmd) {
	result := app.DragResult{
		Type:        app.DragColumn,
		DraggableID: board.Columns[m.dragFrom].ID,
		Source:      app.Location{DroppableID: board.ID, Index: m.dragFrom},
	}
	if commit {
		result.Destination = &app.Location{DroppableID: board.ID, Index: m.dragTo}
	}
	m.mode = modeNone
	m.status = ""
	move, ok := m.board.Plan(result)
	if !ok {
		return m, nil
	}
	move = m.board.Apply(m.ctx, move)
	m.focusColumn = move.To
	m.focusTask = 0
	return m, m.persist(move)
}

// updateConfirm handles the delete confirmation prompt.
func (m Model) updateConfirm(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.confirm):
		m.mode = modeNone
		return m, m.confirm
	case key.Matches(msg, m.keys.deny):
		m.board.CancelDelete()
		m.mode = modeNone
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// updateInput handles the add-column and add-task prompts.
func (m Model) updateInput(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeInput()
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.closeInput()
		if title == "" {
			return m, nil
		}
		if mode == modeAddColumn {
			return m, m.addColumn(title)
		}
		board, ok := m.board.Board()
		if !ok || m.focusColumn >= len(board.Columns) {
			return m, nil
		}
		return m, m.addTask(board.Columns[m.focusColumn].ID, title)
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// requestDelete selects the focused task, or the focused column when asked
// for or when it has no tasks.
func (m Model) requestDelete(board domain.Board, wholeColumn bool) (tea.Model, tea.Cmd) {
	if m.focusColumn >= len(board.Columns) {
		return m, nil
	}
	column := board.Columns[m.focusColumn]
	if !wholeColumn && m.focusTask < len(column.Tasks) {
		m.board.RequestDeleteTask(column.Tasks[m.focusTask])
	} else {
		m.board.RequestDeleteColumn(column)
	}
	if !m.confirmDelete {
		return m, m.confirm
	}
	m.mode = modeConfirm
	return m, nil
}

// startInput opens a text prompt.
func (m *Model) startInput(mode inputMode, placeholder string) tea.Cmd {
	m.mode = mode
	m.input.Reset()
	m.input.Placeholder = placeholder
	return m.input.Focus()
}

// closeInput dismisses the text prompt.
func (m *Model) closeInput() {
	m.mode = modeNone
	m.input.Blur()
	m.input.Reset()
}

// copyFocusedID yanks the focused task id, falling back to the board id.
func (m *Model) copyFocusedID(board domain.Board) {
	id := board.ID
	if m.focusColumn < len(board.Columns) {
		tasks := board.Columns[m.focusColumn].Tasks
		if m.focusTask < len(tasks) {
			id = tasks[m.focusTask].ID
		}
	}
	if err := m.copyText(id); err != nil {
		m.status = err.Error()
		return
	}
	m.status = m.catalog.T(i18n.KeyCopied, id)
}

// clampFocus keeps focus indices inside the current board.
func (m *Model) clampFocus() {
	board, ok := m.board.Board()
	if !ok || len(board.Columns) == 0 {
		m.focusColumn = 0
		m.focusTask = 0
		return
	}
	m.focusColumn = clamp(m.focusColumn, 0, len(board.Columns)-1)
	m.focusTask = clamp(m.focusTask, 0, len(board.Columns[m.focusColumn].Tasks)-1)
}

// drainToasts moves queued notifications into the status line.
func (m *Model) drainToasts() {
	messages := m.toasts.Drain()
	if len(messages) == 0 {
		return
	}
	m.status = messages[len(messages)-1]
}

// movingStatus describes the current drag target.
func (m Model) movingStatus(board domain.Board) string {
	return m.catalog.T(i18n.KeyMoving, board.Columns[m.dragFrom].Title, m.dragTo+1, len(board.Columns))
}

// load fetches the board.
func (m Model) load() tea.Msg {
	return loadedMsg{err: m.board.Load(m.ctx, m.boardID)}
}

// persist sends the column order update.
func (m Model) persist(move app.Move) tea.Cmd {
	return func() tea.Msg {
		return persistedMsg{move: move, err: m.board.Persist(m.ctx, move)}
	}
}

// confirm runs the pending delete.
func (m Model) confirm() tea.Msg {
	return mutatedMsg{err: m.board.ConfirmDelete(m.ctx)}
}

// addColumn creates a column titled title.
func (m Model) addColumn(title string) tea.Cmd {
	return func() tea.Msg {
		return mutatedMsg{err: m.board.AddColumn(m.ctx, title)}
	}
}

// addTask creates a task in columnID.
func (m Model) addTask(columnID, title string) tea.Cmd {
	return func() tea.Msg {
		return mutatedMsg{err: m.board.AddTask(m.ctx, columnID, title, "")}
	}
}

// View renders the board.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render builds the full screen content.
func (m Model) render() string {
	board, ok := m.board.Board()
	if !ok {
		switch {
		case m.err != nil:
			return m.catalog.ErrorMessage(m.err) + "\n\n" + m.help.View(m.keys)
		default:
			return m.catalog.T(i18n.KeyLoading)
		}
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	sections := []string{titleStyle.Render(m.catalog.BoardHeader(board.Title))}

	if board.Description != "" {
		label := muted.Render(m.catalog.DescriptionLabel() + ":")
		sections = append(sections, label+"\n"+m.markdown.render(board.Description, max(24, m.width-4)))
	}

	if len(board.Columns) == 0 {
		sections = append(sections, muted.Render(m.catalog.T(i18n.KeyEmptyBoard)))
	} else {
		sections = append(sections, m.renderColumns(board))
	}

	switch m.mode {
	case modeAddColumn, modeAddTask:
		sections = append(sections, m.input.View())
	}
	if m.status != "" {
		sections = append(sections, muted.Render(m.status))
	}
	if m.mode == modeDrag {
		sections = append(sections, m.help.View(dragHelp{keys: m.keys}))
	} else {
		sections = append(sections, m.help.View(m.keys))
	}

	content := strings.Join(sections, "\n\n")
	if m.mode == modeConfirm {
		return overlayOnContent(content, m.renderConfirm(), m.width, m.height)
	}
	return content
}

// renderColumns lays the columns out side by side. While dragging, the held
// column is drawn at its target position.
func (m Model) renderColumns(board domain.Board) string {
	columns := board.Columns
	focused := m.focusColumn
	if m.mode == modeDrag {
		if preview, err := domain.MoveColumn(columns, m.dragFrom, m.dragTo); err == nil {
			columns = preview
			focused = m.dragTo
		}
	}

	colWidth := 28
	if m.width > 0 {
		colWidth = clamp(m.width/len(columns)-1, 16, 36)
	}
	taskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedTaskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)

	rendered := make([]string, 0, len(columns))
	for idx, column := range columns {
		accent := lipgloss.Color(m.board.ColorFor(column.ID))
		style := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1).
			Width(colWidth)
		if idx == focused {
			style = style.Border(lipgloss.ThickBorder())
		}
		lines := []string{
			lipgloss.NewStyle().Bold(true).Foreground(accent).Render(truncate(column.Title, colWidth-4)),
		}
		for taskIdx, task := range column.Tasks {
			title := truncate(task.Title, colWidth-6)
			if idx == focused && taskIdx == m.focusTask && m.mode != modeDrag {
				lines = append(lines, selectedTaskStyle.Render("› "+title))
				continue
			}
			lines = append(lines, taskStyle.Render("  "+title))
		}
		rendered = append(rendered, style.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// renderConfirm renders the delete confirmation box.
func (m Model) renderConfirm() string {
	pending := m.board.Pending()
	prompt := ""
	switch {
	case pending.Task != nil:
		prompt = m.catalog.ConfirmDeleteTask(pending.Task.Title)
	case pending.Column != nil:
		prompt = m.catalog.ConfirmDeleteColumn(pending.Column.Title)
	}
	choices := fmt.Sprintf("[y] %s   [n] %s", m.catalog.T(i18n.KeyYes), m.catalog.T(i18n.KeyNo))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("203")).
		Padding(1, 2).
		Render(prompt + "\n\n" + choices)
}

// clamp limits v to [minV, maxV].
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines pads or cuts content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay above base.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}
	canvas := lipgloss.NewCanvas(width, height)
	canvas.Compose(lipgloss.NewLayer(fitLines(base, height)).X(0).Y(0).Z(0))
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	canvas.Compose(lipgloss.NewLayer(centered).X(0).Y(0).Z(10))
	return canvas.Render()
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	if limit <= 1 {
		return string(rs[:limit])
	}
	return string(rs[:limit-1]) + "…"
}
