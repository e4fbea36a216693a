package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hylla/tavla/internal/domain"
)

// PendingDelete is the item awaiting confirmation.
type PendingDelete struct {
	Column      *domain.Column
	Task        *domain.Task
	ConfirmOpen bool
}

// Mutations runs remote-first add/edit/delete flows. Local state only changes
// through a refetch after the remote call succeeds.
type Mutations struct {
	store    *BoardStore
	api      BoardAPI
	notifier Notifier
	format   MessageFormatter
	userID   string

	mu      sync.Mutex
	pending PendingDelete
}

// NewMutations constructs the mutation handlers.
func NewMutations(store *BoardStore, api BoardAPI, notifier Notifier, format MessageFormatter, userID string) *Mutations {
	if notifier == nil {
		notifier = Notifiers(nil)
	}
	if format == nil {
		format = Message
	}
	return &Mutations{
		store:    store,
		api:      api,
		notifier: notifier,
		format:   format,
		userID:   strings.TrimSpace(userID),
	}
}

// RequestDeleteColumn selects column for deletion and opens the prompt.
func (m *Mutations) RequestDeleteColumn(column domain.Column) {
	column = column.Clone()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = PendingDelete{Column: &column, ConfirmOpen: true}
}

// RequestDeleteTask selects task for deletion and opens the prompt.
func (m *Mutations) RequestDeleteTask(task domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = PendingDelete{Task: &task, ConfirmOpen: true}
}

// CancelDelete clears the selection and closes the prompt.
func (m *Mutations) CancelDelete() {
	m.clearPending()
}

// Pending returns the current delete selection.
func (m *Mutations) Pending() PendingDelete {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// ConfirmDelete deletes whatever is pending.
func (m *Mutations) ConfirmDelete(ctx context.Context) error {
	pending := m.Pending()
	switch {
	case pending.Column != nil:
		return m.DeleteColumn(ctx, *pending.Column)
	case pending.Task != nil:
		return m.DeleteTask(ctx, *pending.Task)
	default:
		m.clearPending()
		return ErrNoPendingDelete
	}
}

// DeleteColumn removes column remotely, then refetches the board.
func (m *Mutations) DeleteColumn(ctx context.Context, column domain.Column) error {
	defer m.clearPending()
	boardID, ok := m.store.BoardID()
	if !ok {
		return ErrNoBoard
	}
	if err := m.api.DeleteColumn(ctx, boardID, column.ID); err != nil {
		m.notifier.Notify(m.format(err))
		return fmt.Errorf("delete column %q: %w", column.ID, err)
	}
	return m.store.Load(ctx, boardID)
}

// DeleteTask removes task remotely, then refetches the board.
func (m *Mutations) DeleteTask(ctx context.Context, task domain.Task) error {
	defer m.clearPending()
	boardID, ok := m.store.BoardID()
	if !ok {
		return ErrNoBoard
	}
	if strings.TrimSpace(task.BoardID) == "" {
		task.BoardID = boardID
	}
	if err := m.api.DeleteTask(ctx, task); err != nil {
		m.notifier.Notify(m.format(err))
		return fmt.Errorf("delete task %q: %w", task.ID, err)
	}
	return m.store.Load(ctx, boardID)
}

// AddColumn creates a column remotely, then refetches the board.
func (m *Mutations) AddColumn(ctx context.Context, title string) error {
	boardID, ok := m.store.BoardID()
	if !ok {
		return ErrNoBoard
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.ErrInvalidTitle
	}
	if _, err := m.api.CreateColumn(ctx, boardID, title); err != nil {
		m.notifier.Notify(m.format(err))
		return fmt.Errorf("create column: %w", err)
	}
	return m.store.Load(ctx, boardID)
}

// AddTask creates a task in columnID, then refetches the board.
func (m *Mutations) AddTask(ctx context.Context, columnID, title, description string) error {
	board, ok := m.store.Board()
	if !ok {
		return ErrNoBoard
	}
	idx := board.ColumnIndex(columnID)
	if idx < 0 {
		return ErrColumnNotOnBoard
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.ErrInvalidTitle
	}
	in := domain.TaskInput{
		Title:       title,
		Description: strings.TrimSpace(description),
		Order:       len(board.Columns[idx].Tasks) + 1,
		UserID:      m.userID,
		BoardID:     board.ID,
		ColumnID:    columnID,
	}
	if _, err := m.api.CreateTask(ctx, in); err != nil {
		m.notifier.Notify(m.format(err))
		return fmt.Errorf("create task: %w", err)
	}
	return m.store.Load(ctx, board.ID)
}

// EditTask updates task remotely, then refetches the board.
func (m *Mutations) EditTask(ctx context.Context, task domain.Task) error {
	boardID, ok := m.store.BoardID()
	if !ok {
		return ErrNoBoard
	}
	if err := task.UpdateDetails(task.Title, task.Description); err != nil {
		return err
	}
	if strings.TrimSpace(task.UserID) == "" {
		task.UserID = m.userID
	}
	if _, err := m.api.UpdateTask(ctx, task); err != nil {
		m.notifier.Notify(m.format(err))
		return fmt.Errorf("update task %q: %w", task.ID, err)
	}
	return m.store.Load(ctx, boardID)
}

// clearPending resets the selection and closes the prompt.
func (m *Mutations) clearPending() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = PendingDelete{}
}
