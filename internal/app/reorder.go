package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/hylla/tavla/internal/domain"
)

// DragType names the collection a drag operated on.
type DragType string

// DragColumn and DragTask are the supported drag collections.
const (
	DragColumn DragType = "column"
	DragTask   DragType = "task"
)

// Location is one slot inside a droppable collection.
type Location struct {
	DroppableID string
	Index       int
}

// DragResult describes a completed drag. A nil Destination means the item
// was dropped outside any valid target.
type DragResult struct {
	Type        DragType
	DraggableID string
	Source      Location
	Destination *Location
}

// Move is a planned column reorder.
type Move struct {
	BoardID  string
	Column   domain.Column
	From     int
	To       int
	Previous domain.Board
	Next     domain.Board

	applied uint64
}

// Position is the 1-based position sent to the board service.
func (m Move) Position() int {
	return m.To + 1
}

// Reconciler turns drag results into an optimistic local reorder plus one
// persistence request.
type Reconciler struct {
	store    *BoardStore
	api      BoardAPI
	notifier Notifier
	format   MessageFormatter
	rollback bool
}

// NewReconciler constructs a reconciler. With rollback set, a failed
// persistence restores the pre-drag order unless the board changed since.
func NewReconciler(store *BoardStore, api BoardAPI, notifier Notifier, format MessageFormatter, rollback bool) *Reconciler {
	if notifier == nil {
		notifier = Notifiers(nil)
	}
	if format == nil {
		format = Message
	}
	return &Reconciler{
		store:    store,
		api:      api,
		notifier: notifier,
		format:   format,
		rollback: rollback,
	}
}

// Plan computes the move for result without touching state. A set
// DraggableID locates the source column by id. It reports false for cancelled
// drags, drops onto the source slot, task drags, columns no longer on the
// board and indexes outside it.
func (r *Reconciler) Plan(result DragResult) (Move, bool) {
	if result.Destination == nil || result.Type != DragColumn {
		return Move{}, false
	}
	dest := *result.Destination
	board, ok := r.store.Board()
	if !ok {
		return Move{}, false
	}
	from := result.Source.Index
	if id := strings.TrimSpace(result.DraggableID); id != "" {
		// The board may have been refetched since the drag started.
		from = board.ColumnIndex(id)
		if from < 0 {
			return Move{}, false
		}
	}
	if from == dest.Index {
		return Move{}, false
	}
	columns, err := domain.MoveColumn(board.Columns, from, dest.Index)
	if err != nil {
		return Move{}, false
	}
	domain.Renumber(columns)

	next := board.Clone()
	next.Columns = columns
	return Move{
		BoardID:  board.ID,
		Column:   board.Columns[from].Clone(),
		From:     from,
		To:       dest.Index,
		Previous: board,
		Next:     next,
	}, true
}

// Apply installs the planned order locally.
func (r *Reconciler) Apply(ctx context.Context, move Move) Move {
	move.applied = r.store.replace(ctx, move.Next)
	return move
}

// Persist sends the single order update for an applied move.
func (r *Reconciler) Persist(ctx context.Context, move Move) error {
	err := r.api.UpdateColumnOrder(ctx, move.BoardID, move.Column, move.Position())
	if err == nil {
		return nil
	}
	r.notifier.Notify(r.format(err))
	if r.rollback {
		r.store.restoreIf(ctx, move.applied, move.Previous)
	}
	return fmt.Errorf("update column %q order: %w", move.Column.ID, err)
}

// HandleDragEnd plans, applies and persists in one call. It reports whether a
// move happened.
func (r *Reconciler) HandleDragEnd(ctx context.Context, result DragResult) (bool, error) {
	move, ok := r.Plan(result)
	if !ok {
		return false, nil
	}
	move = r.Apply(ctx, move)
	return true, r.Persist(ctx, move)
}
