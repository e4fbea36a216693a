package app

import (
	"context"
	"errors"
	"testing"

	"github.com/hylla/tavla/internal/domain"
)

func newTestView(t *testing.T, api *fakeAPI, kv KVStore, cfg ViewConfig) (*BoardView, *recordingNotifier) {
	t.Helper()
	notes := &recordingNotifier{}
	view := NewBoardView(api, kv, notes, cfg)
	if err := view.Load(context.Background(), "b1"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return view, notes
}

func columnDrag(from, to int) DragResult {
	return DragResult{
		Type:        DragColumn,
		Source:      Location{DroppableID: "board", Index: from},
		Destination: &Location{DroppableID: "board", Index: to},
	}
}

func TestHandleDragEndMovesLastColumnFirst(t *testing.T) {
	api := newFakeAPI(sampleBoard())
	view, notes := newTestView(t, api, newFakeKV(), ViewConfig{})

	moved, err := view.HandleDragEnd(context.Background(), columnDrag(2, 0))
	if err != nil {
		t.Fatalf("HandleDragEnd() error = %v", err)
	}
	if !moved {
		t.Fatal("expected move")
	}
	board, _ := view.Board()
	if got := columnIDs(board); got != "C,A,B" {
		t.Fatalf("unexpected order %q", got)
	}
	for idx, column := range board.Columns {
		if column.Order != idx+1 {
			t.Fatalf("column %s order = %d, want %d", column.ID, column.Order, idx+1)
		}
	}
	if len(api.orderCalls) != 1 {
		t.Fatalf("expected one update request, got %d", len(api.orderCalls))
	}
	call := api.orderCalls[0]
	if call.boardID != "b1" || call.column.ID != "C" || call.position != 1 {
		t.Fatalf("unexpected update request %#v", call)
	}
	if notes.count() != 0 {
		t.Fatalf("unexpected notifications %#v", notes.messages)
	}
}

func TestHandleDragEndPermutationPreservesColumns(t *testing.T) {
	for from := 0; from < 3; from++ {
		for to := 0; to < 3; to++ {
			api := newFakeAPI(sampleBoard())
			view, _ := newTestView(t, api, newFakeKV(), ViewConfig{})
			before, _ := view.Board()

			if _, err := view.HandleDragEnd(context.Background(), columnDrag(from, to)); err != nil {
				t.Fatalf("HandleDragEnd(%d,%d) error = %v", from, to, err)
			}
			after, _ := view.Board()
			if len(after.Columns) != len(before.Columns) {
				t.Fatalf("column count changed %d -> %d", len(before.Columns), len(after.Columns))
			}
			seen := map[string]bool{}
			for _, c := range after.Columns {
				seen[c.ID] = true
			}
			for _, c := range before.Columns {
				if !seen[c.ID] {
					t.Fatalf("column %s lost after move %d->%d", c.ID, from, to)
				}
			}
			if after.Columns[to].ID != before.Columns[from].ID {
				t.Fatalf("move %d->%d placed %s at destination", from, to, after.Columns[to].ID)
			}
			want := 1
			if from == to {
				want = 0
			}
			if len(api.orderCalls) != want {
				t.Fatalf("move %d->%d sent %d requests, want %d", from, to, len(api.orderCalls), want)
			}
		}
	}
}

func TestHandleDragEndWithoutDestinationIsNoop(t *testing.T) {
	api := newFakeAPI(sampleBoard())
	view, notes := newTestView(t, api, newFakeKV(), ViewConfig{})

	result := columnDrag(0, 2)
	result.Destination = nil
	moved, err := view.HandleDragEnd(context.Background(), result)
	if err != nil || moved {
		t.Fatalf("HandleDragEnd() = %v, %v; want false, nil", moved, err)
	}
	board, _ := view.Board()
	if got := columnIDs(board); got != "A,B,C" {
		t.Fatalf("unexpected order %q", got)
	}
	if len(api.orderCalls) != 0 || notes.count() != 0 {
		t.Fatalf("expected no requests or notifications, got %d/%d", len(api.orderCalls), notes.count())
	}
}

func TestHandleDragEndIgnoresTasksAndBadIndexes(t *testing.T) {
	api := newFakeAPI(sampleBoard())
	view, _ := newTestView(t, api, newFakeKV(), ViewConfig{})

	task := columnDrag(0, 1)
	task.Type = DragTask
	if moved, _ := view.HandleDragEnd(context.Background(), task); moved {
		t.Fatal("expected task drag to be ignored")
	}
	if moved, _ := view.HandleDragEnd(context.Background(), columnDrag(0, 7)); moved {
		t.Fatal("expected out-of-range drag to be ignored")
	}
	if len(api.orderCalls) != 0 {
		t.Fatalf("expected no requests, got %d", len(api.orderCalls))
	}
}

func TestPlanResolvesSourceByColumnID(t *testing.T) {
	api := newFakeAPI(sampleBoard())
	view, _ := newTestView(t, api, newFakeKV(), ViewConfig{})

	// The drag started on C at index 2, but a refetch dropped A meanwhile.
	board, _ := view.Board()
	board.Columns = board.Columns[1:]
	view.Replace(context.Background(), board)

	result := columnDrag(2, 0)
	result.DraggableID = "C"
	moved, err := view.HandleDragEnd(context.Background(), result)
	if err != nil || !moved {
		t.Fatalf("HandleDragEnd() = %v, %v; want true, nil", moved, err)
	}
	board, _ = view.Board()
	if got := columnIDs(board); got != "C,B" {
		t.Fatalf("unexpected order %q", got)
	}
	if len(api.orderCalls) != 1 || api.orderCalls[0].column.ID != "C" || api.orderCalls[0].position != 1 {
		t.Fatalf("unexpected update requests %#v", api.orderCalls)
	}

	gone := columnDrag(0, 1)
	gone.DraggableID = "A"
	if moved, _ := view.HandleDragEnd(context.Background(), gone); moved {
		t.Fatal("expected drag of a removed column to be ignored")
	}
	if len(api.orderCalls) != 1 {
		t.Fatalf("expected no extra request, got %d", len(api.orderCalls))
	}
}

func TestPlanSameIndexIsNoopAcrossDroppables(t *testing.T) {
	api := newFakeAPI(sampleBoard())
	view, _ := newTestView(t, api, newFakeKV(), ViewConfig{})

	result := columnDrag(1, 1)
	result.Destination.DroppableID = "elsewhere"
	if _, ok := view.Plan(result); ok {
		t.Fatal("expected same-index column drag to be a no-op")
	}
	result.DraggableID = "B"
	if moved, _ := view.HandleDragEnd(context.Background(), result); moved {
		t.Fatal("expected same-index column drag to be a no-op")
	}
	if len(api.orderCalls) != 0 {
		t.Fatalf("expected no requests, got %d", len(api.orderCalls))
	}
}

func TestPlanWithoutBoard(t *testing.T) {
	view := NewBoardView(newFakeAPI(), newFakeKV(), nil, ViewConfig{})
	if _, ok := view.Plan(columnDrag(0, 1)); ok {
		t.Fatal("expected no plan without a board")
	}
}

func TestPersistFailureKeepsOptimisticOrderByDefault(t *testing.T) {
	api := newFakeAPI(sampleBoard())
	api.orderErr = &APIError{Kind: KindNetwork, Err: errBoom}
	view, notes := newTestView(t, api, newFakeKV(), ViewConfig{})

	moved, err := view.HandleDragEnd(context.Background(), columnDrag(2, 0))
	if !moved || !errors.Is(err, ErrNetwork) {
		t.Fatalf("HandleDragEnd() = %v, %v; want true, network error", moved, err)
	}
	board, _ := view.Board()
	if got := columnIDs(board); got != "C,A,B" {
		t.Fatalf("unexpected order %q", got)
	}
	if notes.count() != 1 || notes.messages[0] != "boom" {
		t.Fatalf("unexpected notifications %#v", notes.messages)
	}
}

func TestPersistFailureRollsBackWhenEnabled(t *testing.T) {
	api := newFakeAPI(sampleBoard())
	api.orderErr = &APIError{Kind: KindUnknown, Status: 500, Message: "nope"}
	view, notes := newTestView(t, api, newFakeKV(), ViewConfig{RollbackReorderOnFailure: true})

	if _, err := view.HandleDragEnd(context.Background(), columnDrag(2, 0)); err == nil {
		t.Fatal("expected persistence error")
	}
	board, _ := view.Board()
	if got := columnIDs(board); got != "A,B,C" {
		t.Fatalf("expected rollback, got %q", got)
	}
	if notes.count() != 1 || notes.messages[0] != "nope" {
		t.Fatalf("unexpected notifications %#v", notes.messages)
	}
}

func TestRollbackSkipsWhenBoardReplacedMeanwhile(t *testing.T) {
	api := newFakeAPI(sampleBoard())
	api.orderErr = errBoom
	view, _ := newTestView(t, api, newFakeKV(), ViewConfig{RollbackReorderOnFailure: true})
	ctx := context.Background()

	move, ok := view.Plan(columnDrag(0, 2))
	if !ok {
		t.Fatal("expected plan")
	}
	move = view.Apply(ctx, move)

	fresh := sampleBoard()
	fresh.Columns = append(fresh.Columns, domain.Column{ID: "D", Title: "Later", Order: 4})
	api.setBoard(fresh)
	if err := view.Load(ctx, "b1"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := view.Persist(ctx, move); err == nil {
		t.Fatal("expected persistence error")
	}
	board, _ := view.Board()
	if got := columnIDs(board); got != "A,B,C,D" {
		t.Fatalf("expected refetched board to survive, got %q", got)
	}
}

func TestApplyBeforePersist(t *testing.T) {
	api := newFakeAPI(sampleBoard())
	view, _ := newTestView(t, api, newFakeKV(), ViewConfig{})

	move, ok := view.Plan(columnDrag(0, 1))
	if !ok {
		t.Fatal("expected plan")
	}
	if move.Position() != 2 || move.Column.ID != "A" {
		t.Fatalf("unexpected move %#v", move)
	}
	view.Apply(context.Background(), move)
	board, _ := view.Board()
	if got := columnIDs(board); got != "B,A,C" {
		t.Fatalf("unexpected order %q", got)
	}
	if len(api.orderCalls) != 0 {
		t.Fatal("apply must not persist")
	}
}
