package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hylla/tavla/internal/domain"
)

type orderCall struct {
	boardID  string
	column   domain.Column
	position int
}

type fakeAPI struct {
	mu sync.Mutex

	boards map[string]domain.Board

	fetchErr   error
	deleteErr  error
	orderErr   error
	createErr  error
	fetchCalls int

	orderCalls    []orderCall
	deletedColumn []string
	deletedTasks  []string
	createdTasks  []domain.TaskInput
	nextID        int
}

func newFakeAPI(boards ...domain.Board) *fakeAPI {
	f := &fakeAPI{boards: map[string]domain.Board{}}
	for _, b := range boards {
		f.boards[b.ID] = b.Clone()
	}
	return f
}

func (f *fakeAPI) ListBoards(context.Context) ([]domain.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Board, 0, len(f.boards))
	for _, b := range f.boards {
		out = append(out, b.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAPI) FetchBoard(_ context.Context, id string) (domain.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return domain.Board{}, f.fetchErr
	}
	b, ok := f.boards[id]
	if !ok {
		return domain.Board{}, &APIError{Kind: KindNotFound, Status: 404, Message: "board not found"}
	}
	return b.Clone(), nil
}

func (f *fakeAPI) CreateBoard(_ context.Context, title, description string) (domain.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := domain.Board{ID: f.id("b"), Title: title, Description: description}
	f.boards[b.ID] = b
	return b, nil
}

func (f *fakeAPI) DeleteBoard(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.boards, id)
	return nil
}

func (f *fakeAPI) CreateColumn(_ context.Context, boardID, title string) (domain.Column, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.Column{}, f.createErr
	}
	b := f.boards[boardID]
	c := domain.Column{ID: f.id("c"), Title: title, Order: len(b.Columns) + 1}
	b.Columns = append(b.Columns, c)
	f.boards[boardID] = b
	return c, nil
}

func (f *fakeAPI) DeleteColumn(_ context.Context, boardID, columnID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedColumn = append(f.deletedColumn, columnID)
	b := f.boards[boardID]
	out := b.Columns[:0]
	for _, c := range b.Columns {
		if c.ID != columnID {
			out = append(out, c)
		}
	}
	b.Columns = out
	f.boards[boardID] = b
	return nil
}

func (f *fakeAPI) UpdateColumnOrder(_ context.Context, boardID string, column domain.Column, position int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderCalls = append(f.orderCalls, orderCall{boardID: boardID, column: column, position: position})
	return f.orderErr
}

func (f *fakeAPI) CreateTask(_ context.Context, in domain.TaskInput) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.Task{}, f.createErr
	}
	in.ID = f.id("t")
	f.createdTasks = append(f.createdTasks, in)
	task := domain.Task(in)
	b := f.boards[in.BoardID]
	for i := range b.Columns {
		if b.Columns[i].ID == in.ColumnID {
			b.Columns[i].Tasks = append(b.Columns[i].Tasks, task)
		}
	}
	f.boards[in.BoardID] = b
	return task, nil
}

func (f *fakeAPI) UpdateTask(_ context.Context, task domain.Task) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.boards[task.BoardID]
	for i := range b.Columns {
		for j := range b.Columns[i].Tasks {
			if b.Columns[i].Tasks[j].ID == task.ID {
				b.Columns[i].Tasks[j] = task
			}
		}
	}
	f.boards[task.BoardID] = b
	return task, nil
}

func (f *fakeAPI) DeleteTask(_ context.Context, task domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedTasks = append(f.deletedTasks, task.ID)
	b := f.boards[task.BoardID]
	for i := range b.Columns {
		out := b.Columns[i].Tasks[:0]
		for _, t := range b.Columns[i].Tasks {
			if t.ID != task.ID {
				out = append(out, t)
			}
		}
		b.Columns[i].Tasks = out
	}
	f.boards[task.BoardID] = b
	return nil
}

func (f *fakeAPI) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func (f *fakeAPI) setBoard(b domain.Board) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.boards[b.ID] = b.Clone()
}

type fakeKV struct {
	mu     sync.Mutex
	values map[string]string
	seq    map[string]int
	n      int
	setErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: map[string]string{}, seq: map[string]int{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.n++
	f.values[key] = value
	f.seq[key] = f.n
	return nil
}

func (f *fakeKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	delete(f.seq, key)
	return nil
}

type pruningKV struct {
	*fakeKV
}

func (p pruningKV) PruneByPrefix(_ context.Context, prefix string, keep int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return p.seq[keys[i]] > p.seq[keys[j]] })
	removed := 0
	for _, k := range keys[min(keep, len(keys)):] {
		delete(p.values, k)
		delete(p.seq, k)
		removed++
	}
	return removed, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingNotifier) Notify(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

var errBoom = errors.New("boom")

func sampleBoard() domain.Board {
	return domain.Board{
		ID:    "b1",
		Title: "Roadmap",
		Columns: []domain.Column{
			{ID: "A", Title: "Todo", Order: 1, Tasks: []domain.Task{
				{ID: "t1", Title: "write", Order: 1, BoardID: "b1", ColumnID: "A"},
			}},
			{ID: "B", Title: "Doing", Order: 2},
			{ID: "C", Title: "Done", Order: 3},
		},
	}
}

func columnIDs(b domain.Board) string {
	return strings.Join(b.ColumnIDs(), ",")
}
