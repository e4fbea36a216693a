package rest

import (
	"context"
	"net/http"

	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
)

var _ app.BoardAPI = (*Client)(nil)

// ListBoards returns every board visible to the signed-in user.
func (c *Client) ListBoards(ctx context.Context) ([]domain.Board, error) {
	var out []boardDTO
	if err := c.do(ctx, call{method: http.MethodGet, path: []string{"boards"}, out: &out}); err != nil {
		return nil, err
	}
	boards := make([]domain.Board, 0, len(out))
	for _, b := range out {
		board, err := b.toDomain()
		if err != nil {
			return nil, invalidPayload(err)
		}
		boards = append(boards, board)
	}
	return boards, nil
}

// FetchBoard returns one board with its columns and tasks.
func (c *Client) FetchBoard(ctx context.Context, boardID string) (domain.Board, error) {
	var out boardDTO
	if err := c.do(ctx, call{method: http.MethodGet, path: []string{"boards", boardID}, out: &out}); err != nil {
		return domain.Board{}, err
	}
	return boardResult(out)
}

// CreateBoard creates a board.
func (c *Client) CreateBoard(ctx context.Context, title, description string) (domain.Board, error) {
	var out boardDTO
	in := boardInput{Title: title, Description: description}
	if err := c.do(ctx, call{method: http.MethodPost, path: []string{"boards"}, body: in, out: &out}); err != nil {
		return domain.Board{}, err
	}
	return boardResult(out)
}

// DeleteBoard removes a board.
func (c *Client) DeleteBoard(ctx context.Context, boardID string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: []string{"boards", boardID}})
}

// CreateColumn appends a column; the service assigns its order.
func (c *Client) CreateColumn(ctx context.Context, boardID, title string) (domain.Column, error) {
	var out columnDTO
	req := call{
		method: http.MethodPost,
		path:   []string{"boards", boardID, "columns"},
		body:   columnInput{Title: title},
		out:    &out,
	}
	if err := c.do(ctx, req); err != nil {
		return domain.Column{}, err
	}
	column, err := out.toDomain(boardID)
	if err != nil {
		return domain.Column{}, invalidPayload(err)
	}
	return column, nil
}

// DeleteColumn removes a column.
func (c *Client) DeleteColumn(ctx context.Context, boardID, columnID string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: []string{"boards", boardID, "columns", columnID}})
}

// UpdateColumnOrder moves column to the 1-based position.
func (c *Client) UpdateColumnOrder(ctx context.Context, boardID string, column domain.Column, position int) error {
	return c.do(ctx, call{
		method: http.MethodPut,
		path:   []string{"boards", boardID, "columns", column.ID},
		body:   columnInput{Title: column.Title, Order: position},
	})
}

// CreateTask creates a task in its column.
func (c *Client) CreateTask(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	var out taskDTO
	req := call{
		method: http.MethodPost,
		path:   []string{"boards", in.BoardID, "columns", in.ColumnID, "tasks"},
		body: taskDTO{
			Title:       in.Title,
			Order:       in.Order,
			Description: in.Description,
			UserID:      in.UserID,
		},
		out: &out,
	}
	if err := c.do(ctx, req); err != nil {
		return domain.Task{}, err
	}
	task, err := out.toDomain(in.BoardID, in.ColumnID)
	if err != nil {
		return domain.Task{}, invalidPayload(err)
	}
	return task, nil
}

// UpdateTask rewrites a task.
func (c *Client) UpdateTask(ctx context.Context, task domain.Task) (domain.Task, error) {
	var out taskDTO
	req := call{
		method: http.MethodPut,
		path:   []string{"boards", task.BoardID, "columns", task.ColumnID, "tasks", task.ID},
		body:   taskFromDomain(task),
		out:    &out,
	}
	if err := c.do(ctx, req); err != nil {
		return domain.Task{}, err
	}
	if out.ID == "" {
		return task, nil
	}
	updated, err := out.toDomain(task.BoardID, task.ColumnID)
	if err != nil {
		return domain.Task{}, invalidPayload(err)
	}
	return updated, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, task domain.Task) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		path:   []string{"boards", task.BoardID, "columns", task.ColumnID, "tasks", task.ID},
	})
}

func boardResult(out boardDTO) (domain.Board, error) {
	board, err := out.toDomain()
	if err != nil {
		return domain.Board{}, invalidPayload(err)
	}
	return board, nil
}
