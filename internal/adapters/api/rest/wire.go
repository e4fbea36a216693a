package rest

import (
	"fmt"
	"strings"

	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
)

// errorBody is the failure payload the service returns.
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

type boardDTO struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Columns     []columnDTO `json:"columns,omitempty"`
}

type columnDTO struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Order int       `json:"order"`
	Tasks []taskDTO `json:"tasks,omitempty"`
}

type taskDTO struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Order       int    `json:"order"`
	Description string `json:"description"`
	UserID      string `json:"userId"`
	BoardID     string `json:"boardId,omitempty"`
	ColumnID    string `json:"columnId,omitempty"`
}

type boardInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type columnInput struct {
	Title string `json:"title"`
	Order int    `json:"order,omitempty"`
}

type userDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Login string `json:"login"`
}

type credentials struct {
	Name     string `json:"name,omitempty"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

type tokenDTO struct {
	Token string `json:"token"`
}

// toDomain validates the payload through the domain constructors.
func (b boardDTO) toDomain() (domain.Board, error) {
	board, err := domain.NewBoard(b.ID, b.Title, b.Description)
	if err != nil {
		return domain.Board{}, fmt.Errorf("board %q: %w", b.ID, err)
	}
	for _, c := range b.Columns {
		column, err := c.toDomain(board.ID)
		if err != nil {
			return domain.Board{}, fmt.Errorf("board %q: %w", board.ID, err)
		}
		board.Columns = append(board.Columns, column)
	}
	return board, nil
}

func (c columnDTO) toDomain(boardID string) (domain.Column, error) {
	column, err := domain.NewColumn(c.ID, c.Title, c.Order)
	if err != nil {
		return domain.Column{}, fmt.Errorf("column %q: %w", c.ID, err)
	}
	for _, t := range c.Tasks {
		task, err := t.toDomain(boardID, column.ID)
		if err != nil {
			return domain.Column{}, fmt.Errorf("column %q: %w", column.ID, err)
		}
		column.Tasks = append(column.Tasks, task)
	}
	return column, nil
}

// toDomain fills missing back-references from the request context.
func (t taskDTO) toDomain(boardID, columnID string) (domain.Task, error) {
	in := domain.TaskInput{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Order:       t.Order,
		UserID:      t.UserID,
		BoardID:     t.BoardID,
		ColumnID:    t.ColumnID,
	}
	if strings.TrimSpace(in.BoardID) == "" {
		in.BoardID = boardID
	}
	if strings.TrimSpace(in.ColumnID) == "" {
		in.ColumnID = columnID
	}
	task, err := domain.NewTask(in)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %q: %w", t.ID, err)
	}
	return task, nil
}

func taskFromDomain(t domain.Task) taskDTO {
	return taskDTO{
		Title:       t.Title,
		Order:       t.Order,
		Description: t.Description,
		UserID:      t.UserID,
		BoardID:     t.BoardID,
		ColumnID:    t.ColumnID,
	}
}

func (u userDTO) toDomain() (domain.User, error) {
	user, err := domain.NewUser(u.ID, u.Name, u.Login)
	if err != nil {
		return domain.User{}, fmt.Errorf("user %q: %w", u.ID, err)
	}
	return user, nil
}

// invalidPayload tags a response that decoded but failed validation.
func invalidPayload(err error) error {
	return &app.APIError{Kind: app.KindUnknown, Err: fmt.Errorf("invalid response: %w", err)}
}
