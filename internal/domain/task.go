package domain

import (
	"slices"
	"strings"
)

// Task is a leaf work item. ColumnID and BoardID are back-references.
type Task struct {
	ID          string
	Title       string
	Description string
	Order       int
	UserID      string
	BoardID     string
	ColumnID    string
}

// TaskInput holds values for NewTask.
type TaskInput struct {
	ID          string
	Title       string
	Description string
	Order       int
	UserID      string
	BoardID     string
	ColumnID    string
}

func NewTask(in TaskInput) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.UserID = strings.TrimSpace(in.UserID)
	in.BoardID = strings.TrimSpace(in.BoardID)
	in.ColumnID = strings.TrimSpace(in.ColumnID)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.BoardID == "" {
		return Task{}, ErrInvalidBoardID
	}
	if in.ColumnID == "" {
		return Task{}, ErrInvalidColumnID
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	if in.Order < 0 {
		return Task{}, ErrInvalidOrder
	}

	return Task(in), nil
}

func (t *Task) UpdateDetails(title, description string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrInvalidTitle
	}
	t.Title = title
	t.Description = strings.TrimSpace(description)
	return nil
}

func SortTasks(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		return a.Order - b.Order
	})
}
