package domain

import (
	"slices"
	"strings"
)

// Column is one ordered task lane of a board.
type Column struct {
	ID    string
	Title string
	Order int
	Tasks []Task
}

// NewColumn constructs a column with trimmed identifiers.
func NewColumn(id, title string, order int) (Column, error) {
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)
	if id == "" {
		return Column{}, ErrInvalidID
	}
	if title == "" {
		return Column{}, ErrInvalidTitle
	}
	if order < 0 {
		return Column{}, ErrInvalidOrder
	}
	return Column{
		ID:    id,
		Title: title,
		Order: order,
		Tasks: []Task{},
	}, nil
}



// Clone returns a copy that shares no task storage with c.
func (c Column) Clone() Column {
	c.Tasks = slices.Clone(c.Tasks)
	if c.Tasks == nil {
		c.Tasks = []Task{}
	}
	return c
}

// TaskByID returns the task with the given id.
func (c Column) TaskByID(id string) (Task, bool) {
	for _, task := range c.Tasks {
		if task.ID == id {
			return task, true
		}
	}
	return Task{}, false
}

// SortColumns sorts columns ascending by Order. Equal orders keep their
// relative input order.
func SortColumns(columns []Column) {
	slices.SortStableFunc(columns, func(a, b Column) int {
		return a.Order - b.Order
	})
}
