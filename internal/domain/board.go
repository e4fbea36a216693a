package domain

import (
	"strings"
)

// Board is the top-level container of ordered columns.
type Board struct {
	ID          string
	Title       string
	Description string
	Columns     []Column
}

// NewBoard constructs a board with no columns.
func NewBoard(id, title, description string) (Board, error) {
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)
	if id == "" {
		return Board{}, ErrInvalidID
	}
	if title == "" {
		return Board{}, ErrInvalidTitle
	}
	return Board{
		ID:          id,
		Title:       title,
		Description: strings.TrimSpace(description),
		Columns:     []Column{},
	}, nil
}

// Clone deep-copies the board so callers can mutate the result freely.
func (b Board) Clone() Board {
	columns := make([]Column, 0, len(b.Columns))
	for _, column := range b.Columns {
		columns = append(columns, column.Clone())
	}
	b.Columns = columns
	return b
}

// Sorted returns a copy with columns, and the tasks of each column, in
// ascending order.
func (b Board) Sorted() Board {
	out := b.Clone()
	SortColumns(out.Columns)
	for idx := range out.Columns {
		SortTasks(out.Columns[idx].Tasks)
	}
	return out
}

// ColumnIndex returns the position of the column id, or -1.
func (b Board) ColumnIndex(id string) int {
	for idx, column := range b.Columns {
		if column.ID == id {
			return idx
		}
	}
	return -1
}

// ColumnIDs lists column ids in display order.
func (b Board) ColumnIDs() []string {
	out := make([]string, 0, len(b.Columns))
	for _, column := range b.Columns {
		out = append(out, column.ID)
	}
	return out
}

