package domain

// MoveColumn removes the column at from and reinserts it at to. The input is
// not modified; the result holds the same members with only the moved column
// changing position.
func MoveColumn(columns []Column, from, to int) ([]Column, error) {
	if from < 0 || from >= len(columns) || to < 0 || to >= len(columns) {
		return nil, ErrInvalidIndex
	}
	out := make([]Column, 0, len(columns))
	moved := columns[from]
	for idx, column := range columns {
		if idx == from {
			continue
		}
		out = append(out, column)
	}
	out = append(out, Column{})
	copy(out[to+1:], out[to:])
	out[to] = moved
	return out, nil
}

// Renumber assigns 1-based orders matching the current sequence.
func Renumber(columns []Column) {
	for idx := range columns {
		columns[idx].Order = idx + 1
	}
}
