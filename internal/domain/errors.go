package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidOrder    = errors.New("invalid order")
	ErrInvalidColumnID = errors.New("invalid column id")
	ErrInvalidBoardID  = errors.New("invalid board id")
	ErrInvalidIndex    = errors.New("invalid index")
	ErrInvalidLogin    = errors.New("invalid login")
)
