package app

import (
	"context"

	"github.com/hylla/tavla/internal/domain"
)

// BoardAPI is the remote board service the board view depends on.
type BoardAPI interface {
	ListBoards(context.Context) ([]domain.Board, error)
	FetchBoard(context.Context, string) (domain.Board, error)
	CreateBoard(context.Context, string, string) (domain.Board, error)
	DeleteBoard(context.Context, string) error

	CreateColumn(context.Context, string, string) (domain.Column, error)
	DeleteColumn(context.Context, string, string) error
	UpdateColumnOrder(context.Context, string, domain.Column, int) error

	CreateTask(context.Context, domain.TaskInput) (domain.Task, error)
	UpdateTask(context.Context, domain.Task) (domain.Task, error)
	DeleteTask(context.Context, domain.Task) error
}

// Notifier is the fire-and-forget user-visible alert surface.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(string)

// Notify calls f.
func (f NotifierFunc) Notify(message string) {
	if f != nil {
		f(message)
	}
}

// Notifiers fans one message out to every notifier.
type Notifiers []Notifier

// Notify forwards message to each non-nil notifier.
func (n Notifiers) Notify(message string) {
	for _, notifier := range n {
		if notifier != nil {
			notifier.Notify(message)
		}
	}
}

// KVStore is local persistent key/value storage.
type KVStore interface {
	Get(context.Context, string) (string, bool, error)
	Set(context.Context, string, string) error
	Delete(context.Context, string) error
}

// KVPruner is implemented by stores that can drop stale entries.
type KVPruner interface {
	PruneByPrefix(ctx context.Context, prefix string, keep int) (int, error)
}
