package tui

import (
	"context"

	"github.com/hylla/tavla/internal/i18n"
)

type Option func(*Model)

func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

func WithCatalog(catalog *i18n.Catalog) Option {
	return func(m *Model) {
		if catalog != nil {
			m.catalog = catalog
			m.keys = newKeyMap(catalog)
		}
	}
}

func WithToasts(toasts *Toasts) Option {
	return func(m *Model) {
		if toasts != nil {
			m.toasts = toasts
		}
	}
}

func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

func WithConfirmDelete(confirm bool) Option {
	return func(m *Model) {
		m.confirmDelete = confirm
	}
}
