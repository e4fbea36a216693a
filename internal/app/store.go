package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hylla/tavla/internal/domain"
)

// MessageFormatter turns an error into the text shown to the user.
type MessageFormatter func(error) string

// BoardStore holds the one board a view renders, plus its color map.
// Remote calls run outside the lock, so concurrent loads resolve
// last-writer-wins.
type BoardStore struct {
	api      BoardAPI
	colors   *ColorStore
	notifier Notifier
	format   MessageFormatter

	mu       sync.Mutex
	board    *domain.Board
	colorMap ColorMap
	version  uint64
}

// NewBoardStore constructs an empty store.
func NewBoardStore(api BoardAPI, colors *ColorStore, notifier Notifier, format MessageFormatter) *BoardStore {
	if notifier == nil {
		notifier = Notifiers(nil)
	}
	if format == nil {
		format = Message
	}
	return &BoardStore{
		api:      api,
		colors:   colors,
		notifier: notifier,
		format:   format,
	}
}

// Load fetches the canonical board, sorts it, merges colors and replaces the
// local state. On failure the previous state is kept and the user notified.
func (s *BoardStore) Load(ctx context.Context, boardID string) error {
	boardID = strings.TrimSpace(boardID)
	if boardID == "" {
		return domain.ErrInvalidBoardID
	}
	board, err := s.api.FetchBoard(ctx, boardID)
	if err != nil {
		s.notifier.Notify(s.format(err))
		return fmt.Errorf("fetch board %q: %w", boardID, err)
	}
	board = board.Sorted()

	// An unreadable stored map is treated as absent and rewritten below.
	stored, found, _ := s.colors.Load(ctx, board.ID)

	s.mu.Lock()
	base := stored
	if !found && s.board != nil && s.board.ID == board.ID {
		base = s.colorMap
	}
	colors, _ := AssignColors(base, board.Columns)
	s.board = &board
	s.colorMap = colors
	s.version++
	s.mu.Unlock()

	s.persistColors(ctx, board.ID, colors)
	return nil
}

// Replace overwrites the local board without refetching. Columns are kept in
// the given sequence.
func (s *BoardStore) Replace(ctx context.Context, board domain.Board) {
	s.replace(ctx, board)
}

// Board returns a copy of the current board.
func (s *BoardStore) Board() (domain.Board, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil {
		return domain.Board{}, false
	}
	return s.board.Clone(), true
}

// BoardID returns the id of the loaded board.
func (s *BoardStore) BoardID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil {
		return "", false
	}
	return s.board.ID, true
}

// Colors returns a copy of the color map.
func (s *BoardStore) Colors() ColorMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.colorMap.Clone()
}

// ColorFor returns the color assigned to columnID, or "".
func (s *BoardStore) ColorFor(columnID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.colorMap[columnID]
}

// replace installs board and returns the state version it produced.
func (s *BoardStore) replace(ctx context.Context, board domain.Board) uint64 {
	board = board.Clone()
	s.mu.Lock()
	colors, _ := AssignColors(s.colorMap, board.Columns)
	s.board = &board
	s.colorMap = colors
	s.version++
	version := s.version
	s.mu.Unlock()

	s.persistColors(ctx, board.ID, colors)
	return version
}

// restoreIf reinstalls prev when nothing replaced the state since version.
func (s *BoardStore) restoreIf(ctx context.Context, version uint64, prev domain.Board) bool {
	s.mu.Lock()
	if s.version != version {
		s.mu.Unlock()
		return false
	}
	prev = prev.Clone()
	s.board = &prev
	s.version++
	colors := s.colorMap.Clone()
	s.mu.Unlock()

	s.persistColors(ctx, prev.ID, colors)
	return true
}

// persistColors writes the map back; failures reach the user but leave the
// in-memory state alone.
func (s *BoardStore) persistColors(ctx context.Context, boardID string, colors ColorMap) {
	if err := s.colors.Save(ctx, boardID, colors); err != nil {
		s.notifier.Notify(s.format(err))
	}
}
