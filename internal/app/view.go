package app

// ViewConfig holds configuration for a board view.
type ViewConfig struct {
	RollbackReorderOnFailure bool
	MaxColorMaps             int
	UserID                   string
	FormatError              MessageFormatter
}

// BoardView wires the state store, reconciler and mutation handlers that one
// open board needs. Every dependency is passed in explicitly.
type BoardView struct {
	*BoardStore
	*Reconciler
	*Mutations
}

// NewBoardView constructs the collaborators for one board view.
func NewBoardView(api BoardAPI, kv KVStore, notifier Notifier, cfg ViewConfig) *BoardView {
	if notifier == nil {
		notifier = Notifiers(nil)
	}
	format := cfg.FormatError
	if format == nil {
		format = Message
	}
	store := NewBoardStore(api, NewColorStore(kv, cfg.MaxColorMaps), notifier, format)
	return &BoardView{
		BoardStore: store,
		Reconciler: NewReconciler(store, api, notifier, format, cfg.RollbackReorderOnFailure),
		Mutations:  NewMutations(store, api, notifier, format, cfg.UserID),
	}
}
