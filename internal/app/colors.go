package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/hylla/tavla/internal/domain"
)

// colorKeyPrefix namespaces persisted color maps by board id.
const colorKeyPrefix = "colors:"

// palette is indexed by column position on first sight.
var palette = []string{
	"#e06c75",
	"#61afef",
	"#98c379",
	"#e5c07b",
	"#c678dd",
	"#56b6c2",
	"#d19a66",
	"#f472b6",
	"#a3be8c",
	"#88c0d0",
	"#b48ead",
	"#ebcb8b",
}

// PaletteColor returns the deterministic display color for a position.
func PaletteColor(index int) string {
	if index < 0 {
		index = -index
	}
	return palette[index%len(palette)]
}

// ColorMap maps column ids to display colors.
type ColorMap map[string]string

// Clone copies the map; a nil map clones to an empty one.
func (c ColorMap) Clone() ColorMap {
	out := make(ColorMap, len(c))
	for id, color := range c {
		out[id] = color
	}
	return out
}

// AssignColors returns existing extended with a palette color for every
// column it does not know yet. Known columns keep their color regardless of
// position.
func AssignColors(existing ColorMap, columns []domain.Column) (ColorMap, bool) {
	out := existing.Clone()
	changed := existing == nil
	for idx, column := range columns {
		if _, ok := out[column.ID]; ok {
			continue
		}
		out[column.ID] = PaletteColor(idx)
		changed = true
	}
	return out, changed
}

// ColorStore persists color maps in local key/value storage.
type ColorStore struct {
	kv      KVStore
	maxMaps int
}

// NewColorStore constructs a color store. maxMaps <= 0 keeps every map.
func NewColorStore(kv KVStore, maxMaps int) *ColorStore {
	if maxMaps < 0 {
		maxMaps = 0
	}
	return &ColorStore{kv: kv, maxMaps: maxMaps}
}

// ColorKey returns the storage key for one board.
func ColorKey(boardID string) string {
	return colorKeyPrefix + strings.TrimSpace(boardID)
}

// Load returns the persisted map for boardID, if any.
func (c *ColorStore) Load(ctx context.Context, boardID string) (ColorMap, bool, error) {
	if c == nil || c.kv == nil {
		return nil, false, nil
	}
	raw, ok, err := c.kv.Get(ctx, ColorKey(boardID))
	if err != nil {
		return nil, false, fmt.Errorf("read color map: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, false, nil
	}
	out := ColorMap{}
	if err := sonic.ConfigStd.UnmarshalFromString(raw, &out); err != nil {
		return nil, false, fmt.Errorf("decode color map: %w", err)
	}
	return out, true, nil
}

// Save writes the map for boardID and applies the retention limit.
func (c *ColorStore) Save(ctx context.Context, boardID string, colors ColorMap) error {
	if c == nil || c.kv == nil {
		return nil
	}
	if colors == nil {
		colors = ColorMap{}
	}
	encoded, err := sonic.ConfigStd.MarshalToString(colors)
	if err != nil {
		return fmt.Errorf("encode color map: %w", err)
	}
	if err := c.kv.Set(ctx, ColorKey(boardID), encoded); err != nil {
		return fmt.Errorf("write color map: %w", err)
	}
	if c.maxMaps == 0 {
		return nil
	}
	pruner, ok := c.kv.(KVPruner)
	if !ok {
		return nil
	}
	if _, err := pruner.PruneByPrefix(ctx, colorKeyPrefix, c.maxMaps); err != nil {
		return fmt.Errorf("prune color maps: %w", err)
	}
	return nil
}
