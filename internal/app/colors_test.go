package app

import (
	"context"
	"testing"

	"github.com/hylla/tavla/internal/domain"
)

func TestAssignColorsKeepsKnownColumns(t *testing.T) {
	existing := ColorMap{"B": "#123456"}
	columns := []domain.Column{{ID: "A"}, {ID: "B"}, {ID: "C"}}

	got, changed := AssignColors(existing, columns)
	if !changed {
		t.Fatal("expected change")
	}
	if got["B"] != "#123456" || got["A"] != PaletteColor(0) || got["C"] != PaletteColor(2) {
		t.Fatalf("unexpected colors %#v", got)
	}
	if len(existing) != 1 {
		t.Fatal("AssignColors mutated its input")
	}
	if _, changed := AssignColors(got, columns); changed {
		t.Fatal("expected no change for a complete map")
	}
}

func TestPaletteColorWraps(t *testing.T) {
	if PaletteColor(0) != PaletteColor(len(palette)) {
		t.Fatal("expected palette to wrap")
	}
	if PaletteColor(-1) == "" {
		t.Fatal("expected color for negative index")
	}
}

func TestColorStoreRoundTripAndCorruptValue(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store := NewColorStore(kv, 0)

	if _, ok, err := store.Load(ctx, "b1"); ok || err != nil {
		t.Fatalf("Load() on empty = %v, %v", ok, err)
	}
	if err := store.Save(ctx, "b1", ColorMap{"A": "#fff"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, ok, err := store.Load(ctx, "b1")
	if err != nil || !ok || got["A"] != "#fff" {
		t.Fatalf("Load() = %#v, %v, %v", got, ok, err)
	}

	_ = kv.Set(ctx, ColorKey("b2"), "{not json")
	if _, _, err := store.Load(ctx, "b2"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestCorruptColorMapIsRewrittenOnLoad(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	_ = kv.Set(ctx, ColorKey("b1"), "garbage")
	view := NewBoardView(newFakeAPI(sampleBoard()), kv, nil, ViewConfig{})

	if err := view.Load(ctx, "b1"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if view.ColorFor("A") != PaletteColor(0) {
		t.Fatalf("unexpected color %q", view.ColorFor("A"))
	}
	if _, ok, err := NewColorStore(kv, 0).Load(ctx, "b1"); !ok || err != nil {
		t.Fatalf("expected rewritten map, got %v, %v", ok, err)
	}
}

func TestColorStorePrunesOldestMaps(t *testing.T) {
	ctx := context.Background()
	kv := pruningKV{newFakeKV()}
	_ = kv.Set(ctx, "user", "{}")
	store := NewColorStore(kv, 2)

	for _, id := range []string{"b1", "b2", "b3"} {
		if err := store.Save(ctx, id, ColorMap{"A": "#000"}); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}
	if _, ok, _ := store.Load(ctx, "b1"); ok {
		t.Fatal("expected oldest map pruned")
	}
	for _, id := range []string{"b2", "b3"} {
		if _, ok, _ := store.Load(ctx, id); !ok {
			t.Fatalf("expected map for %s", id)
		}
	}
	if _, ok, _ := kv.Get(ctx, "user"); !ok {
		t.Fatal("pruning touched a non-color key")
	}
}

func TestNilColorStoreIsInert(t *testing.T) {
	var store *ColorStore
	if err := store.Save(context.Background(), "b1", nil); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, ok, err := store.Load(context.Background(), "b1"); ok || err != nil {
		t.Fatalf("Load() = %v, %v", ok, err)
	}
}
