package tui

import (
	"testing"

	"github.com/hylla/tavla/internal/i18n"
)

// TestKeyMapHelpGroups verifies every grouped binding carries a help label.
func TestKeyMapHelpGroups(t *testing.T) {
	keys := newKeyMap(nil)
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("expected short help bindings")
	}
	for _, group := range keys.FullHelp() {
		for _, binding := range group {
			if binding.Help().Key == "" || binding.Help().Desc == "" {
				t.Fatalf("binding %v has no help", binding.Keys())
			}
		}
	}
	drag := dragHelp{keys: keys}
	if len(drag.FullHelp()[0]) != 3 {
		t.Fatalf("unexpected drag help %#v", drag.FullHelp())
	}
}

// TestKeyMapLocalizedLabels verifies help labels follow the catalog locale.
func TestKeyMapLocalizedLabels(t *testing.T) {
	ru := newKeyMap(i18n.New("ru"))
	if got := ru.grab.Help().Desc; got != "взять колонку" {
		t.Fatalf("unexpected russian label %q", got)
	}
	en := newKeyMap(i18n.New("en"))
	if got := en.grab.Help().Desc; got != "grab column" {
		t.Fatalf("unexpected english label %q", got)
	}
}
