package app

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfAndSentinels(t *testing.T) {
	cases := []struct {
		err      error
		kind     ErrorKind
		sentinel error
	}{
		{&APIError{Kind: KindNetwork, Err: errBoom}, KindNetwork, ErrNetwork},
		{fmt.Errorf("wrap: %w", &APIError{Kind: KindNotFound, Status: 404}), KindNotFound, ErrNotFound},
		{&APIError{Kind: KindUnauthorized, Status: 401}, KindUnauthorized, ErrUnauthorized},
		{ErrNotFound, KindNotFound, ErrNotFound},
		{errBoom, KindUnknown, nil},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.kind {
			t.Fatalf("KindOf(%v) = %s, want %s", tc.err, got, tc.kind)
		}
		if tc.sentinel != nil && !errors.Is(tc.err, tc.sentinel) {
			t.Fatalf("errors.Is(%v, %v) = false", tc.err, tc.sentinel)
		}
	}
	if errors.Is(&APIError{Kind: KindNetwork}, ErrNotFound) {
		t.Fatal("network error matched not found")
	}
}

func TestMessagePrecedence(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&APIError{Kind: KindUnknown, Message: "title required", Err: errBoom}, "title required"},
		{fmt.Errorf("ctx: %w", &APIError{Kind: KindNetwork, Err: errors.New("timeout")}), "timeout"},
		{&APIError{Kind: KindNotFound}, "not_found"},
		{errBoom, "boom"},
	}
	for _, tc := range cases {
		if got := Message(tc.err); got != tc.want {
			t.Fatalf("Message(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestNotifiersFanOut(t *testing.T) {
	a, b := &recordingNotifier{}, &recordingNotifier{}
	var fn []string
	Notifiers{a, nil, b, NotifierFunc(func(m string) { fn = append(fn, m) })}.Notify("hi")
	if a.count() != 1 || b.count() != 1 || len(fn) != 1 {
		t.Fatalf("unexpected fanout %d/%d/%d", a.count(), b.count(), len(fn))
	}
}
