package gesture

import (
	"errors"
	"testing"
)

func TestLookup_AllKnownGestures(t *testing.T) {
	cases := []struct {
		raw  string
		want Command
	}{
		{"thumb_up", CommandToggleRight},
		{"right", CommandToggleRight},
		{"thumb_down", CommandToggleLeft},
		{"left", CommandToggleLeft},
		{"pointing_up", CommandJumpOnce},
		{"jump", CommandJumpOnce},
		{"open_palm", CommandStop},
		{"palm", CommandStop},
		{"closed_fist", CommandStop},
		{"stop", CommandStop},
	}
	for _, tc := range cases {
		got, err := Lookup(tc.raw)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Errorf("Lookup(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestLookup_FoldsCaseAndSpaces(t *testing.T) {
	for _, raw := range []string{"Thumb Up", "THUMB_UP", "  thumb up  ", "Pointing Up"} {
		if _, err := Lookup(raw); err != nil {
			t.Errorf("Lookup(%q): %v", raw, err)
		}
	}
}

func TestLookup_UnknownRejected(t *testing.T) {
	for _, raw := range []string{"", "wave", "victory", "thumbup"} {
		cmd, err := Lookup(raw)
		if !errors.Is(err, ErrUnknownGesture) {
			t.Errorf("Lookup(%q) = %q, %v; want ErrUnknownGesture", raw, cmd, err)
		}
	}
}
