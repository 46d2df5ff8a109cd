// Package gesture maps physical hand gestures (MediaPipe category names or
// their short aliases) to the four canonical platformer commands. Pure
// adapter logic; the resolver never sees gestures.
package gesture

import (
	"errors"
	"strings"
)

type Command string

const (
	CommandToggleRight Command = "toggle_right"
	CommandToggleLeft  Command = "toggle_left"
	CommandJumpOnce    Command = "jump_once"
	CommandStop        Command = "stop"
)

var ErrUnknownGesture = errors.New("unknown gesture")

var commands = map[string]Command{
	"thumb_up":    CommandToggleRight,
	"right":       CommandToggleRight,
	"thumb_down":  CommandToggleLeft,
	"left":        CommandToggleLeft,
	"pointing_up": CommandJumpOnce,
	"jump":        CommandJumpOnce,
	"open_palm":   CommandStop,
	"palm":        CommandStop,
	"closed_fist": CommandStop,
	"stop":        CommandStop,
}

// Normalize folds case and whitespace so "Thumb Up" and "thumb_up" hit the
// same table key.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.ReplaceAll(s, " ", "_")
}

// Lookup resolves a gesture string to its command; unknown gestures are
// rejected with no state change anywhere.
func Lookup(raw string) (Command, error) {
	cmd, ok := commands[Normalize(raw)]
	if !ok {
		return "", ErrUnknownGesture
	}
	return cmd, nil
}
