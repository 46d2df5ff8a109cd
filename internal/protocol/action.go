package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ActionKind string

const (
	ActionMove         ActionKind = "move"
	ActionInteract     ActionKind = "interact"
	ActionFreeze       ActionKind = "freeze"
	ActionAssist       ActionKind = "assist"
	ActionRoll         ActionKind = "roll"
	ActionUnrecognized ActionKind = "unrecognized"
)

// Action is the tagged request payload of an event. On the wire it is either
// a bare tag string ("move") or a structured tag ({"type":"roll","value":17}).
// Unknown tags decode to ActionUnrecognized and resolve as a no-op.
type Action struct {
	Kind  ActionKind
	Value int    // roll value in [1,20], ActionRoll only
	Raw   string // original tag for ActionUnrecognized
}

// IsZero reports whether the event carried no action at all.
func (a Action) IsZero() bool { return a.Kind == "" }

func (a *Action) UnmarshalJSON(b []byte) error {
	var tag string
	if err := json.Unmarshal(b, &tag); err == nil {
		*a = fromTag(tag, 1)
		return nil
	}

	var obj struct {
		Type  string `json:"type"`
		Value *int   `json:"value"`
	}
	if err := json.Unmarshal(b, &obj); err == nil {
		value := 1
		if obj.Value != nil {
			value = *obj.Value
		}
		*a = fromTag(obj.Type, value)
		return nil
	}

	// Anything else (number, array, ...) is an unrecognized action, not a
	// protocol error; the resolver answers with result "unknown".
	*a = Action{Kind: ActionUnrecognized, Raw: strings.TrimSpace(string(b))}
	return nil
}

func fromTag(tag string, value int) Action {
	switch ActionKind(tag) {
	case ActionMove, ActionInteract, ActionFreeze, ActionAssist:
		return Action{Kind: ActionKind(tag)}
	case ActionRoll:
		if value < 1 {
			value = 1
		}
		if value > 20 {
			value = 20
		}
		return Action{Kind: ActionRoll, Value: value}
	case "":
		return Action{}
	default:
		return Action{Kind: ActionUnrecognized, Raw: tag}
	}
}

func (a Action) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case ActionRoll:
		return json.Marshal(struct {
			Type  string `json:"type"`
			Value int    `json:"value"`
		}{Type: "roll", Value: a.Value})
	case ActionUnrecognized:
		return json.Marshal(a.Raw)
	default:
		return json.Marshal(string(a.Kind))
	}
}

func (a Action) String() string {
	if a.Kind == ActionRoll {
		return fmt.Sprintf("roll(%d)", a.Value)
	}
	if a.Kind == ActionUnrecognized {
		return a.Raw
	}
	return string(a.Kind)
}
