package protocol

// EventMsg (client -> server): one action submitted by a role.
type EventMsg struct {
	Player string `json:"player"`
	Action Action `json:"action"`
}

// Outcome echoes the resolved event plus its result tag.
type Outcome struct {
	Player string `json:"player"`
	Action Action `json:"action"`
	Result string `json:"result"`
}

// PlayerState is the externally visible record of one participant.
type PlayerState struct {
	Name   string `json:"name"`
	Health int    `json:"health"`
	Energy int    `json:"energy"`
	Trust  int    `json:"trust"`
}

// AdversaryState is the externally visible record of the hostile AI.
type AdversaryState struct {
	Corruption   int `json:"corruption"`
	Interference int `json:"interference"`
}

// Snapshot is the complete world state at a point in time. Log holds at
// most the 40 most recent trace lines.
type Snapshot struct {
	Level   int            `json:"level"`
	Turn    int            `json:"turn"`
	Running bool           `json:"running"`
	PlayerA PlayerState    `json:"playerA"`
	PlayerB PlayerState    `json:"playerB"`
	AI      AdversaryState `json:"ai"`
	Log     []string       `json:"log"`
}

// ResultMsg (server -> sender): response to one event.
type ResultMsg struct {
	Outcome Outcome  `json:"outcome"`
	State   Snapshot `json:"state"`
}

// BroadcastMsg (server -> everyone else): state fan-out after a mutation.
type BroadcastMsg struct {
	Broadcast Snapshot `json:"broadcast"`
}

// StatusMsg is the HTTP response for lifecycle endpoints (/start, /reset).
type StatusMsg struct {
	Status string   `json:"status"`
	State  Snapshot `json:"state"`
}

// ErrorMsg is echoed to the offending sender only; the connection stays open.
type ErrorMsg struct {
	Error string `json:"error"`
}

// GestureRequest/GestureResponse map a physical gesture to a canonical
// platformer command.
type GestureRequest struct {
	Gesture string `json:"gesture"`
}

type GestureResponse struct {
	Command string `json:"command"`
}
