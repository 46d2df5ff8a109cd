package game

import "github.com/SoulShadow8326/Signesture/internal/protocol"

// logCap bounds the trailing event log; the oldest line is evicted first.
const logCap = 40

// World is the single shared aggregate: both player records, the adversary,
// level/turn counters and the trailing log. It owns every mutation rule and
// is not safe for concurrent use; callers must serialize access (see
// session.Processor).
type World struct {
	dice Roller

	playerA protocol.PlayerState
	playerB protocol.PlayerState
	ai      protocol.AdversaryState

	level   int
	turn    int
	running bool
	log     []string
}

// New creates a fresh world at level 0 / turn 0, not running.
func New(seed int64) *World {
	return NewWithRoller(NewDice(seed))
}

// NewWithRoller is New with an injected dice source.
func NewWithRoller(r Roller) *World {
	return &World{
		dice:    r,
		playerA: protocol.PlayerState{Name: "Trapped", Health: 100, Energy: 50, Trust: 50},
		playerB: protocol.PlayerState{Name: "Operator", Health: 100, Energy: 60, Trust: 50},
		log:     make([]string, 0, logCap),
	}
}

// Start enters the campaign: level one plus running=true.
func (w *World) Start() {
	w.LevelOne()
	w.running = true
	w.appendLog("Campaign started.")
}

func (w *World) Turn() int     { return w.turn }
func (w *World) Level() int    { return w.level }
func (w *World) Running() bool { return w.running }

// Snapshot copies the externally visible state. The log slice is owned by
// the caller.
func (w *World) Snapshot() protocol.Snapshot {
	entries := make([]string, len(w.log))
	copy(entries, w.log)
	return protocol.Snapshot{
		Level:   w.level,
		Turn:    w.turn,
		Running: w.running,
		PlayerA: w.playerA,
		PlayerB: w.playerB,
		AI:      w.ai,
		Log:     entries,
	}
}

func (w *World) appendLog(line string) {
	if len(w.log) == logCap {
		copy(w.log, w.log[1:])
		w.log[logCap-1] = line
		return
	}
	w.log = append(w.log, line)
}

// escalate raises corruption and rederives interference as 80% of it,
// each capped at 100.
func (w *World) escalate(amount int) {
	w.ai.Corruption = clampStat(w.ai.Corruption + amount)
	w.ai.Interference = clampStat(w.ai.Corruption * 8 / 10)
}

func clampStat(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
