package session

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/SoulShadow8326/Signesture/internal/protocol"
	"github.com/SoulShadow8326/Signesture/internal/sim/game"
)

// ErrMalformedEvent is returned when an event is missing its role or its
// action; nothing is mutated in that case.
var ErrMalformedEvent = errors.New(protocol.ErrTextMissingFields)

// TurnLogger receives resolved turns and resets for off-thread persistence.
// Implementations must not block the caller (see persistence/turnlog and
// persistence/indexdb). May be nil on the processor.
type TurnLogger interface {
	WriteTurn(entry TurnLogEntry) error
	WriteReset(entry ResetEntry) error
}

type TurnLogEntry struct {
	Seq          uint64          `json:"seq"`
	Turn         int             `json:"turn"`
	Player       string          `json:"player"`
	Action       protocol.Action `json:"action"`
	Result       string          `json:"result"`
	Level        int             `json:"level"`
	Corruption   int             `json:"corruption"`
	Interference int             `json:"interference"`
	RecordedAt   time.Time       `json:"recorded_at"`
}

type ResetEntry struct {
	Seq        uint64    `json:"seq"`
	Seed       int64     `json:"seed"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Metrics is a point-in-time read of the world for the /metrics endpoint.
type Metrics struct {
	Turn         int
	Level        int
	Running      bool
	Corruption   int
	Interference int
	TrustA       int
	TrustB       int
	Seq          uint64
}

// Processor serializes every mutation of the single shared world. The mutex
// guards the whole read-modify-write of one event (resolution, pressure
// tick, snapshot), so concurrent submitters observe a strict serial order
// of turns. Broadcast happens outside the guard on the captured snapshot;
// the sequence number keeps fan-out ordered (see Registry.Broadcast).
type Processor struct {
	mu    sync.Mutex
	world *game.World
	seq   uint64

	turnLogger TurnLogger
	log        *log.Logger
}

func NewProcessor(seed int64, logger *log.Logger) *Processor {
	return &Processor{
		world: game.New(seed),
		log:   logger,
	}
}

// NewProcessorWithWorld is NewProcessor with a pre-built world, for tests
// that inject a deterministic roller.
func NewProcessorWithWorld(w *game.World, logger *log.Logger) *Processor {
	return &Processor{world: w, log: logger}
}

func (p *Processor) SetTurnLogger(l TurnLogger) { p.turnLogger = l }

// Handle resolves one event and returns the outcome plus the resulting
// snapshot and its broadcast sequence. Malformed events fail before the
// world is touched.
func (p *Processor) Handle(ev protocol.EventMsg) (protocol.ResultMsg, uint64, error) {
	if ev.Player == "" || ev.Action.IsZero() {
		return protocol.ResultMsg{}, 0, ErrMalformedEvent
	}

	p.mu.Lock()
	outcome := p.world.Resolve(ev.Player, ev.Action)
	p.world.ResolveTurn()
	snap := p.world.Snapshot()
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	p.recordTurn(TurnLogEntry{
		Seq:          seq,
		Turn:         snap.Turn,
		Player:       ev.Player,
		Action:       ev.Action,
		Result:       outcome.Result,
		Level:        snap.Level,
		Corruption:   snap.AI.Corruption,
		Interference: snap.AI.Interference,
		RecordedAt:   time.Now().UTC(),
	})

	return protocol.ResultMsg{Outcome: outcome, State: snap}, seq, nil
}

// Start transitions the world to level one and running=true.
func (p *Processor) Start() (protocol.Snapshot, uint64) {
	p.mu.Lock()
	p.world.Start()
	snap := p.world.Snapshot()
	p.seq++
	seq := p.seq
	p.mu.Unlock()
	return snap, seq
}

// Reset discards the world and builds a fresh one from seed. It waits for
// the guard like any other mutation, so an in-flight resolution is never
// interrupted.
func (p *Processor) Reset(seed int64) (protocol.Snapshot, uint64) {
	p.mu.Lock()
	p.world = game.New(seed)
	snap := p.world.Snapshot()
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	p.recordReset(ResetEntry{Seq: seq, Seed: seed, RecordedAt: time.Now().UTC()})
	return snap, seq
}

// State returns a consistent snapshot without mutating anything.
func (p *Processor) State() protocol.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.world.Snapshot()
}

func (p *Processor) Metrics() Metrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap := p.world.Snapshot()
	return Metrics{
		Turn:         snap.Turn,
		Level:        snap.Level,
		Running:      snap.Running,
		Corruption:   snap.AI.Corruption,
		Interference: snap.AI.Interference,
		TrustA:       snap.PlayerA.Trust,
		TrustB:       snap.PlayerB.Trust,
		Seq:          p.seq,
	}
}

func (p *Processor) recordTurn(entry TurnLogEntry) {
	if p.turnLogger == nil {
		return
	}
	if err := p.turnLogger.WriteTurn(entry); err != nil && p.log != nil {
		p.log.Printf("turn log: %v", err)
	}
}

func (p *Processor) recordReset(entry ResetEntry) {
	if p.turnLogger == nil {
		return
	}
	if err := p.turnLogger.WriteReset(entry); err != nil && p.log != nil {
		p.log.Printf("reset log: %v", err)
	}
}
