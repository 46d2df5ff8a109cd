package session

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/SoulShadow8326/Signesture/internal/protocol"
	"github.com/SoulShadow8326/Signesture/internal/sim/game"
)

func TestProcessor_MalformedEventRejected(t *testing.T) {
	p := NewProcessor(0, nil)
	before := p.State()

	cases := []protocol.EventMsg{
		{Player: "", Action: protocol.Action{Kind: protocol.ActionMove}},
		{Player: "A"},
	}
	for _, ev := range cases {
		_, _, err := p.Handle(ev)
		if !errors.Is(err, ErrMalformedEvent) {
			t.Fatalf("%+v: err = %v, want ErrMalformedEvent", ev, err)
		}
	}
	if !reflect.DeepEqual(p.State(), before) {
		t.Fatal("malformed events mutated the world")
	}
	if p.Metrics().Seq != 0 {
		t.Fatalf("seq advanced to %d on rejected events", p.Metrics().Seq)
	}
}

func TestProcessor_HandleAdvancesTurnAndSeq(t *testing.T) {
	p := NewProcessor(0, nil)
	p.Start()

	res, seq, err := p.Handle(protocol.EventMsg{
		Player: "A",
		Action: protocol.Action{Kind: protocol.ActionMove},
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.State.Turn != 1 {
		t.Errorf("turn = %d, want 1", res.State.Turn)
	}
	if seq != 2 { // start consumed seq 1
		t.Errorf("seq = %d, want 2", seq)
	}
	if res.Outcome.Player != "A" || res.Outcome.Result == "" {
		t.Errorf("outcome = %+v", res.Outcome)
	}
}

func TestProcessor_ConcurrentEventsSerialize(t *testing.T) {
	p := NewProcessor(0, nil)
	p.Start()

	const workers = 50
	const perWorker = 4

	var wg sync.WaitGroup
	seqs := make(chan uint64, workers*perWorker)
	for i := 0; i < workers; i++ {
		role := "A"
		if i%2 == 1 {
			role = "B"
		}
		wg.Add(1)
		go func(role string) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_, seq, err := p.Handle(protocol.EventMsg{
					Player: role,
					Action: protocol.Action{Kind: protocol.ActionAssist},
				})
				if err != nil {
					t.Errorf("handle: %v", err)
					return
				}
				seqs <- seq
			}
		}(role)
	}
	wg.Wait()
	close(seqs)

	if turn := p.State().Turn; turn != workers*perWorker {
		t.Fatalf("turn = %d, want %d", turn, workers*perWorker)
	}

	seen := map[uint64]bool{}
	for s := range seqs {
		if seen[s] {
			t.Fatalf("sequence %d handed out twice", s)
		}
		seen[s] = true
	}
	if len(seen) != workers*perWorker {
		t.Fatalf("got %d distinct sequences, want %d", len(seen), workers*perWorker)
	}
}

func TestProcessor_ResetRestoresFreshWorld(t *testing.T) {
	p := NewProcessor(0, nil)
	p.Start()
	p.Handle(protocol.EventMsg{Player: "A", Action: protocol.Action{Kind: protocol.ActionMove}})
	p.Handle(protocol.EventMsg{Player: "B", Action: protocol.Action{Kind: protocol.ActionRoll, Value: 7}})

	snap, seq := p.Reset(0)
	if !reflect.DeepEqual(snap, game.New(0).Snapshot()) {
		t.Fatalf("reset snapshot differs from fresh world:\n%+v", snap)
	}
	if seq == 0 {
		t.Fatal("reset must advance the broadcast sequence")
	}

	// A fresh world replays identically to a brand new processor.
	res1, _, _ := p.Handle(protocol.EventMsg{Player: "A", Action: protocol.Action{Kind: protocol.ActionMove}})
	res2, _, _ := NewProcessor(0, nil).Handle(protocol.EventMsg{Player: "A", Action: protocol.Action{Kind: protocol.ActionMove}})
	if res1.Outcome.Result != res2.Outcome.Result {
		t.Fatalf("post-reset replay diverged: %q vs %q", res1.Outcome.Result, res2.Outcome.Result)
	}
}

type captureLogger struct {
	mu     sync.Mutex
	turns  []TurnLogEntry
	resets []ResetEntry
}

func (c *captureLogger) WriteTurn(e TurnLogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, e)
	return nil
}

func (c *captureLogger) WriteReset(e ResetEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resets = append(c.resets, e)
	return nil
}

func TestProcessor_RecordsTurnsAndResets(t *testing.T) {
	rec := &captureLogger{}
	p := NewProcessor(0, nil)
	p.SetTurnLogger(rec)
	p.Start()

	p.Handle(protocol.EventMsg{Player: "A", Action: protocol.Action{Kind: protocol.ActionMove}})
	p.Reset(42)

	if len(rec.turns) != 1 {
		t.Fatalf("recorded %d turns, want 1", len(rec.turns))
	}
	e := rec.turns[0]
	if e.Player != "A" || e.Turn != 1 || e.Seq == 0 || e.RecordedAt.IsZero() {
		t.Errorf("turn entry = %+v", e)
	}
	if len(rec.resets) != 1 || rec.resets[0].Seed != 42 {
		t.Fatalf("resets = %+v", rec.resets)
	}
}
