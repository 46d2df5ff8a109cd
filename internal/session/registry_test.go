package session

import (
	"errors"
	"sync"
	"testing"
)

type fakeObserver struct {
	id   string
	mu   sync.Mutex
	got  [][]byte
	fail bool
}

func (f *fakeObserver) ID() string { return f.id }

func (f *fakeObserver) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("queue full")
	}
	f.got = append(f.got, payload)
	return nil
}

func (f *fakeObserver) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

func TestRegistry_BroadcastExcludesSender(t *testing.T) {
	r := NewRegistry()
	a := &fakeObserver{id: "a"}
	b := &fakeObserver{id: "b"}
	c := &fakeObserver{id: "c"}
	r.Add(a)
	r.Add(b)
	r.Add(c)

	r.Broadcast(1, []byte(`{"broadcast":{}}`), "b")

	if a.received() != 1 || c.received() != 1 {
		t.Errorf("a=%d c=%d deliveries, want 1 each", a.received(), c.received())
	}
	if b.received() != 0 {
		t.Errorf("excluded observer received %d payloads", b.received())
	}
}

func TestRegistry_FailedSendRemovesObserver(t *testing.T) {
	r := NewRegistry()
	good := &fakeObserver{id: "good"}
	bad := &fakeObserver{id: "bad", fail: true}
	r.Add(good)
	r.Add(bad)

	r.Broadcast(1, []byte("x"), "")

	if good.received() != 1 {
		t.Errorf("healthy observer got %d payloads, want 1", good.received())
	}
	if r.Len() != 1 {
		t.Errorf("registry size = %d after failed send, want 1", r.Len())
	}

	// The failed observer is gone; the next broadcast only hits the healthy one.
	r.Broadcast(2, []byte("y"), "")
	if good.received() != 2 {
		t.Errorf("healthy observer got %d payloads, want 2", good.received())
	}
}

func TestRegistry_StaleSequenceDropped(t *testing.T) {
	r := NewRegistry()
	o := &fakeObserver{id: "o"}
	r.Add(o)

	r.Broadcast(5, []byte("new"), "")
	r.Broadcast(3, []byte("old"), "")
	r.Broadcast(5, []byte("same"), "")

	if got := o.received(); got != 2 {
		t.Fatalf("deliveries = %d, want 2 (stale seq 3 dropped)", got)
	}
}

func TestRegistry_RemoveUnknownIsNoOp(t *testing.T) {
	r := NewRegistry()
	r.Remove("ghost")
	if r.Len() != 0 {
		t.Fatalf("len = %d", r.Len())
	}
}
