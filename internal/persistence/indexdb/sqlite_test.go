package indexdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/SoulShadow8326/Signesture/internal/protocol"
	"github.com/SoulShadow8326/Signesture/internal/session"
)

func openTestIndex(t *testing.T) *SQLiteIndex {
	t.Helper()
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

// waitForRows polls until the async writer has flushed at least n rows.
func waitForRows(t *testing.T, idx *SQLiteIndex, n int) []TurnRow {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		rows, err := idx.RecentTurns(context.Background(), 100)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(rows) >= n {
			return rows
		}
		if time.Now().After(deadline) {
			t.Fatalf("only %d rows indexed, want %d", len(rows), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSQLiteIndex_WritesAndQueriesTurns(t *testing.T) {
	idx := openTestIndex(t)

	for i := 1; i <= 3; i++ {
		err := idx.WriteTurn(session.TurnLogEntry{
			Seq:        uint64(i),
			Turn:       i,
			Player:     "A",
			Action:     protocol.Action{Kind: protocol.ActionMove},
			Result:     protocol.ResultMoved,
			Level:      1,
			RecordedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("write turn %d: %v", i, err)
		}
	}

	rows := waitForRows(t, idx, 3)
	if rows[0].Seq != 3 || rows[2].Seq != 1 {
		t.Fatalf("rows not newest first: %+v", rows)
	}
	r := rows[0]
	if r.Player != "A" || r.Result != protocol.ResultMoved || r.Turn != 3 {
		t.Fatalf("row = %+v", r)
	}
	if string(r.Action) != `"move"` {
		t.Fatalf("action json = %s", r.Action)
	}
}

func TestSQLiteIndex_RecentTurnsLimit(t *testing.T) {
	idx := openTestIndex(t)
	for i := 1; i <= 5; i++ {
		_ = idx.WriteTurn(session.TurnLogEntry{
			Seq:        uint64(i),
			Turn:       i,
			Player:     "B",
			Action:     protocol.Action{Kind: protocol.ActionAssist},
			Result:     protocol.ResultAssisted,
			RecordedAt: time.Now().UTC(),
		})
	}
	waitForRows(t, idx, 5)

	rows, err := idx.RecentTurns(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].Seq != 5 || rows[1].Seq != 4 {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestSQLiteIndex_WriteAfterCloseIsNoOp(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := idx.WriteTurn(session.TurnLogEntry{Seq: 1}); err != nil {
		t.Fatalf("write after close: %v", err)
	}
	if err := idx.WriteReset(session.ResetEntry{Seq: 2}); err != nil {
		t.Fatalf("reset after close: %v", err)
	}
}
