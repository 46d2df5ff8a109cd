// Package indexdb keeps a queryable read-model of resolved turns in SQLite.
// Writes go through a single writer goroutine so the event processor never
// waits on the database; entries may be dropped under backlog (the JSONL
// journal remains the source of truth). Turn resolution never reads from
// here, so the index cannot affect determinism.
package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/SoulShadow8326/Signesture/internal/session"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqTurn reqKind = iota + 1
	reqReset
)

type req struct {
	kind  reqKind
	turn  session.TurnLogEntry
	reset session.ResetEntry
}

// TurnRow is one resolved turn as served by the /history endpoint.
type TurnRow struct {
	Seq          uint64          `json:"seq"`
	Turn         int             `json:"turn"`
	Player       string          `json:"player"`
	Action       json.RawMessage `json:"action"`
	Result       string          `json:"result"`
	Level        int             `json:"level"`
	Corruption   int             `json:"corruption"`
	Interference int             `json:"interference"`
	RecordedAt   string          `json:"recorded_at"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS turns (
			seq INTEGER PRIMARY KEY,
			turn INTEGER NOT NULL,
			player TEXT NOT NULL,
			action_json TEXT NOT NULL,
			result TEXT NOT NULL,
			level INTEGER NOT NULL,
			corruption INTEGER NOT NULL,
			interference INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_turns_player_seq ON turns(player, seq);`,
		`CREATE TABLE IF NOT EXISTS resets (
			seq INTEGER PRIMARY KEY,
			seed INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	if _, err := db.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// WriteTurn implements session.TurnLogger.
func (s *SQLiteIndex) WriteTurn(entry session.TurnLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqTurn, turn: entry}:
	default:
		// Drop if the indexer falls behind; the JSONL journal has the row.
	}
	return nil
}

// WriteReset implements session.TurnLogger.
func (s *SQLiteIndex) WriteReset(entry session.ResetEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqReset, reset: entry}:
	default:
	}
	return nil
}

// RecentTurns returns up to limit resolved turns, newest first.
func (s *SQLiteIndex) RecentTurns(ctx context.Context, limit int) ([]TurnRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, turn, player, action_json, result, level, corruption, interference, recorded_at
		 FROM turns ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TurnRow
	for rows.Next() {
		var r TurnRow
		var action string
		if err := rows.Scan(&r.Seq, &r.Turn, &r.Player, &action, &r.Result, &r.Level, &r.Corruption, &r.Interference, &r.RecordedAt); err != nil {
			return nil, err
		}
		r.Action = json.RawMessage(action)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	insertTurn, _ := s.db.Prepare(`INSERT OR REPLACE INTO turns(seq,turn,player,action_json,result,level,corruption,interference,recorded_at) VALUES(?,?,?,?,?,?,?,?,?)`)
	insertReset, _ := s.db.Prepare(`INSERT OR REPLACE INTO resets(seq,seed,recorded_at) VALUES(?,?,?)`)
	defer func() {
		if insertTurn != nil {
			_ = insertTurn.Close()
		}
		if insertReset != nil {
			_ = insertReset.Close()
		}
	}()

	for r := range s.ch {
		switch r.kind {
		case reqTurn:
			if insertTurn == nil {
				continue
			}
			actJSON, _ := json.Marshal(r.turn.Action)
			_, _ = insertTurn.Exec(
				int64(r.turn.Seq),
				r.turn.Turn,
				r.turn.Player,
				string(actJSON),
				r.turn.Result,
				r.turn.Level,
				r.turn.Corruption,
				r.turn.Interference,
				r.turn.RecordedAt.Format(time.RFC3339Nano),
			)
		case reqReset:
			if insertReset == nil {
				continue
			}
			_, _ = insertReset.Exec(
				int64(r.reset.Seq),
				r.reset.Seed,
				r.reset.RecordedAt.Format(time.RFC3339Nano),
			)
		}
	}
}
