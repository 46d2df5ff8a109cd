package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/SoulShadow8326/Signesture/internal/config"
	"github.com/SoulShadow8326/Signesture/internal/persistence/indexdb"
	"github.com/SoulShadow8326/Signesture/internal/persistence/turnlog"
	"github.com/SoulShadow8326/Signesture/internal/session"
	"github.com/SoulShadow8326/Signesture/internal/transport/web"
	"github.com/SoulShadow8326/Signesture/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", "", "http listen address (overrides config)")
		configPath = flag.String("config", "", "path to server.yaml (optional)")
		seed       = flag.Int64("seed", 0, "world seed")
		dataDir    = flag.String("data", "", "runtime data directory (overrides config)")
		staticDir  = flag.String("static", "", "built frontend directory (overrides config)")
		disableDB  = flag.Bool("disable_db", false, "disable the turn index database")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cfg := config.Defaults()
	if strings.TrimSpace(*configPath) != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			logger.Fatalf("load config: %v", err)
		}
		cfg = c
	}
	cfg.ApplyEnv()
	if strings.TrimSpace(*addr) != "" {
		cfg.Listen = *addr
	}
	if strings.TrimSpace(*dataDir) != "" {
		cfg.DataDir = *dataDir
	}
	if strings.TrimSpace(*staticDir) != "" {
		cfg.StaticDir = *staticDir
	}
	if *disableDB {
		cfg.DisableDB = true
	}
	worldSeed := cfg.Seed
	if *seed != 0 {
		worldSeed = *seed
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}

	var idx *indexdb.SQLiteIndex
	if !cfg.DisableDB {
		var err error
		idx, err = indexdb.OpenSQLite(filepath.Join(cfg.DataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
	}

	journal := turnlog.NewLogger(cfg.DataDir)
	defer journal.Close()

	proc := session.NewProcessor(worldSeed, logger)
	proc.SetTurnLogger(multiTurnLogger{a: journal, b: idx})
	reg := session.NewRegistry()

	ctx, cancel := signalContext()
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		m := proc.Metrics()

		running := 0
		if m.Running {
			running = 1
		}

		fmt.Fprintf(rw, "# HELP signesture_world_turn Resolved turn counter.\n")
		fmt.Fprintf(rw, "# TYPE signesture_world_turn counter\n")
		fmt.Fprintf(rw, "signesture_world_turn %d\n", m.Turn)

		fmt.Fprintf(rw, "# HELP signesture_world_level Current narrative level.\n")
		fmt.Fprintf(rw, "# TYPE signesture_world_level gauge\n")
		fmt.Fprintf(rw, "signesture_world_level %d\n", m.Level)

		fmt.Fprintf(rw, "# HELP signesture_world_running Whether a campaign is running.\n")
		fmt.Fprintf(rw, "# TYPE signesture_world_running gauge\n")
		fmt.Fprintf(rw, "signesture_world_running %d\n", running)

		fmt.Fprintf(rw, "# HELP signesture_adversary_stat Adversary pressure stats (0..100).\n")
		fmt.Fprintf(rw, "# TYPE signesture_adversary_stat gauge\n")
		fmt.Fprintf(rw, "signesture_adversary_stat{stat=%q} %d\n", "corruption", m.Corruption)
		fmt.Fprintf(rw, "signesture_adversary_stat{stat=%q} %d\n", "interference", m.Interference)

		fmt.Fprintf(rw, "# HELP signesture_player_trust Per-player trust (0..100).\n")
		fmt.Fprintf(rw, "# TYPE signesture_player_trust gauge\n")
		fmt.Fprintf(rw, "signesture_player_trust{player=%q} %d\n", "A", m.TrustA)
		fmt.Fprintf(rw, "signesture_player_trust{player=%q} %d\n", "B", m.TrustB)

		fmt.Fprintf(rw, "# HELP signesture_observers Connected observer count.\n")
		fmt.Fprintf(rw, "# TYPE signesture_observers gauge\n")
		fmt.Fprintf(rw, "signesture_observers %d\n", reg.Len())

		fmt.Fprintf(rw, "# HELP signesture_broadcast_seq Last broadcast sequence number.\n")
		fmt.Fprintf(rw, "# TYPE signesture_broadcast_seq counter\n")
		fmt.Fprintf(rw, "signesture_broadcast_seq %d\n", m.Seq)
	})

	if envBool("SIGN_ENABLE_PPROF", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	mux.HandleFunc("/ws", ws.NewServer(proc, reg, logger).Handler())

	var history web.History
	if idx != nil {
		history = idx
	}
	web.NewServer(proc, reg, history, cfg.HistoryLimit, cfg.StaticDir, logger).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (seed=%d)", cfg.Listen, worldSeed)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

// multiTurnLogger fans a resolved turn out to the JSONL journal and the
// SQLite index; either side may be nil.
type multiTurnLogger struct {
	a session.TurnLogger
	b session.TurnLogger
}

func (m multiTurnLogger) WriteTurn(entry session.TurnLogEntry) error {
	if m.a != nil {
		_ = m.a.WriteTurn(entry)
	}
	if m.b != nil {
		_ = m.b.WriteTurn(entry)
	}
	return nil
}

func (m multiTurnLogger) WriteReset(entry session.ResetEntry) error {
	if m.a != nil {
		_ = m.a.WriteReset(entry)
	}
	if m.b != nil {
		_ = m.b.WriteReset(entry)
	}
	return nil
}
