package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/SoulShadow8326/Signesture/internal/gesture"
	"github.com/SoulShadow8326/Signesture/internal/persistence/indexdb"
	"github.com/SoulShadow8326/Signesture/internal/protocol"
	"github.com/SoulShadow8326/Signesture/internal/session"
)

// History serves the resolved-turn read-model. Nil when indexing is
// disabled.
type History interface {
	RecentTurns(ctx context.Context, limit int) ([]indexdb.TurnRow, error)
}

type Server struct {
	proc *session.Processor
	reg  *session.Registry
	log  *log.Logger

	history      History
	historyLimit int
	staticDir    string
}

func NewServer(proc *session.Processor, reg *session.Registry, history History, historyLimit int, staticDir string, logger *log.Logger) *Server {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &Server{
		proc:         proc,
		reg:          reg,
		log:          logger,
		history:      history,
		historyLimit: historyLimit,
		staticDir:    staticDir,
	}
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/start", s.handleStart)
	mux.HandleFunc("/action", s.handleAction)
	mux.HandleFunc("/reset", s.handleReset)
	mux.HandleFunc("/gesture", s.handleGesture)
	mux.HandleFunc("/history", s.handleHistory)
	if s.staticDir != "" {
		mux.Handle("GET /", s.spaHandler())
	}
}

func (s *Server) handleState(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, http.StatusOK, s.proc.State())
}

func (s *Server) handleStart(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	snap, seq := s.proc.Start()
	s.broadcast(seq, snap)
	writeJSON(rw, http.StatusOK, protocol.StatusMsg{Status: "started", State: snap})
}

func (s *Server) handleAction(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var ev protocol.EventMsg
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeJSON(rw, http.StatusBadRequest, protocol.ErrorMsg{Error: protocol.ErrTextInvalidPayload})
		return
	}
	res, seq, err := s.proc.Handle(ev)
	if err != nil {
		writeJSON(rw, http.StatusOK, protocol.ErrorMsg{Error: err.Error()})
		return
	}
	// HTTP submitters have no duplex connection of their own, so every
	// connected observer gets the new state.
	s.broadcast(seq, res.State)
	writeJSON(rw, http.StatusOK, res)
}

func (s *Server) handleReset(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Seed int64 `json:"seed"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body) // absent body means seed 0
	}
	snap, seq := s.proc.Reset(body.Seed)
	s.broadcast(seq, snap)
	writeJSON(rw, http.StatusOK, protocol.StatusMsg{Status: "reset", State: snap})
}

func (s *Server) handleGesture(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req protocol.GestureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(rw, http.StatusBadRequest, protocol.ErrorMsg{Error: protocol.ErrTextInvalidPayload})
		return
	}
	cmd, err := gesture.Lookup(req.Gesture)
	if err != nil {
		writeJSON(rw, http.StatusBadRequest, protocol.ErrorMsg{Error: protocol.ErrTextUnknownGesture})
		return
	}
	writeJSON(rw, http.StatusOK, protocol.GestureResponse{Command: string(cmd)})
}

func (s *Server) handleHistory(rw http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(rw, http.StatusOK, []indexdb.TurnRow{})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	rows, err := s.history.RecentTurns(ctx, s.historyLimit)
	if err != nil {
		s.log.Printf("history query: %v", err)
		rw.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	if rows == nil {
		rows = []indexdb.TurnRow{}
	}
	writeJSON(rw, http.StatusOK, rows)
}

func (s *Server) broadcast(seq uint64, snap protocol.Snapshot) {
	b, err := json.Marshal(protocol.BroadcastMsg{Broadcast: snap})
	if err != nil {
		s.log.Printf("marshal broadcast: %v", err)
		return
	}
	s.reg.Broadcast(seq, b, "")
}

// spaHandler serves the built frontend; unknown paths fall back to
// index.html so client-side routes deep-link.
func (s *Server) spaHandler() http.Handler {
	fs := http.FileServer(http.Dir(s.staticDir))
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		path := filepath.Join(s.staticDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fs.ServeHTTP(rw, r)
			return
		}
		http.ServeFile(rw, r, filepath.Join(s.staticDir, "index.html"))
	})
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}
